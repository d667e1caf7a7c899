package main

import (
	"fmt"
	"log"

	"skillswap/backend/internal/config"
	"skillswap/backend/internal/database"
	"skillswap/backend/internal/router"
)

func init() {
	config.LoadConfig()
}

// @title           SkillSwap API
// @version         1.0
// @description     This is the API for the SkillSwap service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	r := router.Setup()

	fmt.Println("Server is running on :" + config.AppConfig.Port)
	log.Fatal(r.Run(":" + config.AppConfig.Port))
}
