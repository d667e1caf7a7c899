package router

import (
	"net/http"

	"skillswap/backend/internal/auth"
	"skillswap/backend/internal/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Setup builds the gin engine with all routes and middleware. It is separate
// from main so handler tests can run requests against the full route table.
func Setup() *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://127.0.0.1:5500", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/signup", handler.Signup)
			authRoutes.POST("/login", handler.Login)
			authRoutes.POST("/logout", handler.Logout)
			authRoutes.GET("/session", auth.OptionalAuthMiddleware(), handler.Session)
		}

		// User routes
		userRoutes := apiV1.Group("/users")
		{
			// Listing and profile lookup work for anonymous callers too.
			userRoutes.GET("", auth.OptionalAuthMiddleware(), handler.ListVisibleUsers)

			me := userRoutes.Group("/me", auth.AuthMiddleware())
			{
				me.GET("", handler.GetMe)
				me.PUT("", handler.UpdateMe)
				me.GET("/friends", handler.ListFriends)
				me.GET("/requests/incoming", handler.ListIncomingRequests)
				me.GET("/requests/outgoing", handler.ListOutgoingRequests)
			}

			userRoutes.GET("/:handle", auth.OptionalAuthMiddleware(), handler.GetUserByHandle)

			// Friendship routes
			userRoutes.POST("/:id/request", auth.AuthMiddleware(), handler.SendFriendRequest)
			userRoutes.POST("/:id/accept", auth.AuthMiddleware(), handler.AcceptFriendRequest)
			userRoutes.POST("/:id/reject", auth.AuthMiddleware(), handler.RejectFriendRequest)
			userRoutes.POST("/:id/cancel", auth.AuthMiddleware(), handler.CancelFriendRequest)
			userRoutes.POST("/:id/remove", auth.AuthMiddleware(), handler.RemoveFriend)
		}

		// Swap request routes (protected)
		swapRoutes := apiV1.Group("/swaps")
		swapRoutes.Use(auth.AuthMiddleware())
		{
			swapRoutes.POST("", handler.CreateSwapRequest)
			swapRoutes.GET("", handler.ListSwapRequests)
			swapRoutes.GET("/:id", handler.GetSwapRequest)
			swapRoutes.DELETE("/:id", handler.CancelSwapRequest)
			swapRoutes.POST("/:id/respond", handler.RespondSwapRequest)
			swapRoutes.POST("/:id/complete", handler.RequestCompletion)
			swapRoutes.POST("/:id/complete/confirm", handler.ConfirmCompletion)
		}

		// Feedback routes (protected)
		feedbackRoutes := apiV1.Group("/feedback")
		feedbackRoutes.Use(auth.AuthMiddleware())
		{
			feedbackRoutes.POST("", handler.SubmitFeedback)
			feedbackRoutes.GET("", handler.ListMyFeedback)
			feedbackRoutes.GET("/check/:swapRequestId", handler.CheckFeedback)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			adminRoutes.POST("/users/:id/ban", handler.BanUser)
			adminRoutes.POST("/users/:id/unban", handler.UnbanUser)
		}
	}

	return router
}
