package auth

import (
	"skillswap/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// OptionalAuthMiddleware inspects for a token and sets the userID if present and valid,
// but does not fail if the token is missing or invalid. Endpoints behind it treat the
// caller as anonymous when "userID" is unset.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if userID, role, err := jwt.ParseToken(tokenString); err == nil {
				c.Set("userID", userID)
				c.Set("role", role)
			}
		}
		c.Next()
	}
}
