package handler

import (
	"net/http"
	"strconv"

	"skillswap/backend/internal/database"
	"skillswap/backend/internal/models"

	"github.com/gin-gonic/gin"
)

func setBanned(c *gin.Context, banned bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := database.DB.Model(&user).Update("is_banned", banned).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	if banned {
		c.JSON(http.StatusOK, gin.H{"message": "User banned"})
	} else {
		c.JSON(http.StatusOK, gin.H{"message": "User unbanned"})
	}
}

// BanUser godoc
// @Summary      Ban a user (Admin only)
// @Description  Marks a user as banned. Banned users disappear from listings but keep their account (soft state).
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  map[string]string "{"message": "User banned"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /admin/users/{id}/ban [post]
func BanUser(c *gin.Context) {
	setBanned(c, true)
}

// UnbanUser godoc
// @Summary      Unban a user (Admin only)
// @Description  Clears a user's banned flag.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  map[string]string "{"message": "User unbanned"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /admin/users/{id}/unban [post]
func UnbanUser(c *gin.Context) {
	setBanned(c, false)
}
