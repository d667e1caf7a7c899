package handler

import (
	"net/http"
	"strings"
	"time"

	"skillswap/backend/internal/database"
	"skillswap/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// region --- DTOs ---

// ProfileSummary is the public card shown in listings and to friends.
// Password hashes and relationship edge lists are never part of it.
type ProfileSummary struct {
	ID             uint     `json:"id" example:"1"`
	Handle         string   `json:"handle" example:"guitarist42"`
	ProfilePicture string   `json:"profile_picture" example:"default.jpg"`
	Bio            string   `json:"bio"`
	Availability   []string `json:"availability"`
	SkillsOffered  []string `json:"skills_offered"`
	SkillsWanted   []string `json:"skills_wanted"`
	AverageRating  float64  `json:"average_rating"`
	ReviewCount    int64    `json:"review_count"`
}

// PrivateUserResponse is the authenticated user's own profile.
type PrivateUserResponse struct {
	ID             uint      `json:"id" example:"1"`
	Handle         string    `json:"handle" example:"guitarist42"`
	Email          string    `json:"email" example:"test@example.com"`
	Role           string    `json:"role" example:"user"`
	ProfilePicture string    `json:"profile_picture"`
	Bio            string    `json:"bio"`
	Availability   []string  `json:"availability"`
	SkillsOffered  []string  `json:"skills_offered"`
	SkillsWanted   []string  `json:"skills_wanted"`
	IsPublic       bool      `json:"is_public"`
	AverageRating  float64   `json:"average_rating"`
	ReviewCount    int64     `json:"review_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// LimitedProfileResponse is what a stranger sees of a private profile.
// Withheld fields are absent, not null-valued.
type LimitedProfileResponse struct {
	Found          bool   `json:"found"`
	IsFriend       bool   `json:"is_friend"`
	Handle         string `json:"handle"`
	ProfilePicture string `json:"profile_picture"`
	Bio            string `json:"bio"`
}

// FullProfileResponse is returned when the viewer may see everything.
type FullProfileResponse struct {
	Found    bool           `json:"found"`
	IsFriend bool           `json:"is_friend"`
	User     ProfileSummary `json:"user"`
}

// UpdateProfileInput carries a partial profile update; nil fields are left untouched.
type UpdateProfileInput struct {
	Bio            *string   `json:"bio"`
	ProfilePicture *string   `json:"profile_picture"`
	Availability   *[]string `json:"availability"`
	SkillsOffered  *[]string `json:"skills_offered"`
	SkillsWanted   *[]string `json:"skills_wanted"`
	IsPublic       *bool     `json:"is_public"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

func newProfileSummary(user models.User) ProfileSummary {
	return ProfileSummary{
		ID:             user.ID,
		Handle:         user.Handle,
		ProfilePicture: user.ProfilePicture,
		Bio:            user.Bio,
		Availability:   user.Availability,
		SkillsOffered:  user.SkillsOffered,
		SkillsWanted:   user.SkillsWanted,
		AverageRating:  user.AverageRating,
		ReviewCount:    user.ReviewCount,
	}
}

func newPrivateUserResponse(user models.User) PrivateUserResponse {
	return PrivateUserResponse{
		ID:             user.ID,
		Handle:         user.Handle,
		Email:          user.Email,
		Role:           user.Role,
		ProfilePicture: user.ProfilePicture,
		Bio:            user.Bio,
		Availability:   user.Availability,
		SkillsOffered:  user.SkillsOffered,
		SkillsWanted:   user.SkillsWanted,
		IsPublic:       user.IsPublic,
		AverageRating:  user.AverageRating,
		ReviewCount:    user.ReviewCount,
		CreatedAt:      user.CreatedAt,
	}
}

// endregion

// region --- Profile Handlers ---

// GetMe godoc
// @Summary      Get current user's profile
// @Description  Retrieves the full private profile for the authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, newPrivateUserResponse(user))
}

// UpdateMe godoc
// @Summary      Update current user's profile
// @Description  Applies a partial update to the authenticated user's profile fields.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateProfileInput true "Fields to update"
// @Success      200  {object}  PrivateUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [put]
func UpdateMe(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Availability != nil {
		if len(*input.Availability) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Availability cannot be empty"})
			return
		}
		for _, slot := range *input.Availability {
			if !models.IsValidAvailability(slot) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid availability value: " + slot})
				return
			}
		}
	}

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.ProfilePicture != nil {
		user.ProfilePicture = *input.ProfilePicture
	}
	if input.Availability != nil {
		user.Availability = datatypes.NewJSONSlice(*input.Availability)
	}
	if input.SkillsOffered != nil {
		user.SkillsOffered = datatypes.NewJSONSlice(*input.SkillsOffered)
	}
	if input.SkillsWanted != nil {
		user.SkillsWanted = datatypes.NewJSONSlice(*input.SkillsWanted)
	}
	if input.IsPublic != nil {
		user.IsPublic = *input.IsPublic
	}

	if err := database.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, newPrivateUserResponse(user))
}

// endregion

// region --- Visibility Handlers ---

// ListVisibleUsers godoc
// @Summary      List visible users
// @Description  Lists users matching the availability filter and optional search text. Private profiles appear only to their friends; banned users never appear.
// @Tags         users
// @Produce      json
// @Param        availability query []string false "Availability filter (repeatable)" collectionFormat(multi)
// @Param        search       query string   false "Case-insensitive substring match on handle, bio or skills"
// @Success      200  {array}   ProfileSummary
// @Failure      500  {object}  ErrorResponse
// @Router       /users [get]
func ListVisibleUsers(c *gin.Context) {
	var viewerID uint
	if id, exists := c.Get("userID"); exists {
		viewerID = id.(uint)
	}

	// "Always" is part of the effective filter no matter what the caller asked for.
	filter := c.QueryArray("availability")
	if !containsFold(filter, models.AvailabilityAlways) {
		filter = append(filter, models.AvailabilityAlways)
	}
	search := strings.TrimSpace(c.Query("search"))

	var friendIDs map[uint]bool
	if viewerID != 0 {
		var err error
		friendIDs, err = friendIDSet(viewerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve friends"})
			return
		}
	}

	var users []models.User
	if err := database.DB.Where("is_banned = ?", false).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	summaries := []ProfileSummary{}
	for _, user := range users {
		if user.ID == viewerID {
			continue
		}
		if !user.IsPublic && !friendIDs[user.ID] {
			continue
		}
		if !intersects(user.Availability, filter) {
			continue
		}
		if search != "" && !matchesSearch(user, search) {
			continue
		}
		summaries = append(summaries, newProfileSummary(user))
	}

	c.JSON(http.StatusOK, summaries)
}

// GetUserByHandle godoc
// @Summary      Get a user's profile by handle
// @Description  Returns the full profile when the target is public or the viewer is a friend or admin; otherwise only handle, picture and bio.
// @Tags         users
// @Produce      json
// @Param        handle path string true "User handle"
// @Success      200  {object}  FullProfileResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{handle} [get]
func GetUserByHandle(c *gin.Context) {
	handle := c.Param("handle")

	var viewerID uint
	isAdmin := false
	if id, exists := c.Get("userID"); exists {
		var viewer models.User
		if err := database.DB.First(&viewer, id.(uint)).Error; err == nil {
			viewerID = viewer.ID
			isAdmin = viewer.Role == models.RoleAdmin
		}
	}

	var user models.User
	if err := database.DB.Where("handle = ?", handle).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"found": false, "message": "User not found"})
		return
	}

	isFriend := false
	if viewerID != 0 {
		var err error
		isFriend, err = areFriends(viewerID, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve friendship"})
			return
		}
	}

	if !user.IsPublic && !isAdmin && !isFriend {
		c.JSON(http.StatusOK, LimitedProfileResponse{
			Found:          true,
			IsFriend:       false,
			Handle:         user.Handle,
			ProfilePicture: user.ProfilePicture,
			Bio:            user.Bio,
		})
		return
	}

	c.JSON(http.StatusOK, FullProfileResponse{
		Found:    true,
		IsFriend: isFriend,
		User:     newProfileSummary(user),
	})
}

// endregion

// region --- Helpers ---

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func intersects(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func matchesSearch(user models.User, search string) bool {
	q := strings.ToLower(search)
	if strings.Contains(strings.ToLower(user.Handle), q) {
		return true
	}
	if strings.Contains(strings.ToLower(user.Bio), q) {
		return true
	}
	for _, skill := range user.SkillsOffered {
		if strings.Contains(strings.ToLower(skill), q) {
			return true
		}
	}
	for _, skill := range user.SkillsWanted {
		if strings.Contains(strings.ToLower(skill), q) {
			return true
		}
	}
	return false
}

// endregion
