package handler

import (
	"errors"
	"net/http"

	"skillswap/backend/internal/database"
	"skillswap/backend/internal/models"
	"skillswap/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// region --- DTOs ---

// SignupInput defines the structure for account registration.
type SignupInput struct {
	Handle   string `json:"handle" binding:"required" example:"guitarist42"`
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// SessionResponse is returned by the session check endpoint.
type SessionResponse struct {
	LoggedIn bool                 `json:"logged_in"`
	User     *PrivateUserResponse `json:"user,omitempty"`
}

// endregion

// Signup godoc
// @Summary      Register a new account
// @Description  Creates a new user and returns a session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body SignupInput true "Registration Info"
// @Success      201  {object}  map[string]interface{} "{"token": "...", "user": {...}}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Handle or email already registered"
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/signup [post]
func Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("handle = ? OR email = ?", input.Handle, input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Handle or email already registered"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Handle:         input.Handle,
		Email:          input.Email,
		PasswordHash:   string(hashedPassword),
		Role:           models.RoleUser,
		ProfilePicture: "default.jpg",
		Availability:   datatypes.NewJSONSlice([]string{models.AvailabilityAlways}),
		SkillsOffered:  datatypes.NewJSONSlice([]string{}),
		SkillsWanted:   datatypes.NewJSONSlice([]string{}),
		IsPublic:       true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		// A concurrent signup can slip past the probe; the unique columns
		// still catch it.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Handle or email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": newPrivateUserResponse(user)})
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates a user with email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]interface{} "{"token": "...", "user": {...}}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Incorrect password"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/login [post]
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect password"})
		return
	}

	token, err := jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": newPrivateUserResponse(user)})
}

// Logout godoc
// @Summary      Log out
// @Description  Acknowledges logout. Tokens are short-lived and stateless; the client discards its copy.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string "{"message": "Logged out successfully"}"
// @Router       /auth/logout [post]
func Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Session godoc
// @Summary      Check the current session
// @Description  Reports whether the caller holds a valid session and returns their profile if so.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Router       /auth/session [get]
func Session(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusOK, SessionResponse{LoggedIn: false})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID.(uint)).Error; err != nil {
		// Token refers to an account that no longer resolves; treat as anonymous.
		c.JSON(http.StatusOK, SessionResponse{LoggedIn: false})
		return
	}

	response := newPrivateUserResponse(user)
	c.JSON(http.StatusOK, SessionResponse{LoggedIn: true, User: &response})
}
