package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"skillswap/backend/internal/database"
	"skillswap/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDuplicateFeedbackConflicts(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")

	swapID := completeSwap(t, r, alice, bob)

	w := performJSON(t, r, http.MethodPost, "/api/v1/feedback", bob.Token, gin.H{
		"swap_request_id": swapID,
		"target_user_id":  alice.ID,
		"rating":          5,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = performJSON(t, r, http.MethodPost, "/api/v1/feedback", bob.Token, gin.H{
		"swap_request_id": swapID,
		"target_user_id":  alice.ID,
		"rating":          1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Below the handler, the unique index reports the duplicate as a
	// duplicated key, which is the only create failure mapped to a conflict.
	err := database.DB.Create(&models.Feedback{
		SwapRequestID: swapID,
		RaterID:       bob.ID,
		TargetUserID:  alice.ID,
		Rating:        2,
	}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestBothPartiesCanRateOnce(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")

	swapID := completeSwap(t, r, alice, bob)

	w := performJSON(t, r, http.MethodPost, "/api/v1/feedback", bob.Token, gin.H{
		"swap_request_id": swapID,
		"target_user_id":  alice.ID,
		"rating":          4,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = performJSON(t, r, http.MethodPost, "/api/v1/feedback", alice.Token, gin.H{
		"swap_request_id": swapID,
		"target_user_id":  bob.ID,
		"rating":          5,
		"comment":         "Great cooking teacher",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAverageRatingIsMeanOfAllFeedback(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")
	carol := signupUser(t, r, "carol")

	firstSwap := completeSwap(t, r, bob, alice)
	secondSwap := completeSwap(t, r, carol, alice)

	w := performJSON(t, r, http.MethodPost, "/api/v1/feedback", bob.Token, gin.H{
		"swap_request_id": firstSwap,
		"target_user_id":  alice.ID,
		"rating":          5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performJSON(t, r, http.MethodPost, "/api/v1/feedback", carol.Token, gin.H{
		"swap_request_id": secondSwap,
		"target_user_id":  alice.ID,
		"rating":          2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performJSON(t, r, http.MethodGet, "/api/v1/users/me", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		AverageRating float64 `json:"average_rating"`
		ReviewCount   int64   `json:"review_count"`
	}
	decodeBody(t, w, &me)
	assert.Equal(t, 3.5, me.AverageRating)
	assert.Equal(t, int64(2), me.ReviewCount)
}

func TestFeedbackRequiresCompletedSwap(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")

	swapID := createSwap(t, r, alice, bob.ID)
	performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/respond", swapID), bob.Token, gin.H{"decision": "accepted"})

	w := performJSON(t, r, http.MethodPost, "/api/v1/feedback", bob.Token, gin.H{
		"swap_request_id": swapID,
		"target_user_id":  alice.ID,
		"rating":          4,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackValidation(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")
	carol := signupUser(t, r, "carol")

	swapID := completeSwap(t, r, alice, bob)

	// Rating outside 1..5.
	w := performJSON(t, r, http.MethodPost, "/api/v1/feedback", bob.Token, gin.H{
		"swap_request_id": swapID,
		"target_user_id":  alice.ID,
		"rating":          6,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown swap.
	w = performJSON(t, r, http.MethodPost, "/api/v1/feedback", bob.Token, gin.H{
		"swap_request_id": uint(9999),
		"target_user_id":  alice.ID,
		"rating":          4,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Rater must be a party.
	w = performJSON(t, r, http.MethodPost, "/api/v1/feedback", carol.Token, gin.H{
		"swap_request_id": swapID,
		"target_user_id":  alice.ID,
		"rating":          4,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Target must be the other party, not the rater or a stranger.
	w = performJSON(t, r, http.MethodPost, "/api/v1/feedback", bob.Token, gin.H{
		"swap_request_id": swapID,
		"target_user_id":  bob.ID,
		"rating":          4,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, r, http.MethodPost, "/api/v1/feedback", bob.Token, gin.H{
		"swap_request_id": swapID,
		"target_user_id":  carol.ID,
		"rating":          4,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckFeedback(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")

	swapID := completeSwap(t, r, alice, bob)

	w := performJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/feedback/check/%d", swapID), bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var check struct {
		Given    bool `json:"given"`
		Feedback *struct {
			Rating int `json:"rating"`
		} `json:"feedback"`
	}
	decodeBody(t, w, &check)
	assert.False(t, check.Given)
	assert.Nil(t, check.Feedback)

	performJSON(t, r, http.MethodPost, "/api/v1/feedback", bob.Token, gin.H{
		"swap_request_id": swapID,
		"target_user_id":  alice.ID,
		"rating":          3,
		"comment":         "Solid",
	})

	w = performJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/feedback/check/%d", swapID), bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &check)
	assert.True(t, check.Given)
	require.NotNil(t, check.Feedback)
	assert.Equal(t, 3, check.Feedback.Rating)

	// The check is per rater: Alice has not rated yet.
	w = performJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/feedback/check/%d", swapID), alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &check)
	assert.False(t, check.Given)
}

func TestListMyFeedback(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")

	swapID := completeSwap(t, r, alice, bob)

	performJSON(t, r, http.MethodPost, "/api/v1/feedback", bob.Token, gin.H{
		"swap_request_id": swapID,
		"target_user_id":  alice.ID,
		"rating":          4,
	})

	w := performJSON(t, r, http.MethodGet, "/api/v1/feedback", bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var feedbacks []struct {
		SwapRequestID uint `json:"swap_request_id"`
		Rating        int  `json:"rating"`
	}
	decodeBody(t, w, &feedbacks)
	require.Len(t, feedbacks, 1)
	assert.Equal(t, swapID, feedbacks[0].SwapRequestID)
	assert.Equal(t, 4, feedbacks[0].Rating)

	w = performJSON(t, r, http.MethodGet, "/api/v1/feedback", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &feedbacks)
	assert.Empty(t, feedbacks)
}
