package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createSwap proposes a swap from caller to target and returns its ID.
func createSwap(t *testing.T, r *gin.Engine, caller authedUser, targetID uint) uint {
	t.Helper()

	w := performJSON(t, r, http.MethodPost, "/api/v1/swaps", caller.Token, gin.H{
		"to_user_id":       targetID,
		"offered_skills":   []string{"Guitar"},
		"requested_skills": []string{"Cooking"},
		"note":             "Happy to trade lessons",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &resp)
	require.NotZero(t, resp.ID)
	return resp.ID
}

func getSwapStatus(t *testing.T, r *gin.Engine, caller authedUser, swapID uint) string {
	t.Helper()

	w := performJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/swaps/%d", swapID), caller.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Status string `json:"status"`
	}
	decodeBody(t, w, &resp)
	return resp.Status
}

// completeSwap walks a fresh swap through the full happy path and returns its ID.
func completeSwap(t *testing.T, r *gin.Engine, from, to authedUser) uint {
	t.Helper()

	swapID := createSwap(t, r, from, to.ID)

	w := performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/respond", swapID), to.Token, gin.H{"decision": "accepted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/complete", swapID), from.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/complete/confirm", swapID), to.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return swapID
}

func TestSwapLifecycleEndToEnd(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")

	swapID := createSwap(t, r, alice, bob.ID)
	assert.Equal(t, "pending", getSwapStatus(t, r, alice, swapID))

	w := performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/respond", swapID), bob.Token, gin.H{"decision": "accepted"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "accepted", getSwapStatus(t, r, bob, swapID))

	w = performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/complete", swapID), alice.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completion_requested", getSwapStatus(t, r, alice, swapID))

	w = performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/complete/confirm", swapID), bob.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", getSwapStatus(t, r, bob, swapID))

	// Bob rates Alice 4; her aggregate becomes 4.0 over one review.
	w = performJSON(t, r, http.MethodPost, "/api/v1/feedback", bob.Token, gin.H{
		"swap_request_id": swapID,
		"target_user_id":  alice.ID,
		"rating":          4,
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performJSON(t, r, http.MethodGet, "/api/v1/users/me", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		AverageRating float64 `json:"average_rating"`
		ReviewCount   int64   `json:"review_count"`
	}
	decodeBody(t, w, &me)
	assert.Equal(t, 4.0, me.AverageRating)
	assert.Equal(t, int64(1), me.ReviewCount)
}

func TestCreateSwapValidation(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")

	w := performJSON(t, r, http.MethodPost, "/api/v1/swaps", alice.Token, gin.H{
		"to_user_id":       alice.ID,
		"offered_skills":   []string{"Guitar"},
		"requested_skills": []string{"Cooking"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, r, http.MethodPost, "/api/v1/swaps", alice.Token, gin.H{
		"to_user_id":       bob.ID,
		"offered_skills":   []string{},
		"requested_skills": []string{"Cooking"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, r, http.MethodPost, "/api/v1/swaps", alice.Token, gin.H{
		"to_user_id":       uint(9999),
		"offered_skills":   []string{"Guitar"},
		"requested_skills": []string{"Cooking"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRespondOnlyCounterparty(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")
	carol := signupUser(t, r, "carol")

	swapID := createSwap(t, r, alice, bob.ID)

	// Neither the initiator nor a stranger may respond.
	w := performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/respond", swapID), alice.Token, gin.H{"decision": "accepted"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/respond", swapID), carol.Token, gin.H{"decision": "accepted"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Equal(t, "pending", getSwapStatus(t, r, alice, swapID))
}

func TestRespondIsSingleShot(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")

	swapID := createSwap(t, r, alice, bob.ID)

	w := performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/respond", swapID), bob.Token, gin.H{"decision": "rejected"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Exactly one decision wins; the second exit from pending is refused.
	w = performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/respond", swapID), bob.Token, gin.H{"decision": "accepted"})
	assert.Equal(t, http.StatusConflict, w.Code)

	assert.Equal(t, "rejected", getSwapStatus(t, r, bob, swapID))
}

func TestRespondRejectsUnknownDecision(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")

	swapID := createSwap(t, r, alice, bob.ID)

	w := performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/respond", swapID), bob.Token, gin.H{"decision": "completed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestCompletionRequiresAcceptedState(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")
	carol := signupUser(t, r, "carol")

	swapID := createSwap(t, r, alice, bob.ID)

	w := performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/complete", swapID), alice.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/complete", swapID), carol.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestConfirmCompletionRequiresOtherParty(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")

	swapID := createSwap(t, r, alice, bob.ID)
	performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/respond", swapID), bob.Token, gin.H{"decision": "accepted"})

	// Either party may initiate the handshake; here Bob does.
	w := performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/complete", swapID), bob.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// The requester cannot ratify their own completion request.
	w = performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/complete/confirm", swapID), bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/complete/confirm", swapID), alice.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", getSwapStatus(t, r, alice, swapID))
}

func TestCancelSwapRequest(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")

	swapID := createSwap(t, r, alice, bob.ID)

	// Only the initiator may cancel.
	w := performJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/swaps/%d", swapID), bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/swaps/%d", swapID), alice.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/swaps/%d", swapID), alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Cancelling a request that no longer exists is an idempotent success.
	w = performJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/swaps/%d", swapID), alice.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCancelAfterAcceptForbidden(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")

	swapID := createSwap(t, r, alice, bob.ID)
	performJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/swaps/%d/respond", swapID), bob.Token, gin.H{"decision": "accepted"})

	w := performJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/swaps/%d", swapID), alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "accepted", getSwapStatus(t, r, alice, swapID))
}

func TestGetSwapRestrictedToParties(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")
	carol := signupUser(t, r, "carol")

	swapID := createSwap(t, r, alice, bob.ID)

	w := performJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/swaps/%d", swapID), carol.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/swaps/%d", swapID), bob.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListSwapRequests(t *testing.T) {
	r := setupTest(t)
	alice := signupUser(t, r, "alice")
	bob := signupUser(t, r, "bob")
	carol := signupUser(t, r, "carol")

	createSwap(t, r, alice, bob.ID)
	createSwap(t, r, carol, alice.ID)

	w := performJSON(t, r, http.MethodGet, "/api/v1/swaps", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var swaps []struct {
		FromUser struct {
			Handle string `json:"handle"`
		} `json:"from_user"`
		ToUser struct {
			Handle string `json:"handle"`
		} `json:"to_user"`
	}
	decodeBody(t, w, &swaps)
	require.Len(t, swaps, 2)

	// Bob only sees the swap he is a party to.
	w = performJSON(t, r, http.MethodGet, "/api/v1/swaps", bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &swaps)
	require.Len(t, swaps, 1)
	assert.Equal(t, "alice", swaps[0].FromUser.Handle)
	assert.Equal(t, "bob", swaps[0].ToUser.Handle)
}
