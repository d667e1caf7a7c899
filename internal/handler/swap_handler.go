package handler

import (
	"net/http"
	"strconv"
	"time"

	"skillswap/backend/internal/database"
	"skillswap/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// CreateSwapInput defines the structure for proposing a skill swap.
type CreateSwapInput struct {
	ToUserID        uint     `json:"to_user_id" binding:"required"`
	OfferedSkills   []string `json:"offered_skills" binding:"required"`
	RequestedSkills []string `json:"requested_skills" binding:"required"`
	Note            string   `json:"note"`
}

// RespondSwapInput carries the counterparty's decision on a pending swap.
type RespondSwapInput struct {
	Decision models.SwapStatus `json:"decision" binding:"required,oneof=accepted rejected"`
}

// SwapPartyRef is a party identity resolved to display form.
type SwapPartyRef struct {
	ID             uint   `json:"id"`
	Handle         string `json:"handle"`
	ProfilePicture string `json:"profile_picture"`
}

// SwapRequestResponse is the wire shape of a swap request.
type SwapRequestResponse struct {
	ID                      uint              `json:"id"`
	FromUser                SwapPartyRef      `json:"from_user"`
	ToUser                  SwapPartyRef      `json:"to_user"`
	OfferedSkills           []string          `json:"offered_skills"`
	RequestedSkills         []string          `json:"requested_skills"`
	Note                    string            `json:"note"`
	Status                  models.SwapStatus `json:"status"`
	CompletionRequestedByID *uint             `json:"completion_requested_by,omitempty"`
	CompletionReceivedByID  *uint             `json:"completion_received_by,omitempty"`
	CreatedAt               time.Time         `json:"created_at"`
	UpdatedAt               time.Time         `json:"updated_at"`
}

func newSwapPartyRef(user models.User) SwapPartyRef {
	return SwapPartyRef{
		ID:             user.ID,
		Handle:         user.Handle,
		ProfilePicture: user.ProfilePicture,
	}
}

func newSwapRequestResponse(swap models.SwapRequest) SwapRequestResponse {
	return SwapRequestResponse{
		ID:                      swap.ID,
		FromUser:                newSwapPartyRef(swap.FromUser),
		ToUser:                  newSwapPartyRef(swap.ToUser),
		OfferedSkills:           swap.OfferedSkills,
		RequestedSkills:         swap.RequestedSkills,
		Note:                    swap.Note,
		Status:                  swap.Status,
		CompletionRequestedByID: swap.CompletionRequestedByID,
		CompletionReceivedByID:  swap.CompletionReceivedByID,
		CreatedAt:               swap.CreatedAt,
		UpdatedAt:               swap.UpdatedAt,
	}
}

// endregion

// region --- Helpers ---

// swapRequestID parses the :id route param.
func swapRequestID(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid swap request ID"})
		return 0, false
	}
	return uint(id), true
}

func isSwapParty(swap models.SwapRequest, userID uint) bool {
	return swap.FromUserID == userID || swap.ToUserID == userID
}

// otherParty returns the swap party that is not userID.
func otherParty(swap models.SwapRequest, userID uint) uint {
	if swap.FromUserID == userID {
		return swap.ToUserID
	}
	return swap.FromUserID
}

// endregion

// CreateSwapRequest godoc
// @Summary      Create a swap request
// @Description  Proposes an exchange of named skills to another user. The new request starts pending.
// @Tags         swaps
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreateSwapInput true "Swap proposal"
// @Success      201  {object}  SwapRequestResponse
// @Failure      400  {object}  ErrorResponse "Self-targeted or empty skill set"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Counterparty not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /swaps [post]
func CreateSwapRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input CreateSwapInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.ToUserID == viewerID.(uint) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot create a swap request with yourself"})
		return
	}
	if len(input.OfferedSkills) == 0 || len(input.RequestedSkills) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Offered and requested skills cannot be empty"})
		return
	}

	var counterparty models.User
	if err := database.DB.First(&counterparty, input.ToUserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Counterparty not found"})
		return
	}

	swap := models.SwapRequest{
		FromUserID:      viewerID.(uint),
		ToUserID:        input.ToUserID,
		OfferedSkills:   input.OfferedSkills,
		RequestedSkills: input.RequestedSkills,
		Note:            input.Note,
		Status:          models.SwapPending,
	}
	if err := database.DB.Create(&swap).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create swap request"})
		return
	}

	database.DB.Preload("FromUser").Preload("ToUser").First(&swap, swap.ID)

	c.JSON(http.StatusCreated, newSwapRequestResponse(swap))
}

// CancelSwapRequest godoc
// @Summary      Cancel a swap request
// @Description  Cancels a pending swap request. Only the initiator may cancel; an unknown ID is an idempotent success so client retries stay trivial.
// @Tags         swaps
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Swap request ID"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Not the initiator, or not pending"
// @Failure      409  {object}  ErrorResponse "Lost a race with a concurrent transition"
// @Failure      500  {object}  ErrorResponse
// @Router       /swaps/{id} [delete]
func CancelSwapRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, ok := swapRequestID(c)
	if !ok {
		return
	}

	var swap models.SwapRequest
	if err := database.DB.First(&swap, id).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Swap request not found"})
		return
	}

	if swap.FromUserID != viewerID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to cancel this swap request"})
		return
	}
	if swap.Status != models.SwapPending {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only pending swap requests can be cancelled"})
		return
	}

	result := database.DB.
		Where("id = ? AND status = ?", id, models.SwapPending).
		Delete(&models.SwapRequest{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel swap request"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Swap request is no longer pending"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Swap request cancelled successfully"})
}

// RespondSwapRequest godoc
// @Summary      Accept or reject a swap request
// @Description  The counterparty's single exit from pending: exactly one decision wins, even under concurrent calls.
// @Tags         swaps
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int              true  "Swap request ID"
// @Param        input body      RespondSwapInput true  "Decision"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Caller is not the counterparty"
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Request already resolved"
// @Failure      500  {object}  ErrorResponse
// @Router       /swaps/{id}/respond [post]
func RespondSwapRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, ok := swapRequestID(c)
	if !ok {
		return
	}

	var input RespondSwapInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var swap models.SwapRequest
	if err := database.DB.First(&swap, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Swap request not found"})
		return
	}

	if swap.ToUserID != viewerID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to respond to this swap request"})
		return
	}

	result := database.DB.Model(&models.SwapRequest{}).
		Where("id = ? AND status = ?", id, models.SwapPending).
		Update("status", input.Decision)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update swap request"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Swap request is no longer pending"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Swap request " + string(input.Decision) + " successfully"})
}

// RequestCompletion godoc
// @Summary      Request swap completion
// @Description  Either party of an accepted swap may propose completion; the other party must then confirm.
// @Tags         swaps
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Swap request ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse "Swap is not accepted"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Caller is not a party"
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Lost a race with a concurrent transition"
// @Failure      500  {object}  ErrorResponse
// @Router       /swaps/{id}/complete [post]
func RequestCompletion(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, ok := swapRequestID(c)
	if !ok {
		return
	}

	var swap models.SwapRequest
	if err := database.DB.First(&swap, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Swap request not found"})
		return
	}

	if !isSwapParty(swap, viewerID.(uint)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to request completion for this swap request"})
		return
	}
	if swap.Status != models.SwapAccepted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Swap request is not in a state that allows completion"})
		return
	}

	requester := viewerID.(uint)
	receiver := otherParty(swap, requester)

	result := database.DB.Model(&models.SwapRequest{}).
		Where("id = ? AND status = ?", id, models.SwapAccepted).
		Updates(map[string]interface{}{
			"status":                     models.SwapCompletionRequested,
			"completion_requested_by_id": requester,
			"completion_received_by_id":  receiver,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request completion"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Swap request is no longer accepted"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Swap request completion requested successfully"})
}

// ConfirmCompletion godoc
// @Summary      Confirm swap completion
// @Description  Ratifies a completion request. Only the party who did not request completion may confirm.
// @Tags         swaps
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Swap request ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse "Swap is not awaiting confirmation"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Caller may not confirm"
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Lost a race with a concurrent transition"
// @Failure      500  {object}  ErrorResponse
// @Router       /swaps/{id}/complete/confirm [post]
func ConfirmCompletion(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, ok := swapRequestID(c)
	if !ok {
		return
	}

	var swap models.SwapRequest
	if err := database.DB.First(&swap, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Swap request not found"})
		return
	}

	if swap.Status != models.SwapCompletionRequested {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Swap request is not in a state that allows confirmation"})
		return
	}
	// The handshake needs two distinct actors: the requester cannot also confirm.
	if swap.CompletionReceivedByID == nil || viewerID.(uint) != *swap.CompletionReceivedByID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to confirm completion for this swap request"})
		return
	}

	result := database.DB.Model(&models.SwapRequest{}).
		Where("id = ? AND status = ?", id, models.SwapCompletionRequested).
		Update("status", models.SwapCompleted)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm completion"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Swap request is no longer awaiting confirmation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Swap request completed successfully"})
}

// ListSwapRequests godoc
// @Summary      List my swap requests
// @Description  Lists every swap request where the caller is a party. Entries whose counterparty no longer resolves are dropped.
// @Tags         swaps
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   SwapRequestResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /swaps [get]
func ListSwapRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var swaps []models.SwapRequest
	err := database.DB.
		Where("from_user_id = ? OR to_user_id = ?", viewerID, viewerID).
		Preload("FromUser").Preload("ToUser").
		Find(&swaps).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch swap requests"})
		return
	}

	responses := []SwapRequestResponse{}
	for _, swap := range swaps {
		// Defensive filtering for dangling party references.
		if swap.FromUser.ID == 0 || swap.ToUser.ID == 0 {
			continue
		}
		responses = append(responses, newSwapRequestResponse(swap))
	}

	c.JSON(http.StatusOK, responses)
}

// GetSwapRequest godoc
// @Summary      Get a swap request
// @Description  Fetches a single swap request. Only its two parties may view it.
// @Tags         swaps
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Swap request ID"
// @Success      200  {object}  SwapRequestResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Caller is not a party"
// @Failure      404  {object}  ErrorResponse
// @Router       /swaps/{id} [get]
func GetSwapRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, ok := swapRequestID(c)
	if !ok {
		return
	}

	var swap models.SwapRequest
	if err := database.DB.Preload("FromUser").Preload("ToUser").First(&swap, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Swap request not found"})
		return
	}

	if !isSwapParty(swap, viewerID.(uint)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to view this swap request"})
		return
	}

	c.JSON(http.StatusOK, newSwapRequestResponse(swap))
}
