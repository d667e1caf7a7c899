package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"skillswap/backend/internal/database"
	"skillswap/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

// SubmitFeedbackInput defines the structure for rating a completed swap.
type SubmitFeedbackInput struct {
	SwapRequestID uint   `json:"swap_request_id" binding:"required"`
	TargetUserID  uint   `json:"target_user_id" binding:"required"`
	Rating        int    `json:"rating" binding:"required,min=1,max=5"`
	Comment       string `json:"comment" binding:"max=500"`
}

// FeedbackResponse is the wire shape of a feedback entry.
type FeedbackResponse struct {
	ID            uint      `json:"id"`
	SwapRequestID uint      `json:"swap_request_id"`
	RaterID       uint      `json:"rater_id"`
	TargetUserID  uint      `json:"target_user_id"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}

// CheckFeedbackResponse reports whether the caller already rated a swap.
type CheckFeedbackResponse struct {
	Given    bool              `json:"given"`
	Feedback *FeedbackResponse `json:"feedback"`
}

func newFeedbackResponse(feedback models.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:            feedback.ID,
		SwapRequestID: feedback.SwapRequestID,
		RaterID:       feedback.RaterID,
		TargetUserID:  feedback.TargetUserID,
		Rating:        feedback.Rating,
		Comment:       feedback.Comment,
		CreatedAt:     feedback.CreatedAt,
	}
}

// endregion

// SubmitFeedback godoc
// @Summary      Submit feedback for a completed swap
// @Description  Records one rating+comment per (swap, rater) pair and recomputes the target's aggregate rating from all their feedback rows.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SubmitFeedbackInput true "Feedback"
// @Success      201  {object}  FeedbackResponse
// @Failure      400  {object}  ErrorResponse "Swap not completed, or target is not the other party"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Caller is not a party to the swap"
// @Failure      404  {object}  ErrorResponse "Swap request not found"
// @Failure      409  {object}  ErrorResponse "Feedback already given"
// @Failure      500  {object}  ErrorResponse
// @Router       /feedback [post]
func SubmitFeedback(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input SubmitFeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var swap models.SwapRequest
	if err := database.DB.First(&swap, input.SwapRequestID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Swap request not found"})
		return
	}

	if swap.Status != models.SwapCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feedback can only be given for completed swap requests"})
		return
	}
	if !isSwapParty(swap, viewerID.(uint)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to give feedback on this swap request"})
		return
	}
	if input.TargetUserID != otherParty(swap, viewerID.(uint)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target user must be the other party of the swap"})
		return
	}

	feedback := models.Feedback{
		SwapRequestID: input.SwapRequestID,
		RaterID:       viewerID.(uint),
		TargetUserID:  input.TargetUserID,
		Rating:        input.Rating,
		Comment:       input.Comment,
	}

	// Insert and aggregate recompute share one transaction so the average is
	// derived from a snapshot that includes this row.
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Feedback
		err := tx.Where("swap_request_id = ? AND rater_id = ?", input.SwapRequestID, viewerID).First(&existing).Error
		if err == nil {
			return errFeedbackExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&feedback).Error; err != nil {
			// The unique index catches the race the probe above missed; any
			// other store failure stays internal.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errFeedbackExists
			}
			return err
		}

		// Full recomputation over all rows targeting the user, not an
		// incremental update, so the aggregate cannot drift.
		var agg struct {
			Avg   float64
			Count int64
		}
		err = tx.Model(&models.Feedback{}).
			Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
			Where("target_user_id = ?", input.TargetUserID).
			Scan(&agg).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", input.TargetUserID).
			Updates(map[string]interface{}{
				"average_rating": agg.Avg,
				"review_count":   agg.Count,
			}).Error
	})
	if errors.Is(err, errFeedbackExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "Feedback already given for this swap request"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create feedback"})
		return
	}

	c.JSON(http.StatusCreated, newFeedbackResponse(feedback))
}

var errFeedbackExists = errors.New("feedback already exists")

// CheckFeedback godoc
// @Summary      Check feedback for a swap
// @Description  Reports whether the caller has already rated the given swap request.
// @Tags         feedback
// @Produce      json
// @Security     BearerAuth
// @Param        swapRequestId path int true "Swap request ID"
// @Success      200  {object}  CheckFeedbackResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /feedback/check/{swapRequestId} [get]
func CheckFeedback(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	swapIDStr := c.Param("swapRequestId")
	swapID, err := strconv.ParseUint(swapIDStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid swap request ID"})
		return
	}

	var feedback models.Feedback
	err = database.DB.Where("swap_request_id = ? AND rater_id = ?", swapID, viewerID).First(&feedback).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, CheckFeedbackResponse{Given: false})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check feedback"})
		return
	}

	response := newFeedbackResponse(feedback)
	c.JSON(http.StatusOK, CheckFeedbackResponse{Given: true, Feedback: &response})
}

// ListMyFeedback godoc
// @Summary      List my submitted feedback
// @Description  Lists every feedback entry the caller has submitted.
// @Tags         feedback
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   FeedbackResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /feedback [get]
func ListMyFeedback(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var feedbacks []models.Feedback
	if err := database.DB.Where("rater_id = ?", viewerID).Find(&feedbacks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feedback"})
		return
	}

	responses := []FeedbackResponse{}
	for _, f := range feedbacks {
		responses = append(responses, newFeedbackResponse(f))
	}

	c.JSON(http.StatusOK, responses)
}
