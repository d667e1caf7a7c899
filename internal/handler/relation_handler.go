package handler

import (
	"errors"
	"net/http"
	"strconv"

	"skillswap/backend/internal/database"
	"skillswap/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// targetUserID parses the :id route param and rejects self-targeted calls.
func targetUserID(c *gin.Context, viewerID uint) (uint, bool) {
	targetIDStr := c.Param("id")
	targetID, err := strconv.ParseUint(targetIDStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return 0, false
	}
	if uint(targetID) == viewerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot target yourself"})
		return 0, false
	}
	return uint(targetID), true
}

// friendIDSet resolves the accepted edges touching userID into the set of
// friend user IDs, matching the edge in either direction.
func friendIDSet(userID uint) (map[uint]bool, error) {
	var edges []models.Friendship
	err := database.DB.
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)", models.StatusAccepted, userID, userID).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	ids := make(map[uint]bool, len(edges))
	for _, e := range edges {
		if e.RequesterID == userID {
			ids[e.AddresseeID] = true
		} else {
			ids[e.RequesterID] = true
		}
	}
	return ids, nil
}

// areFriends reports whether an accepted edge exists between the two users.
func areFriends(a, b uint) (bool, error) {
	var edge models.Friendship
	err := database.DB.
		Where("status = ? AND ((requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?))",
			models.StatusAccepted, a, b, b, a).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SendFriendRequest godoc
// @Summary      Send friend request
// @Description  Sends a friend request. Re-sending is a no-op; sending while the reverse request is pending accepts it.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string
// @Success      201  {object}  map[string]string "{"message": "Friend request sent successfully"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/request [post]
func SendFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID, ok := targetUserID(c, viewerID.(uint))
	if !ok {
		return
	}

	var target models.User
	if err := database.DB.First(&target, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Target user not found"})
		return
	}

	// An existing edge in my direction makes this a retry, whatever its status.
	var existing models.Friendship
	err := database.DB.Where("requester_id = ? AND addressee_id = ?", viewerID, targetID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Friend request already sent"})
		return
	}

	// A pending edge in the other direction means the target already asked us;
	// a counter-request resolves it instead of creating a second edge.
	var reverse models.Friendship
	err = database.DB.Where("requester_id = ? AND addressee_id = ?", targetID, viewerID).First(&reverse).Error
	if err == nil {
		if reverse.Status == models.StatusAccepted {
			c.JSON(http.StatusOK, gin.H{"message": "Already friends"})
			return
		}
		result := database.DB.Model(&models.Friendship{}).
			Where("requester_id = ? AND addressee_id = ? AND status = ?", targetID, viewerID, models.StatusPending).
			Update("status", models.StatusAccepted)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept request"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
		return
	}

	newEdge := models.Friendship{
		RequesterID: viewerID.(uint),
		AddresseeID: targetID,
		Status:      models.StatusPending,
	}
	if err := database.DB.Create(&newEdge).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create friend request"})
			return
		}
		// Lost a race: another request for this pair inserted first. The pair
		// index admits one edge, so the winner decides the outcome.
		resolveFriendRequestRace(c, viewerID.(uint), targetID)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Friend request sent successfully"})
}

// resolveFriendRequestRace answers a send that lost the pair-index race. A
// winning edge in our direction makes the send a retry; one in the other
// direction is treated as a counter-request and accepted.
func resolveFriendRequestRace(c *gin.Context, viewerID, targetID uint) {
	var winner models.Friendship
	err := database.DB.
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			viewerID, targetID, targetID, viewerID).
		First(&winner).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create friend request"})
		return
	}

	if winner.Status == models.StatusAccepted {
		c.JSON(http.StatusOK, gin.H{"message": "Already friends"})
		return
	}
	if winner.RequesterID == viewerID {
		c.JSON(http.StatusOK, gin.H{"message": "Friend request already sent"})
		return
	}

	result := database.DB.Model(&models.Friendship{}).
		Where("requester_id = ? AND addressee_id = ? AND status = ?", targetID, viewerID, models.StatusPending).
		Update("status", models.StatusAccepted)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
}

// AcceptFriendRequest godoc
// @Summary      Accept friend request
// @Description  Accepts a pending friend request from another user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Friend request accepted"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Pending request not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/accept [post]
func AcceptFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	requesterID, ok := targetUserID(c, viewerID.(uint))
	if !ok {
		return
	}

	// Status-guarded update: two concurrent accepts cannot both apply.
	result := database.DB.Model(&models.Friendship{}).
		Where("requester_id = ? AND addressee_id = ? AND status = ?", requesterID, viewerID, models.StatusPending).
		Update("status", models.StatusAccepted)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept request"})
		return
	}
	if result.RowsAffected == 0 {
		friends, err := areFriends(viewerID.(uint), requesterID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept request"})
			return
		}
		if friends {
			c.JSON(http.StatusOK, gin.H{"message": "Already friends"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Pending request not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
}

// RejectFriendRequest godoc
// @Summary      Reject friend request
// @Description  Rejects a pending friend request from another user. Idempotent.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Friend request rejected"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/reject [post]
func RejectFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	requesterID, ok := targetUserID(c, viewerID.(uint))
	if !ok {
		return
	}

	result := database.DB.
		Where("requester_id = ? AND addressee_id = ? AND status = ?", requesterID, viewerID, models.StatusPending).
		Delete(&models.Friendship{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request rejected"})
}

// CancelFriendRequest godoc
// @Summary      Cancel friend request
// @Description  Cancels a friend request the caller sent earlier. Idempotent.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "Friend request cancelled"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/cancel [post]
func CancelFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID, ok := targetUserID(c, viewerID.(uint))
	if !ok {
		return
	}

	result := database.DB.
		Where("requester_id = ? AND addressee_id = ? AND status = ?", viewerID, targetID, models.StatusPending).
		Delete(&models.Friendship{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request cancelled"})
}

// RemoveFriend godoc
// @Summary      Remove friend
// @Description  Removes the mutual friends edge with another user. Succeeds as a no-op when no edge exists.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "Friend removed"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/remove [post]
func RemoveFriend(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID, ok := targetUserID(c, viewerID.(uint))
	if !ok {
		return
	}

	result := database.DB.
		Where("status = ? AND ((requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?))",
			models.StatusAccepted, viewerID, targetID, targetID, viewerID).
		Delete(&models.Friendship{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove friend"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}

// ListFriends godoc
// @Summary      List friends
// @Description  Resolves the caller's accepted friendships to profile summaries.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ProfileSummary
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/me/friends [get]
func ListFriends(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var edges []models.Friendship
	err := database.DB.
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)", models.StatusAccepted, viewerID, viewerID).
		Preload("Requester").Preload("Addressee").
		Find(&edges).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}

	summaries := []ProfileSummary{}
	for _, e := range edges {
		friend := e.Requester
		if e.RequesterID == viewerID.(uint) {
			friend = e.Addressee
		}
		if friend.ID == 0 {
			continue
		}
		summaries = append(summaries, newProfileSummary(friend))
	}

	c.JSON(http.StatusOK, summaries)
}

// ListIncomingRequests godoc
// @Summary      List incoming friend requests
// @Description  Resolves pending requests addressed to the caller to profile summaries.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ProfileSummary
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/me/requests/incoming [get]
func ListIncomingRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var edges []models.Friendship
	err := database.DB.
		Where("status = ? AND addressee_id = ?", models.StatusPending, viewerID).
		Preload("Requester").
		Find(&edges).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch incoming requests"})
		return
	}

	summaries := []ProfileSummary{}
	for _, e := range edges {
		if e.Requester.ID == 0 {
			continue
		}
		summaries = append(summaries, newProfileSummary(e.Requester))
	}

	c.JSON(http.StatusOK, summaries)
}

// ListOutgoingRequests godoc
// @Summary      List outgoing friend requests
// @Description  Resolves pending requests the caller has sent to profile summaries.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ProfileSummary
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/me/requests/outgoing [get]
func ListOutgoingRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var edges []models.Friendship
	err := database.DB.
		Where("status = ? AND requester_id = ?", models.StatusPending, viewerID).
		Preload("Addressee").
		Find(&edges).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch outgoing requests"})
		return
	}

	summaries := []ProfileSummary{}
	for _, e := range edges {
		if e.Addressee.ID == 0 {
			continue
		}
		summaries = append(summaries, newProfileSummary(e.Addressee))
	}

	c.JSON(http.StatusOK, summaries)
}
