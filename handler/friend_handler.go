package handler

import (
	"github.com/gin-gonic/gin"

	"threadsnet/service"
	"threadsnet/utils"
)

type FriendHandler struct {
	friendSvc *service.FriendService
}

func NewFriendHandler(friendSvc *service.FriendService) *FriendHandler {
	return &FriendHandler{friendSvc: friendSvc}
}

// AddFriend POST /api/friend/addFriend/:userId
func (h *FriendHandler) AddFriend(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipientID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	friendship, err := h.friendSvc.SendRequest(c.Request.Context(), userID, recipientID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.Created(c, "Send request add friend successfully", "friendship", friendship)
}

// AcceptFriend POST /api/friend/acceptFriend/:requestId
func (h *FriendHandler) AcceptFriend(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := paramID(c, "requestId")
	if !ok {
		return
	}
	friendship, err := h.friendSvc.AcceptRequest(c.Request.Context(), requestID, userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Accept friend successfully", "friendRequest", friendship)
}

// RejectFriend POST /api/friend/rejectFriend/:requestId
func (h *FriendHandler) RejectFriend(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := paramID(c, "requestId")
	if !ok {
		return
	}
	friendship, err := h.friendSvc.RejectRequest(c.Request.Context(), requestID, userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Reject friend successfully", "friendRequest", friendship)
}

// Unfriend DELETE /api/friend/unfriend/:friendId
func (h *FriendHandler) Unfriend(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	friendID, ok := paramID(c, "friendId")
	if !ok {
		return
	}
	if err := h.friendSvc.Unfriend(c.Request.Context(), userID, friendID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Unfriend successfully", "", nil)
}

// ListFriends GET /api/friend/list
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	friends, err := h.friendSvc.ListFriends(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "friends", friends)
}

// ListPending GET /api/friend/pending
func (h *FriendHandler) ListPending(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	requests, err := h.friendSvc.ListPending(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "friendRequests", requests)
}
