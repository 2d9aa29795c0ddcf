package handler

import (
	"github.com/gin-gonic/gin"

	"threadsnet/service"
	"threadsnet/utils"
)

type RelationshipHandler struct {
	relSvc *service.RelationshipService
}

func NewRelationshipHandler(relSvc *service.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{relSvc: relSvc}
}

// FollowUser 关注/取消关注
// PUT /api/user/follow/:userId
func (h *RelationshipHandler) FollowUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	following, err := h.relSvc.ToggleFollow(c.Request.Context(), userID, targetID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	message := "Unfollow user"
	if following {
		message = "Follow user"
	}
	utils.SuccessWithMessage(c, message, "following", following)
}

// BlockUser 拉黑用户
// PUT /api/user/blocked/:userId
func (h *RelationshipHandler) BlockUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	if err := h.relSvc.BlockUser(c.Request.Context(), userID, targetID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Blocked user successfully", "", nil)
}

// UnblockUser 取消拉黑
// PUT /api/user/unblocked/:userId
func (h *RelationshipHandler) UnblockUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	if err := h.relSvc.UnblockUser(c.Request.Context(), userID, targetID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Unblock user successfully", "", nil)
}

// GetBlockedUsers 获取拉黑列表
// GET /api/user/getBlockedListUsers
func (h *RelationshipHandler) GetBlockedUsers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	blockedUsers, err := h.relSvc.GetBlockedUsers(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Get blocked user list successfully", "blockedList", blockedUsers)
}
