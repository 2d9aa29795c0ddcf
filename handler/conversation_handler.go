package handler

import (
	"github.com/gin-gonic/gin"

	"threadsnet/service"
	"threadsnet/utils"
)

type ConversationHandler struct {
	convSvc *service.ConversationService
}

func NewConversationHandler(convSvc *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{convSvc: convSvc}
}

// GetConversations 获取会话列表，参与者中不含当前用户
// GET /api/message/conversations
func (h *ConversationHandler) GetConversations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	conversations, err := h.convSvc.GetConversations(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "conversations", conversations)
}

// CreatePrivateConversation 查找或创建与某用户的会话
// POST /api/message/conversations/:userId
func (h *ConversationHandler) CreatePrivateConversation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	otherID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	conversation, created, err := h.convSvc.CreateOrGetPrivateConversation(c.Request.Context(), userID, otherID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	if created {
		utils.Created(c, "", "conversation", conversation)
		return
	}
	utils.SuccessResponse(c, "conversation", conversation)
}
