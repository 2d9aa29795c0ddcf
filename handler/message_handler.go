package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"threadsnet/model"
	"threadsnet/service"
	"threadsnet/utils"
)

type MessageHandler struct {
	msgSvc *service.MessageService
}

func NewMessageHandler(msgSvc *service.MessageService) *MessageHandler {
	return &MessageHandler{msgSvc: msgSvc}
}

// toServiceRequest recipientId 解析失败视为参数错误
func toServiceRequest(req *model.SendMessageRequest) (*service.SendMessageRequest, error) {
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		return nil, service.NewError(service.KindValidation, "recipientId is required")
	}
	return &service.SendMessageRequest{RecipientID: recipientID, Text: req.Message, Img: req.Img}, nil
}

// SendMessage 发送私信
// POST /api/message/
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var body model.SendMessageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}
	req, err := toServiceRequest(&body)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	message, err := h.msgSvc.SendMessage(c.Request.Context(), userID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.Created(c, "", "message", message)
}

// GetMessages 与某个用户的全部消息（按时间升序）
// GET /api/message/:otherUserId
func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	otherID, ok := paramID(c, "otherUserId")
	if !ok {
		return
	}
	messages, err := h.msgSvc.GetMessages(c.Request.Context(), userID, otherID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "messages", messages)
}
