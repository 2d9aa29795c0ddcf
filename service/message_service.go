package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"threadsnet/metrics"
	"threadsnet/model"
	"threadsnet/repository"
	"threadsnet/storage"
)

// EventNewMessage 新消息推送事件
const EventNewMessage = "newMessage"

// Pusher 向在线用户推送实时事件，用户不在线返回 false
type Pusher interface {
	SendTo(userID uuid.UUID, payload []byte) bool
}

type MessageService struct {
	store         repository.Store
	conversations *ConversationService
	relationships *RelationshipService
	pusher        Pusher
	media         storage.MediaService
	metrics       *metrics.Metrics
}

func NewMessageService(
	store repository.Store,
	conversations *ConversationService,
	relationships *RelationshipService,
	pusher Pusher,
	media storage.MediaService,
	m *metrics.Metrics,
) *MessageService {
	return &MessageService{
		store:         store,
		conversations: conversations,
		relationships: relationships,
		pusher:        pusher,
		media:         media,
		metrics:       m,
	}
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	RecipientID uuid.UUID
	Text        string
	Img         string
}

// SendMessage 发送私信：查找/创建会话，上传图片，事务内写消息并更新 lastMessage，提交后尽力推送
func (s *MessageService) SendMessage(ctx context.Context, senderID uuid.UUID, req *SendMessageRequest) (*model.Message, error) {
	text := strings.TrimSpace(req.Text)
	if senderID == req.RecipientID {
		return nil, NewError(KindValidation, "you cannot send a message to yourself")
	}
	if req.RecipientID == uuid.Nil || (text == "" && strings.TrimSpace(req.Img) == "") {
		return nil, NewError(KindValidation, "recipientId and message or img are required")
	}

	if _, err := s.store.GetUserByID(ctx, req.RecipientID); err != nil {
		return nil, storeError(err, "Recipient not found")
	}
	blocked, err := s.relationships.IsBlocked(ctx, req.RecipientID, senderID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, NewError(KindForbidden, "you are blocked by this user")
	}

	conv, _, err := s.conversations.CreateOrGetPrivateConversation(ctx, senderID, req.RecipientID)
	if err != nil {
		return nil, err
	}

	img, err := storage.UploadImage(ctx, s.media, "messages", req.Img)
	if errors.Is(err, storage.ErrInvalidImage) {
		return nil, WrapError(KindValidation, "invalid image", err)
	}
	if err != nil {
		return nil, WrapError(KindInternal, "failed to upload image", err)
	}

	msg := &model.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Text:           text,
		Img:            img,
	}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.CreateMessage(ctx, msg); err != nil {
			return err
		}
		return tx.UpdateConversationLastMessage(ctx, conv.ID, text, senderID)
	})
	if err != nil {
		if img != "" && s.media != nil {
			if delErr := s.media.Delete(ctx, img); delErr != nil {
				zap.L().Warn("failed to delete orphaned message image", zap.String("url", img), zap.Error(delErr))
			}
		}
		return nil, storeError(err, "Conversation not found")
	}

	s.metrics.MessageSent()
	s.push(req.RecipientID, msg)
	return msg, nil
}

// push 在线才推送，不在线不是错误，也不排队
func (s *MessageService) push(recipientID uuid.UUID, msg *model.Message) {
	if s.pusher == nil {
		return
	}
	payload, err := json.Marshal(model.WSMessage{Type: EventNewMessage, Data: msg})
	if err != nil {
		zap.L().Error("failed to encode message event", zap.Error(err))
		return
	}
	if s.pusher.SendTo(recipientID, payload) {
		s.metrics.MessagePush("delivered")
		return
	}
	s.metrics.MessagePush("offline")
	zap.L().Debug("recipient offline, message not pushed",
		zap.String("recipient_id", recipientID.String()),
		zap.String("message_id", msg.ID.String()))
}

// GetMessages 两人之间的全部消息，按创建时间升序；无会话时返回 NotFound
func (s *MessageService) GetMessages(ctx context.Context, userID, otherUserID uuid.UUID) ([]model.Message, error) {
	conv, err := s.store.GetConversationByPair(ctx, userID, otherUserID)
	if err != nil {
		return nil, storeError(err, "Conversation not found")
	}
	msgs, err := s.store.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, storeError(err, "Conversation not found")
	}
	return msgs, nil
}

// GetConversations 见 ConversationService.GetConversations
func (s *MessageService) GetConversations(ctx context.Context, userID uuid.UUID) ([]model.ConversationListItem, error) {
	return s.conversations.GetConversations(ctx, userID)
}
