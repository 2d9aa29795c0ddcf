package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"threadsnet/model"
	"threadsnet/repository"
)

// ConversationService 私聊会话：每对用户唯一
type ConversationService struct {
	store repository.Store
}

func NewConversationService(store repository.Store) *ConversationService {
	return &ConversationService{store: store}
}

// CreateOrGetPrivateConversation 查找或创建会话，返回是否新创建。
// 并发创建时唯一索引冲突的一方重新读取胜出者
func (s *ConversationService) CreateOrGetPrivateConversation(ctx context.Context, user1ID, user2ID uuid.UUID) (*model.Conversation, bool, error) {
	if user1ID == user2ID {
		return nil, false, NewError(KindValidation, "cannot create conversation with yourself")
	}

	conv, err := s.store.GetConversationByPair(ctx, user1ID, user2ID)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, storeError(err, "Conversation not found")
	}

	if _, err := s.store.GetUserByID(ctx, user2ID); err != nil {
		return nil, false, storeError(err, "User not found")
	}
	conv = &model.Conversation{UserAID: user1ID, UserBID: user2ID}
	err = s.store.CreateConversation(ctx, conv)
	if errors.Is(err, repository.ErrDuplicate) {
		existing, err := s.store.GetConversationByPair(ctx, user1ID, user2ID)
		if err != nil {
			return nil, false, storeError(err, "Conversation not found")
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, storeError(err, "Conversation not found")
	}
	return conv, true, nil
}

// GetConversations 用户的会话列表，按最近更新倒序，participants 去掉用户本人
func (s *ConversationService) GetConversations(ctx context.Context, userID uuid.UUID) ([]model.ConversationListItem, error) {
	convs, err := s.store.ListConversationsByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "Conversation not found")
	}

	others := make([]uuid.UUID, 0, len(convs))
	for i := range convs {
		others = append(others, otherParticipant(&convs[i], userID))
	}
	summaries, err := loadSummaries(ctx, s.store, others)
	if err != nil {
		return nil, err
	}

	items := make([]model.ConversationListItem, 0, len(convs))
	for i := range convs {
		c := &convs[i]
		item := model.ConversationListItem{
			ID:           c.ID,
			Participants: []model.UserSummary{},
			LastMessage: model.LastMessage{
				Text:   c.LastMessageText,
				Sender: c.LastMessageSenderID,
			},
			UpdatedAt: c.UpdatedAt,
		}
		if summary, ok := summaries[others[i]]; ok {
			item.Participants = append(item.Participants, summary)
		}
		items = append(items, item)
	}
	return items, nil
}

func otherParticipant(c *model.Conversation, userID uuid.UUID) uuid.UUID {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}
