package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"threadsnet/model"
	"threadsnet/repository"
)

func (s *Store) GetConversation(ctx context.Context, id uuid.UUID) (*model.Conversation, error) {
	var conv model.Conversation
	if err := s.conn(ctx).Where("id = ?", id).First(&conv).Error; err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

func (s *Store) GetConversationByPair(ctx context.Context, a, b uuid.UUID) (*model.Conversation, error) {
	var conv model.Conversation
	if err := s.conn(ctx).Where("pair_key = ?", model.PairKey(a, b)).First(&conv).Error; err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

func (s *Store) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	conv.PairKey = model.PairKey(conv.UserAID, conv.UserBID)
	return translate(s.conn(ctx).Create(conv).Error)
}

func (s *Store) UpdateConversationLastMessage(ctx context.Context, id uuid.UUID, text string, senderID uuid.UUID) error {
	result := s.conn(ctx).Model(&model.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_message_text":      text,
			"last_message_sender_id": senderID,
			"updated_at":             time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update conversation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) ListConversationsByUser(ctx context.Context, userID uuid.UUID) ([]model.Conversation, error) {
	convs := make([]model.Conversation, 0)
	err := s.conn(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	return convs, nil
}

func (s *Store) CreateMessage(ctx context.Context, msg *model.Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if err := s.conn(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]model.Message, error) {
	msgs := make([]model.Message, 0)
	err := s.conn(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	return msgs, nil
}
