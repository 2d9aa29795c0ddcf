package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"threadsnet/model"
	"threadsnet/repository"
)

func (s *Store) GetConversation(ctx context.Context, id uuid.UUID) (*model.Conversation, error) {
	defer s.lock()()

	c, ok := s.data.conversations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *Store) GetConversationByPair(ctx context.Context, a, b uuid.UUID) (*model.Conversation, error) {
	defer s.lock()()

	key := model.PairKey(a, b)
	for _, c := range s.data.conversations {
		if c.PairKey == key {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	defer s.lock()()

	conv.PairKey = model.PairKey(conv.UserAID, conv.UserBID)
	for _, c := range s.data.conversations {
		if c.PairKey == conv.PairKey {
			return repository.ErrDuplicate
		}
	}
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	now := s.now()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	s.data.conversations[conv.ID] = *conv
	return nil
}

func (s *Store) UpdateConversationLastMessage(ctx context.Context, id uuid.UUID, text string, senderID uuid.UUID) error {
	defer s.lock()()

	c, ok := s.data.conversations[id]
	if !ok {
		return repository.ErrNotFound
	}
	sender := senderID
	c.LastMessageText = text
	c.LastMessageSenderID = &sender
	c.UpdatedAt = s.now()
	s.data.conversations[id] = c
	return nil
}

func (s *Store) ListConversationsByUser(ctx context.Context, userID uuid.UUID) ([]model.Conversation, error) {
	defer s.lock()()

	convs := make([]model.Conversation, 0)
	for _, c := range s.data.conversations {
		if c.HasParticipant(userID) {
			convs = append(convs, c)
		}
	}
	sort.Slice(convs, func(i, j int) bool { return convs[i].UpdatedAt.After(convs[j].UpdatedAt) })
	return convs, nil
}

func (s *Store) CreateMessage(ctx context.Context, msg *model.Message) error {
	defer s.lock()()

	if _, ok := s.data.conversations[msg.ConversationID]; !ok {
		return repository.ErrNotFound
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	msg.CreatedAt = s.now()
	s.data.messages[msg.ID] = *msg
	return nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]model.Message, error) {
	defer s.lock()()

	msgs := make([]model.Message, 0)
	for _, m := range s.data.messages {
		if m.ConversationID == conversationID {
			msgs = append(msgs, m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}
