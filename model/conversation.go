package model

import (
	"time"

	"github.com/google/uuid"
)

// Conversation 私信会话表，每对用户一个会话
type Conversation struct {
	ID                  uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PairKey             string     `json:"-" gorm:"type:varchar(80);not null;uniqueIndex"`
	UserAID             uuid.UUID  `json:"user_a_id" gorm:"type:uuid;not null;index"`
	UserBID             uuid.UUID  `json:"user_b_id" gorm:"type:uuid;not null;index"`
	LastMessageText     string     `json:"last_message_text" gorm:"type:text"`
	LastMessageSenderID *uuid.UUID `json:"last_message_sender_id,omitempty" gorm:"type:uuid"`
	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Participants 会话双方
func (c *Conversation) Participants() []uuid.UUID {
	return []uuid.UUID{c.UserAID, c.UserBID}
}

// HasParticipant 是否为会话成员
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// LastMessage 最新消息预览
type LastMessage struct {
	Text   string     `json:"text"`
	Sender *uuid.UUID `json:"sender,omitempty"`
}

// ConversationListItem 会话列表项，participants 不含请求者本人
type ConversationListItem struct {
	ID           uuid.UUID     `json:"id"`
	Participants []UserSummary `json:"participants"`
	LastMessage  LastMessage   `json:"last_message"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
