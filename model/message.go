package model

import (
	"time"

	"github.com/google/uuid"
)

// Message 消息表
type Message struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationID uuid.UUID `json:"conversation_id" gorm:"type:uuid;not null;index:idx_messages_conversation_created,priority:1"`
	SenderID       uuid.UUID `json:"sender_id" gorm:"type:uuid;not null"`
	Text           string    `json:"text" gorm:"type:text"`
	Img            string    `json:"img" gorm:"type:text"`
	Seen           bool      `json:"seen" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime;index:idx_messages_conversation_created,priority:2"`
}

func (Message) TableName() string {
	return "messages"
}

// WSMessage WebSocket 消息格式
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SendMessageRequest 发送消息请求（HTTP 与 WebSocket 共用）
type SendMessageRequest struct {
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
	Img         string `json:"img,omitempty"`
}
