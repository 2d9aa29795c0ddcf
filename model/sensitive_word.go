package model

import (
	"time"

	"github.com/google/uuid"
)

// SensitiveWord 敏感词表
type SensitiveWord struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Word      string    `json:"word" gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (SensitiveWord) TableName() string {
	return "sensitive_words"
}
