package model

import (
	"time"

	"github.com/google/uuid"
)

// 关系类型
const (
	RelationshipFollow  = "follow"
	RelationshipBlocked = "blocked"
)

// UserRelationship 用户关系表，一行即一条有向边 user -> target
type UserRelationship struct {
	UserID           uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	TargetUserID     uuid.UUID `json:"target_user_id" gorm:"type:uuid;primaryKey;index"`
	RelationshipType string    `json:"relationship_type" gorm:"type:varchar(20);primaryKey"` // 'follow' | 'blocked'
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (UserRelationship) TableName() string {
	return "user_relationships"
}
