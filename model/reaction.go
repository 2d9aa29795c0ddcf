package model

import (
	"time"

	"github.com/google/uuid"
)

// ReactionKind 点赞/收藏类集合
type ReactionKind string

const (
	ReactionPostLike    ReactionKind = "post_like"
	ReactionPostSave    ReactionKind = "post_save"
	ReactionCommentLike ReactionKind = "comment_like"
	ReactionReplyLike   ReactionKind = "reply_like"
)

// Reaction 用户对目标的一次点赞/收藏，(kind, target, user) 唯一
type Reaction struct {
	Kind      ReactionKind `json:"kind" gorm:"type:varchar(20);primaryKey"`
	TargetID  uuid.UUID    `json:"target_id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID    `json:"user_id" gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time    `json:"created_at" gorm:"autoCreateTime"`
}

func (Reaction) TableName() string {
	return "reactions"
}
