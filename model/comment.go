package model

import (
	"time"

	"github.com/google/uuid"
)

// Comment 评论表
type Comment struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PostID      uuid.UUID `json:"post_id" gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	TextComment string    `json:"text_comment" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Author  *UserSummary `json:"author,omitempty" gorm:"-"`
	Likes   []uuid.UUID  `json:"likes" gorm:"-"`
	Replies []Reply      `json:"replies" gorm:"-"`
}

func (Comment) TableName() string {
	return "comments"
}

// Reply 评论回复表
type Reply struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CommentID   uuid.UUID `json:"comment_id" gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	TextComment string    `json:"text_comment" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Author *UserSummary `json:"author,omitempty" gorm:"-"`
	Likes  []uuid.UUID  `json:"likes" gorm:"-"`
}

func (Reply) TableName() string {
	return "comment_replies"
}
