package model

import (
	"time"

	"github.com/google/uuid"
)

// FriendshipStatus 好友请求状态
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

// Friendship 好友请求表，同一对用户只有一行
type Friendship struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequesterID uuid.UUID        `json:"requester_id" gorm:"type:uuid;not null;index"`
	RecipientID uuid.UUID        `json:"recipient_id" gorm:"type:uuid;not null;index"`
	PairKey     string           `json:"-" gorm:"type:varchar(80);not null;uniqueIndex"`
	Status      FriendshipStatus `json:"status" gorm:"type:varchar(20);not null;default:pending"`
	CreatedAt   time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Friendship) TableName() string {
	return "friendships"
}

// Other 返回另一方
func (f *Friendship) Other(userID uuid.UUID) uuid.UUID {
	if f.RequesterID == userID {
		return f.RecipientID
	}
	return f.RequesterID
}

// PairKey 无序用户对的规范键
func PairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if as > bs {
		as, bs = bs, as
	}
	return as + ":" + bs
}

// FriendRequestView 待处理请求（含请求方信息）
type FriendRequestView struct {
	Friendship
	Requester *UserSummary `json:"requester,omitempty"`
}
