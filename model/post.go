package model

import (
	"time"

	"github.com/google/uuid"
)

// Visibility 帖子可见性
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFriends   Visibility = "friends"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

// Valid 是否为已知可见性
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriends, VisibilityFollowers, VisibilityPrivate:
		return true
	}
	return false
}

// Post 帖子表
type Post struct {
	ID                uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PostedBy          uuid.UUID  `json:"posted_by" gorm:"type:uuid;not null;index"`
	Text              string     `json:"text" gorm:"type:text"`
	Image             string     `json:"image" gorm:"type:text"`
	Visibility        Visibility `json:"visibility" gorm:"type:varchar(20);not null;default:public;index"`
	NumberViews       int64      `json:"number_views" gorm:"default:0"`
	NumberViewsRepost int64      `json:"number_views_repost" gorm:"default:0"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// 聚合字段（不存数据库）
	Author     *UserSummary `json:"author,omitempty" gorm:"-"`
	Likes      []uuid.UUID  `json:"likes" gorm:"-"`
	SavedLists []uuid.UUID  `json:"saved_lists" gorm:"-"`
	Comments   []uuid.UUID  `json:"comments" gorm:"-"`
}

func (Post) TableName() string {
	return "posts"
}

// PostUpdate 帖子可更新字段
type PostUpdate struct {
	Text       *string
	Image      *string
	Visibility *Visibility
}

// PostCounter 帖子计数器
type PostCounter string

const (
	CounterViews   PostCounter = "number_views"
	CounterReposts PostCounter = "number_views_repost"
)

// PostQuery 帖子列表过滤条件，空切片表示不过滤
type PostQuery struct {
	AuthorIDs        []uuid.UUID
	ExcludeAuthorIDs []uuid.UUID
	PostIDs          []uuid.UUID
	Visibilities     []Visibility
}
