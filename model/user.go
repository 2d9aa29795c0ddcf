package model

import (
	"time"

	"github.com/google/uuid"
)

// 用户角色
const (
	RoleUser  = "user"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// User 用户表
type User struct {
	ID                uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name              string     `json:"name" gorm:"type:varchar(100);not null"`
	Username          string     `json:"username" gorm:"type:varchar(50);not null;uniqueIndex"`
	Email             string     `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Password          string     `json:"-" gorm:"type:varchar(255);not null"`
	Role              string     `json:"role" gorm:"type:varchar(20);not null;default:user"` // 'user' | 'staff' | 'admin'
	Avatar            string     `json:"avatar" gorm:"type:text"`
	Bio               string     `json:"bio" gorm:"type:text"`
	IsLocked          bool       `json:"is_locked" gorm:"default:false"`
	PasswordChangedAt *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// IsPrivileged 管理员或运营
func (u *User) IsPrivileged() bool {
	return u.Role == RoleAdmin || u.Role == RoleStaff
}

// Summary 用户简要信息
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Username: u.Username, Avatar: u.Avatar}
}

// UserSummary 嵌入帖子、评论、会话中的用户信息
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar"`
}

// UserUpdate 用户可更新字段，nil 表示不修改
type UserUpdate struct {
	Name              *string
	Username          *string
	Email             *string
	Password          *string
	Role              *string
	Avatar            *string
	Bio               *string
	IsLocked          *bool
	PasswordChangedAt *time.Time
}

// UserDetail 用户详情（含社交关系）
type UserDetail struct {
	User
	Followers   []uuid.UUID `json:"followers"`
	Following   []uuid.UUID `json:"following"`
	Friends     []uuid.UUID `json:"friends"`
	BlockedList []uuid.UUID `json:"blocked_list"`
	Liked       []uuid.UUID `json:"liked"`
	Saved       []uuid.UUID `json:"saved"`
}
