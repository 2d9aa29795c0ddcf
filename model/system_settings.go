package model

import (
	"time"

	"github.com/google/uuid"
)

// 系统配置键
const (
	SettingSensitiveWordFilter  = "enable_sensitive_word_filter"
	SettingOnlineBroadcast      = "enable_online_broadcast"
	SettingReplyOwnershipPolicy = "reply_ownership_policy"
)

// SystemSettings 系统配置（管理员全局配置）
type SystemSettings struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SettingKey   string    `json:"setting_key" gorm:"unique;not null"`
	SettingValue string    `json:"setting_value" gorm:"not null"`
	Description  string    `json:"description"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"default:now()"`
}

func (SystemSettings) TableName() string {
	return "system_settings"
}

// DefaultSettings 初始化时写入的默认配置
func DefaultSettings() []SystemSettings {
	return []SystemSettings{
		{SettingKey: SettingSensitiveWordFilter, SettingValue: "true", Description: "mask sensitive words in posts, comments and replies"},
		{SettingKey: SettingOnlineBroadcast, SettingValue: "true", Description: "broadcast the online user list on connect and disconnect"},
		{SettingKey: SettingReplyOwnershipPolicy, SettingValue: "", Description: "reply_author or comment_author; empty falls back to REPLY_OWNERSHIP_POLICY"},
	}
}
