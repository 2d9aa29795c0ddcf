// Package session 刷新令牌与重置密码令牌的存储
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTokenNotFound 令牌不存在或已过期
var ErrTokenNotFound = errors.New("token not found or expired")

// Store 每个用户只保存一个刷新令牌；重置令牌以哈希为键，一次性使用
type Store interface {
	SaveRefreshToken(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	ValidateRefreshToken(ctx context.Context, userID uuid.UUID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID uuid.UUID) error

	SaveResetToken(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	// ConsumeResetToken 读取并删除
	ConsumeResetToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
}

func refreshKey(userID uuid.UUID) string {
	return "refresh:" + userID.String()
}

func resetKey(tokenHash string) string {
	return "reset:" + tokenHash
}
