package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore 基于 Redis 的令牌存储，过期由 Redis TTL 负责
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) SaveRefreshToken(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, refreshKey(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

func (s *RedisStore) ValidateRefreshToken(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	stored, err := s.rdb.Get(ctx, refreshKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read refresh token: %w", err)
	}
	return stored == token, nil
}

func (s *RedisStore) DeleteRefreshToken(ctx context.Context, userID uuid.UUID) error {
	if err := s.rdb.Del(ctx, refreshKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (s *RedisStore) SaveResetToken(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, resetKey(tokenHash), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}
	return nil
}

func (s *RedisStore) ConsumeResetToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	value, err := s.rdb.GetDel(ctx, resetKey(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read reset token: %w", err)
	}
	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, ErrTokenNotFound
	}
	return userID, nil
}
