package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore 内存令牌存储，用于测试和本地开发
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

// WithClock 替换时钟，测试过期用
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
}

func (s *MemoryStore) get(key string, remove bool) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return "", false
	}
	if remove {
		delete(s.entries, key)
	}
	return e.value, true
}

func (s *MemoryStore) SaveRefreshToken(_ context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	s.set(refreshKey(userID), token, ttl)
	return nil
}

func (s *MemoryStore) ValidateRefreshToken(_ context.Context, userID uuid.UUID, token string) (bool, error) {
	stored, ok := s.get(refreshKey(userID), false)
	return ok && stored == token, nil
}

func (s *MemoryStore) DeleteRefreshToken(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	delete(s.entries, refreshKey(userID))
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SaveResetToken(_ context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	s.set(resetKey(tokenHash), userID.String(), ttl)
	return nil
}

func (s *MemoryStore) ConsumeResetToken(_ context.Context, tokenHash string) (uuid.UUID, error) {
	value, ok := s.get(resetKey(tokenHash), true)
	if !ok {
		return uuid.Nil, ErrTokenNotFound
	}
	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, ErrTokenNotFound
	}
	return userID, nil
}
