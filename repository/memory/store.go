// Package memory 是 repository.Store 的内存实现，用于测试与 STORAGE_DRIVER=memory
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"threadsnet/model"
	"threadsnet/repository"
)

type relKey struct {
	user   uuid.UUID
	target uuid.UUID
	typ    string
}

type reactionKey struct {
	kind   model.ReactionKind
	target uuid.UUID
	user   uuid.UUID
}

type state struct {
	users         map[uuid.UUID]model.User
	relationships map[relKey]time.Time
	friendships   map[uuid.UUID]model.Friendship
	posts         map[uuid.UUID]model.Post
	reactions     map[reactionKey]time.Time
	comments      map[uuid.UUID]model.Comment
	replies       map[uuid.UUID]model.Reply
	conversations map[uuid.UUID]model.Conversation
	messages      map[uuid.UUID]model.Message
	words         map[string]model.SensitiveWord
	settings      map[string]model.SystemSettings
	last          time.Time
}

func newState() *state {
	return &state{
		users:         make(map[uuid.UUID]model.User),
		relationships: make(map[relKey]time.Time),
		friendships:   make(map[uuid.UUID]model.Friendship),
		posts:         make(map[uuid.UUID]model.Post),
		reactions:     make(map[reactionKey]time.Time),
		comments:      make(map[uuid.UUID]model.Comment),
		replies:       make(map[uuid.UUID]model.Reply),
		conversations: make(map[uuid.UUID]model.Conversation),
		messages:      make(map[uuid.UUID]model.Message),
		words:         make(map[string]model.SensitiveWord),
		settings:      make(map[string]model.SystemSettings),
	}
}

func (s *state) clone() *state {
	return &state{
		users:         maps.Clone(s.users),
		relationships: maps.Clone(s.relationships),
		friendships:   maps.Clone(s.friendships),
		posts:         maps.Clone(s.posts),
		reactions:     maps.Clone(s.reactions),
		comments:      maps.Clone(s.comments),
		replies:       maps.Clone(s.replies),
		conversations: maps.Clone(s.conversations),
		messages:      maps.Clone(s.messages),
		words:         maps.Clone(s.words),
		settings:      maps.Clone(s.settings),
		last:          s.last,
	}
}

// Store 内存存储。所有方法在同一把锁下执行，事务期间持有该锁
type Store struct {
	mu   *sync.Mutex
	data *state
	inTx bool
}

// NewStore 创建空的内存存储
func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, data: newState()}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// now 单调递增的时间戳，保证同一毫秒内写入的记录仍然有序
func (s *Store) now() time.Time {
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(s.data.last) {
		t = s.data.last.Add(time.Microsecond)
	}
	s.data.last = t
	return t
}

// Transaction fn 出错时恢复到事务开始前的快照
func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &Store{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}
