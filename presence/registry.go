// Package presence 进程内在线用户注册表：userID -> 当前连接
package presence

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"threadsnet/metrics"
)

// EventOnlineUsers 在线用户列表推送事件
const EventOnlineUsers = "getOnlineUsers"

// Connection 一个实时连接。连接关闭后 Send 返回 false，不会 panic
type Connection interface {
	Send(payload []byte) bool
	Close()
}

// Registry 每个用户只保留一个连接，后注册者覆盖先注册者
type Registry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]Connection

	metrics          *metrics.Metrics
	broadcastEnabled func() bool
}

// NewRegistry broadcastEnabled 为 nil 时总是广播在线列表
func NewRegistry(m *metrics.Metrics, broadcastEnabled func() bool) *Registry {
	return &Registry{
		conns:            make(map[uuid.UUID]Connection),
		metrics:          m,
		broadcastEnabled: broadcastEnabled,
	}
}

// Register 注册连接，被替换的旧连接会被关闭
func (r *Registry) Register(userID uuid.UUID, conn Connection) {
	r.mu.Lock()
	old, existed := r.conns[userID]
	r.conns[userID] = conn
	online := r.sortedIDsLocked()
	r.mu.Unlock()

	if existed && old != conn {
		old.Close()
		zap.L().Debug("presence replaced", zap.String("user_id", userID.String()))
	}
	r.metrics.SetOnlineUsers(len(online))
	r.broadcastOnline(online)
}

// Unregister 仅当当前登记的仍是该连接时才删除，避免旧连接断开时误删新连接
func (r *Registry) Unregister(userID uuid.UUID, conn Connection) bool {
	r.mu.Lock()
	current, ok := r.conns[userID]
	if !ok || current != conn {
		r.mu.Unlock()
		return false
	}
	delete(r.conns, userID)
	online := r.sortedIDsLocked()
	r.mu.Unlock()

	r.metrics.SetOnlineUsers(len(online))
	r.broadcastOnline(online)
	return true
}

// Lookup 查找用户当前连接
func (r *Registry) Lookup(userID uuid.UUID) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[userID]
	return conn, ok
}

// IsOnline 用户是否在线
func (r *Registry) IsOnline(userID uuid.UUID) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// OnlineUsers 在线用户 id，按字符串升序
func (r *Registry) OnlineUsers() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedIDsLocked()
}

// SendTo 推送给在线用户，不在线返回 false
func (r *Registry) SendTo(userID uuid.UUID, payload []byte) bool {
	conn, ok := r.Lookup(userID)
	if !ok {
		return false
	}
	return conn.Send(payload)
}

// Broadcast 推送给所有在线连接
func (r *Registry) Broadcast(payload []byte) {
	r.mu.RLock()
	conns := make([]Connection, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		c.Send(payload)
	}
}

func (r *Registry) sortedIDsLocked() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func (r *Registry) broadcastOnline(online []uuid.UUID) {
	if r.broadcastEnabled != nil && !r.broadcastEnabled() {
		return
	}
	payload, err := json.Marshal(struct {
		Type string      `json:"type"`
		Data []uuid.UUID `json:"data"`
	}{Type: EventOnlineUsers, Data: online})
	if err != nil {
		zap.L().Error("failed to encode online users", zap.Error(err))
		return
	}
	r.Broadcast(payload)
}
