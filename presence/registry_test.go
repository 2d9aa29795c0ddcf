package presence

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadsnet/metrics"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func (c *fakeConn) Send(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.sent = append(c.sent, payload)
	return true
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) lastEvent(t *testing.T) (string, []uuid.UUID) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.sent)
	var ev struct {
		Type string      `json:"type"`
		Data []uuid.UUID `json:"data"`
	}
	require.NoError(t, json.Unmarshal(c.sent[len(c.sent)-1], &ev))
	return ev.Type, ev.Data
}

func TestRegistry_RegisterBroadcastsOnlineUsers(t *testing.T) {
	r := NewRegistry(nil, nil)
	a, b := uuid.New(), uuid.New()
	connA, connB := &fakeConn{}, &fakeConn{}

	r.Register(a, connA)
	r.Register(b, connB)

	typ, online := connA.lastEvent(t)
	assert.Equal(t, EventOnlineUsers, typ)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, online)
	assert.Equal(t, r.OnlineUsers(), online)

	_, online = connB.lastEvent(t)
	assert.Len(t, online, 2)
}

func TestRegistry_LastWriterWins(t *testing.T) {
	r := NewRegistry(nil, nil)
	u := uuid.New()
	first, second := &fakeConn{}, &fakeConn{}

	r.Register(u, first)
	r.Register(u, second)

	got, ok := r.Lookup(u)
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.True(t, first.isClosed())
	assert.Len(t, r.OnlineUsers(), 1)
}

func TestRegistry_StaleUnregisterKeepsNewConnection(t *testing.T) {
	r := NewRegistry(nil, nil)
	u := uuid.New()
	first, second := &fakeConn{}, &fakeConn{}

	r.Register(u, first)
	r.Register(u, second)

	assert.False(t, r.Unregister(u, first))
	assert.True(t, r.IsOnline(u))

	assert.True(t, r.Unregister(u, second))
	assert.False(t, r.IsOnline(u))
	assert.False(t, r.Unregister(u, second))
}

func TestRegistry_SendTo(t *testing.T) {
	r := NewRegistry(nil, nil)
	u := uuid.New()

	assert.False(t, r.SendTo(u, []byte("x")), "offline user")

	conn := &fakeConn{}
	r.Register(u, conn)
	assert.True(t, r.SendTo(u, []byte("hello")))

	conn.Close()
	assert.False(t, r.SendTo(u, []byte("after close")))
}

func TestRegistry_BroadcastDisabled(t *testing.T) {
	r := NewRegistry(nil, func() bool { return false })
	conn := &fakeConn{}
	r.Register(uuid.New(), conn)

	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.Empty(t, conn.sent)
}

func TestRegistry_OnlineUsersSorted(t *testing.T) {
	r := NewRegistry(nil, func() bool { return false })
	for i := 0; i < 20; i++ {
		r.Register(uuid.New(), &fakeConn{})
	}
	online := r.OnlineUsers()
	for i := 1; i < len(online); i++ {
		assert.Less(t, online[i-1].String(), online[i].String())
	}
}

func TestRegistry_ConcurrentRegisterUnregister(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(metrics.New(reg), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := uuid.New()
			c := &fakeConn{}
			r.Register(u, c)
			r.SendTo(u, []byte("ping"))
			r.Unregister(u, c)
		}()
	}
	wg.Wait()

	assert.Empty(t, r.OnlineUsers())
}
