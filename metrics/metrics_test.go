package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetOnlineUsers(3)
	m.MessageSent()
	m.MessageSent()
	m.MessagePush("delivered")
	m.MessagePush("offline")
	m.MessagePush("offline")
	m.FriendTransition("accepted")

	assert.Equal(t, 3.0, testutil.ToFloat64(m.onlineUsers))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.messagesSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pushes.WithLabelValues("delivered")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pushes.WithLabelValues("offline")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.friendTransitions.WithLabelValues("accepted")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SetOnlineUsers(1)
		m.MessageSent()
		m.MessagePush("delivered")
		m.FriendTransition("sent")
		m.HTTPRequest("GET", "200")
	})
}

func TestNew_IsolatedRegistries(t *testing.T) {
	// 两个独立注册表不会因重复注册而 panic
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
