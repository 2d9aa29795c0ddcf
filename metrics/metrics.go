// Package metrics 进程内 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "threadsnet"

// Metrics 所有方法对 nil 接收者安全，未启用指标时可直接传 nil
type Metrics struct {
	onlineUsers       prometheus.Gauge
	messagesSent      prometheus.Counter
	pushes            *prometheus.CounterVec
	friendTransitions *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
}

// New 在给定注册表上注册指标；测试中传入独立的 prometheus.NewRegistry()
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		onlineUsers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_users",
			Help:      "Number of users currently registered in the presence registry",
		}),
		messagesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Direct messages persisted",
		}),
		pushes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_push_total",
			Help:      "Live newMessage pushes by result",
		}, []string{"result"}),
		friendTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "friend_transitions_total",
			Help:      "Friend request state transitions",
		}, []string{"transition"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status",
		}, []string{"method", "status"}),
	}
}

func (m *Metrics) SetOnlineUsers(n int) {
	if m == nil {
		return
	}
	m.onlineUsers.Set(float64(n))
}

func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.messagesSent.Inc()
}

// MessagePush result: delivered | offline | dropped
func (m *Metrics) MessagePush(result string) {
	if m == nil {
		return
	}
	m.pushes.WithLabelValues(result).Inc()
}

func (m *Metrics) FriendTransition(transition string) {
	if m == nil {
		return
	}
	m.friendTransitions.WithLabelValues(transition).Inc()
}

func (m *Metrics) HTTPRequest(method, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, status).Inc()
}
