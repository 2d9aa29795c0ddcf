package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadsnet/presence"
	"threadsnet/service"
)

func dial(t *testing.T, srv *httptest.Server, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	return websocket.DefaultDialer.Dial(url, nil)
}

// readUntil 跳过其他事件，直到读到指定类型
func readUntil(t *testing.T, conn *websocket.Conn, eventType string) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var raw struct {
			Type string      `json:"type"`
			Data interface{} `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&raw))
		if raw.Type != eventType {
			continue
		}
		if m, ok := raw.Data.(map[string]interface{}); ok {
			return m
		}
		return map[string]interface{}{"value": raw.Data}
	}
}

func TestWebSocket_Authentication(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	_, resp, err := dial(t, srv, "")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dial(t, srv, "token=garbage")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dial(t, srv, "token="+alice.Token+"&userId="+uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial(t, srv, "token="+alice.Token+"&userId="+alice.ID)
	require.NoError(t, err)
	defer conn.Close()

	online := readUntil(t, conn, presence.EventOnlineUsers)
	assert.Equal(t, []interface{}{alice.ID}, online["value"])
}

func TestWebSocket_MessageDelivery(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	bobConn, _, err := dial(t, srv, "token="+bob.Token)
	require.NoError(t, err)
	defer bobConn.Close()
	readUntil(t, bobConn, presence.EventOnlineUsers)

	aliceConn, _, err := dial(t, srv, "token="+alice.Token)
	require.NoError(t, err)
	defer aliceConn.Close()

	// HTTP 发送，在线接收方收到推送
	w, _ := s.do(t, http.MethodPost, "/api/message/", alice.Token, gin.H{"recipientId": bob.ID, "message": "over http"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	pushed := readUntil(t, bobConn, service.EventNewMessage)
	assert.Equal(t, "over http", pushed["text"])
	assert.Equal(t, alice.ID, pushed["sender_id"])

	// WebSocket 发送，发送方收到回执，接收方收到推送
	require.NoError(t, aliceConn.WriteJSON(gin.H{
		"type": eventSendMessage,
		"data": gin.H{"recipientId": bob.ID, "message": "over ws"},
	}))
	ack := readUntil(t, aliceConn, eventMessageSent)
	assert.Equal(t, "over ws", ack["text"])

	pushed = readUntil(t, bobConn, service.EventNewMessage)
	assert.Equal(t, "over ws", pushed["text"])
	assert.Equal(t, ack["id"], pushed["id"])

	require.NoError(t, aliceConn.WriteJSON(gin.H{"type": eventSendMessage, "data": gin.H{"message": "nobody"}}))
	errEvent := readUntil(t, aliceConn, eventError)
	assert.Equal(t, "recipientId is required", errEvent["message"])

	require.NoError(t, aliceConn.WriteJSON(gin.H{"type": "dance"}))
	errEvent = readUntil(t, aliceConn, eventError)
	assert.Equal(t, "unknown event type", errEvent["message"])
}

func TestWebSocket_ReconnectReplacesConnection(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	first, _, err := dial(t, srv, "token="+alice.Token)
	require.NoError(t, err)
	defer first.Close()
	readUntil(t, first, presence.EventOnlineUsers)

	second, _, err := dial(t, srv, "token="+alice.Token)
	require.NoError(t, err)
	defer second.Close()
	readUntil(t, second, presence.EventOnlineUsers)

	// 旧连接被服务端关闭
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := first.ReadMessage(); err != nil {
			break
		}
	}

	assert.Equal(t, []uuid.UUID{uuid.MustParse(alice.ID)}, s.registry.OnlineUsers())

	require.NoError(t, second.Close())
	waitFor(t, func() bool { return len(s.registry.OnlineUsers()) == 0 })
}
