package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"threadsnet/middleware"
	"threadsnet/model"
	"threadsnet/presence"
	"threadsnet/service"
	"threadsnet/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 256

	eventSendMessage = "sendMessage"
	eventMessageSent = "messageSent"
	eventHeartbeat   = "heartbeat"
	eventError       = "error"
)

// Client WebSocket 客户端，实现 presence.Connection
type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
	hub    *Hub

	send   chan []byte
	mu     sync.Mutex
	closed bool // send channel 是否已关闭
}

// Send 非阻塞写入发送队列，连接已关闭或队列满时返回 false
func (c *Client) Send(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		zap.L().Warn("websocket send buffer full", zap.String("user_id", c.UserID.String()))
		return false
	}
}

// Close 关闭发送队列，writePump 随后发送关闭帧并断开
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub WebSocket 接入层：鉴权、升级连接、登记在线状态、分发客户端事件
type Hub struct {
	registry *presence.Registry
	msgSvc   *service.MessageService
	verifier middleware.TokenVerifier
	upgrader websocket.Upgrader
}

// NewHub allowedOrigins 为空时不校验 Origin
func NewHub(registry *presence.Registry, msgSvc *service.MessageService, verifier middleware.TokenVerifier, allowedOrigins []string) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		registry: registry,
		msgSvc:   msgSvc,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin] || origins["*"]
			},
		},
	}
}

// HandleWebSocket GET /ws?userId=&token=
func (h *Hub) HandleWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		utils.Unauthorized(c, "missing token")
		return
	}
	claims, err := h.verifier.ParseAccessToken(tokenString)
	if err != nil {
		utils.Unauthorized(c, "invalid token")
		return
	}
	if raw := c.Query("userId"); raw != "" && raw != claims.UserID.String() {
		utils.Forbidden(c, "userId does not match token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("websocket upgrade failed", zap.String("user_id", claims.UserID.String()), zap.Error(err))
		return
	}

	client := &Client{
		UserID: claims.UserID,
		Conn:   conn,
		hub:    h,
		send:   make(chan []byte, sendBufferSize),
	}
	h.registry.Register(client.UserID, client)
	zap.L().Info("websocket connected", zap.String("user_id", client.UserID.String()))

	go client.writePump()
	go client.readPump()
}

// readPump 从 WebSocket 读取消息，断开时注销
func (c *Client) readPump() {
	defer func() {
		c.hub.registry.Unregister(c.UserID, c)
		c.Close()
		c.Conn.Close()
		zap.L().Info("websocket disconnected", zap.String("user_id", c.UserID.String()))
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure) {
				zap.L().Warn("websocket unexpected close", zap.String("user_id", c.UserID.String()), zap.Error(err))
			}
			return
		}

		var wsMsg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			c.sendError("Invalid JSON format")
			continue
		}

		switch wsMsg.Type {
		case eventHeartbeat:
		case eventSendMessage:
			c.handleSendMessage(wsMsg.Data)
		default:
			c.sendError("unknown event type")
		}
	}
}

// writePump 向 WebSocket 写入消息并定时 ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleSendMessage 与 HTTP 发送走同一条管道，成功后回执给发送方
func (c *Client) handleSendMessage(data json.RawMessage) {
	var body model.SendMessageRequest
	if err := json.Unmarshal(data, &body); err != nil {
		c.sendError("Invalid message format")
		return
	}
	req, err := toServiceRequest(&body)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()
	message, err := c.hub.msgSvc.SendMessage(ctx, c.UserID, req)
	if err != nil {
		zap.L().Warn("websocket send message failed", zap.String("user_id", c.UserID.String()), zap.Error(err))
		c.sendError(errorMessage(err))
		return
	}
	c.sendEvent(eventMessageSent, message)
}

func (c *Client) sendEvent(eventType string, data interface{}) {
	payload, err := json.Marshal(model.WSMessage{Type: eventType, Data: data})
	if err != nil {
		zap.L().Error("failed to encode websocket event", zap.String("type", eventType), zap.Error(err))
		return
	}
	c.Send(payload)
}

// sendError 发送错误消息给客户端
func (c *Client) sendError(errMsg string) {
	c.sendEvent(eventError, map[string]string{"message": errMsg})
}

// errorMessage 内部错误不暴露细节
func errorMessage(err error) string {
	var se *service.ServiceError
	if errors.As(err, &se) && se.Kind != service.KindInternal {
		return se.Message
	}
	return "internal server error"
}
