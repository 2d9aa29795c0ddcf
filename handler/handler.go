package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"threadsnet/middleware"
	"threadsnet/utils"
)

// currentUser 已认证用户 id，缺失时直接写 401
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.Unauthorized(c, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// paramID 解析路径参数中的 uuid，非法时写 400
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

const wsRequestTimeout = 15 * time.Second

// contextWithTimeout WebSocket 事件没有请求上下文，单独限定处理时长
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), wsRequestTimeout)
}
