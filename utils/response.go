package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"threadsnet/service"
)

// 响应格式: { "success": bool, "message": string, <key>: payload }

func envelope(success bool, message, key string, data interface{}) gin.H {
	body := gin.H{"success": success}
	if message != "" {
		body["message"] = message
	}
	if key != "" {
		body[key] = data
	}
	return body
}

// SuccessResponse 200，payload 放在 key 下
func SuccessResponse(c *gin.Context, key string, data interface{}) {
	c.JSON(http.StatusOK, envelope(true, "", key, data))
}

// SuccessWithMessage 200，带提示信息
func SuccessWithMessage(c *gin.Context, message, key string, data interface{}) {
	c.JSON(http.StatusOK, envelope(true, message, key, data))
}

// Created 201
func Created(c *gin.Context, message, key string, data interface{}) {
	c.JSON(http.StatusCreated, envelope(true, message, key, data))
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, envelope(false, message, "", nil))
}

func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, message)
}

func TooManyRequests(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusTooManyRequests, message)
}

func InternalServerError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, message)
}

// StatusFor 业务错误类型对应的 HTTP 状态码
func StatusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// HandleServiceError 把业务错误写成响应，内部错误不暴露细节
func HandleServiceError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	status := StatusFor(kind)
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		InternalServerError(c, "internal server error")
		return
	}

	message := err.Error()
	var se *service.ServiceError
	if errors.As(err, &se) {
		message = se.Message
	}
	ErrorResponse(c, status, message)
}
