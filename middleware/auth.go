package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"threadsnet/model"
	"threadsnet/service"
	"threadsnet/utils"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// TokenVerifier 校验访问令牌
type TokenVerifier interface {
	ParseAccessToken(token string) (*service.Claims, error)
}

// AuthMiddleware HTTP API 认证中间件
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "No authorization token provided")
			c.Abort()
			return
		}

		// Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Unauthorized(c, "Not verify access token. Require authentication")
			c.Abort()
			return
		}

		claims, err := verifier.ParseAccessToken(parts[1])
		if err != nil {
			utils.Unauthorized(c, "Invalid access token")
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireRoles 只允许指定角色访问，需在 AuthMiddleware 之后
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		utils.Forbidden(c, "You do not have permission to access this resource")
		c.Abort()
	}
}

// RequireAdminOrStaff 管理员或运营
func RequireAdminOrStaff() gin.HandlerFunc {
	return RequireRoles(model.RoleAdmin, model.RoleStaff)
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetRole 从上下文获取角色
func GetRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}
