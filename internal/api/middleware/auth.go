package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/insider_go_server/internal/pkg/jwt"
	"github.com/qs3c/insider_go_server/internal/pkg/response"
)

const (
	UserIDKey = "userID"
)

// Auth 强制 JWT 认证，订阅和管理接口都挂它。
// 校验通过后把用户 ID 写入上下文，后续 handler 用 GetUserID 取。
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.AuthError(c, "缺少或格式错误的认证信息")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(token, jwtSecret)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth 可选认证。申报列表允许匿名访问，带合法 token 时
// 注入用户身份，由权限解析决定实时还是延迟视图；非法 token 按
// 匿名放行而不是拒绝。
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := jwt.ParseToken(token, jwtSecret); err == nil {
				c.Set(UserIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

// bearerToken 从 Authorization 头提取 Bearer token
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return "", false
	}
	return token, true
}

// GetUserID 从上下文获取当前用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}
