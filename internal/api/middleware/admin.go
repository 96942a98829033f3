package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/insider_go_server/config"
	"github.com/qs3c/insider_go_server/internal/pkg/response"
)

// Admin 管理接口白名单校验，必须在 Auth 之后挂载
func Admin(cfg config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		for _, id := range cfg.UserIDs {
			if id == userID {
				c.Next()
				return
			}
		}

		response.PermissionError(c, "仅管理员可触发采集")
		c.Abort()
	}
}
