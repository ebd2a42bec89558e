package shared

import (
	"github.com/dujiao-next/promo-engine/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入 gin.Context 的键
const (
	ContextKeyAdminID      = "admin_id"
	ContextKeyAdminName    = "username"
	ContextKeyAdminIsSuper = "admin_is_super"
	ContextKeyUserID       = "user_id"
	ContextKeyRequestID    = "request_id"
)

// ContextID 读取鉴权中间件写入的主体 ID；缺失、类型不符或为 0 时 ok 为 false
func ContextID(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		return 0, false
	}
	var id uint
	switch v := value.(type) {
	case uint:
		id = v
	case int:
		if v > 0 {
			id = uint(v)
		}
	case float64:
		if v > 0 {
			id = uint(v)
		}
	}
	return id, id > 0
}

// RequireContextID 读取主体 ID，失败时写入响应；缺失视为未登录，其他情况说明中间件写入了非法值
func RequireContextID(c *gin.Context, key, invalidKey string) (uint, bool) {
	if _, exists := c.Get(key); !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	id, ok := ContextID(c, key)
	if !ok {
		RespondError(c, response.CodeBadRequest, invalidKey, nil)
		return 0, false
	}
	return id, true
}

// ContextFlag 读取布尔标记，缺失或类型不符返回 false
func ContextFlag(c *gin.Context, key string) bool {
	value, exists := c.Get(key)
	if !exists {
		return false
	}
	flag, ok := value.(bool)
	return ok && flag
}
