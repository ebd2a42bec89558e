package public

import (
	handlershared "github.com/dujiao-next/promo-engine/internal/http/handlers/shared"
	"github.com/dujiao-next/promo-engine/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 前台接口：商品展示、游客试算与用户购物车
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.RequireContextID(c, handlershared.ContextKeyUserID, "error.user_id_invalid")
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}
