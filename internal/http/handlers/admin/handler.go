package admin

import (
	handlershared "github.com/dujiao-next/promo-engine/internal/http/handlers/shared"
	"github.com/dujiao-next/promo-engine/internal/provider"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 后台接口：登录、分类、促销规则、权限与审计
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.RequireContextID(c, handlershared.ContextKeyAdminID, "error.admin_id_invalid")
}

func currentAdminIsSuper(c *gin.Context) bool {
	return handlershared.ContextFlag(c, handlershared.ContextKeyAdminIsSuper)
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}
