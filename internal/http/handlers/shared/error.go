package shared

import (
	"github.com/dujiao-next/promo-engine/internal/http/response"
	"github.com/dujiao-next/promo-engine/internal/i18n"
	"github.com/dujiao-next/promo-engine/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get(ContextKeyRequestID); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, key)
	logAppError(c, response.WrapError(code, key, msg, err))
	response.Error(c, code, msg)
}

// logAppError 只记录携带原始错误的响应；5xx 级别按 error 记录，其余按 warn
func logAppError(c *gin.Context, appErr *response.AppError) {
	if appErr == nil || appErr.Err == nil {
		return
	}
	log := RequestLog(c)
	if appErr.Code >= response.CodeInternal {
		log.Errorw("handler_error", "code", appErr.Code, "key", appErr.Key, "error", appErr)
		return
	}
	log.Warnw("handler_error", "code", appErr.Code, "key", appErr.Key, "error", appErr)
}
