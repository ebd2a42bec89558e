package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/dujiao-next/promo-engine/internal/http/handlers/shared"
	"github.com/dujiao-next/promo-engine/internal/http/response"
	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/repository"
	"github.com/dujiao-next/promo-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs 获取后台审计日志列表
func (h *Handler) ListAuditLogs(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	var operatorAdminID, targetID uint
	for key, dest := range map[string]*uint{"operator_admin_id": &operatorAdminID, "target_id": &targetID} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		*dest = uint(parsed)
	}

	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	items, total, err := h.AdminAuditService.ListForAdmin(repository.AdminAuditLogListFilter{
		Page:            page,
		PageSize:        pageSize,
		OperatorAdminID: operatorAdminID,
		TargetType:      strings.TrimSpace(c.Query("target_type")),
		TargetID:        targetID,
		Action:          strings.TrimSpace(c.Query("action")),
		CreatedFrom:     createdFrom,
		CreatedTo:       createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.audit_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// recordAudit 写审计日志，失败只记日志不影响主流程
func (h *Handler) recordAudit(c *gin.Context, targetType string, targetID uint, action string, detail models.JSON) {
	if h == nil || h.AdminAuditService == nil {
		return
	}
	adminID, ok := handlershared.ContextID(c, handlershared.ContextKeyAdminID)
	if !ok {
		return
	}
	input := service.AdminAuditRecordInput{
		OperatorAdminID:  adminID,
		OperatorUsername: c.GetString(handlershared.ContextKeyAdminName),
		TargetType:       targetType,
		TargetID:         targetID,
		Action:           action,
		RequestID:        c.GetString(handlershared.ContextKeyRequestID),
		Detail:           detail,
	}
	if err := h.AdminAuditService.Record(input); err != nil {
		requestLog(c).Warnw("admin_audit_record_failed",
			"error", err,
			"action", action,
			"operator_admin_id", adminID,
		)
	}
}
