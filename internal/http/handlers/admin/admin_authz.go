package admin

import (
	"errors"
	"strconv"

	"github.com/dujiao-next/promo-engine/internal/authz"
	handlershared "github.com/dujiao-next/promo-engine/internal/http/handlers/shared"
	"github.com/dujiao-next/promo-engine/internal/http/response"
	"github.com/dujiao-next/promo-engine/internal/models"

	"github.com/gin-gonic/gin"
)

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

// GetAuthzMe 获取当前管理员权限快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}

	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": currentAdminIsSuper(c),
		"roles":    roles,
		"policies": policies,
	})
}

// ListAuthzRoles 列出可分配的角色及其策略
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// GetAuthzAdminRoles 获取指定管理员角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := h.loadTargetAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"admin_id": adminID, "roles": roles})
}

// SetAuthzAdminRoles 覆盖设置管理员角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := h.loadTargetAdminID(c)
	if !ok {
		return
	}
	var req authzSetAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	for _, role := range req.Roles {
		if _, err := authz.NormalizeRole(role); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
	}

	if err := h.AuthzService.SetAdminRoles(adminID, req.Roles); err != nil {
		if errors.Is(err, authz.ErrUnknownRole) {
			respondError(c, response.CodeBadRequest, "error.role_unknown", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.authz_update_failed", err)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	operatorID, _ := handlershared.ContextID(c, handlershared.ContextKeyAdminID)
	requestLog(c).Infow("admin_roles_updated",
		"operator_admin_id", operatorID,
		"admin_id", adminID,
		"roles", roles,
	)
	h.recordAudit(c, models.AuditTargetAdmin, adminID, "admin_roles_update", models.JSON{
		"roles": roles,
	})
	response.Success(c, gin.H{"admin_id": adminID, "roles": roles})
}

func (h *Handler) loadTargetAdminID(c *gin.Context) (uint, bool) {
	parsed, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || parsed == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	admin, err := h.AdminRepo.GetByID(uint(parsed))
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return 0, false
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return 0, false
	}
	return admin.ID, true
}
