package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/dujiao-next/promo-engine/internal/http/handlers/shared"
	"github.com/dujiao-next/promo-engine/internal/http/response"
	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/repository"
	"github.com/dujiao-next/promo-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// PromotionGiftRequest 赠品池条目
type PromotionGiftRequest struct {
	SKUID    uint         `json:"sku_id" binding:"required"`
	UnitCost models.Money `json:"unit_cost"`
}

// PromotionRequest 创建/更新促销规则请求
type PromotionRequest struct {
	Name           string                 `json:"name" binding:"required"`
	Kind           string                 `json:"kind" binding:"required"`
	ScopeType      string                 `json:"scope_type" binding:"required"`
	ScopeRefIDs    []uint                 `json:"scope_ref_ids"`
	ScopeTags      []string               `json:"scope_tags"`
	ActionType     string                 `json:"action_type" binding:"required"`
	Value          models.Money           `json:"value"`
	ThresholdUnit  string                 `json:"threshold_unit"`
	MinThreshold   models.Money           `json:"min_threshold"`
	IsRepeatable   bool                   `json:"is_repeatable"`
	MaxRepeatCount *int                   `json:"max_repeat_count"`
	StartsAt       string                 `json:"starts_at"`
	EndsAt         string                 `json:"ends_at"`
	IsActive       *bool                  `json:"is_active"`
	Priority       int                    `json:"priority"`
	Gifts          []PromotionGiftRequest `json:"gifts"`
}

// PreviewPromotionRequest 草稿规则试算请求；id 为 0 时视为新增规则
type PreviewPromotionRequest struct {
	ID        uint                `json:"id"`
	Promotion PromotionRequest    `json:"promotion" binding:"required"`
	Items     []service.QuoteItem `json:"items" binding:"required"`
}

func (r PromotionRequest) toInput() (service.PromotionInput, error) {
	startsAt, err := parseTimeNullable(r.StartsAt)
	if err != nil {
		return service.PromotionInput{}, err
	}
	endsAt, err := parseTimeNullable(r.EndsAt)
	if err != nil {
		return service.PromotionInput{}, err
	}
	gifts := make([]service.PromotionGiftInput, 0, len(r.Gifts))
	for _, gift := range r.Gifts {
		gifts = append(gifts, service.PromotionGiftInput{SKUID: gift.SKUID, UnitCost: gift.UnitCost})
	}
	return service.PromotionInput{
		Name:           r.Name,
		Kind:           r.Kind,
		ScopeType:      r.ScopeType,
		ScopeRefIDs:    r.ScopeRefIDs,
		ScopeTags:      r.ScopeTags,
		ActionType:     r.ActionType,
		Value:          r.Value,
		ThresholdUnit:  r.ThresholdUnit,
		MinThreshold:   r.MinThreshold,
		IsRepeatable:   r.IsRepeatable,
		MaxRepeatCount: r.MaxRepeatCount,
		StartsAt:       startsAt,
		EndsAt:         endsAt,
		IsActive:       r.IsActive,
		Priority:       r.Priority,
		Gifts:          gifts,
	}, nil
}

func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parsePromotionID(c *gin.Context) (uint, bool) {
	promotionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promotionID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return 0, false
	}
	return uint(promotionID), true
}

func respondPromotionError(c *gin.Context, err error, fallbackKey string) {
	switch {
	case errors.Is(err, service.ErrPromotionNotFound):
		respondError(c, response.CodeNotFound, "error.promotion_not_found", nil)
	case errors.Is(err, service.ErrPromotionInvalid):
		respondError(c, response.CodeBadRequest, "error.promotion_invalid", nil)
	default:
		respondError(c, response.CodeInternal, fallbackKey, err)
	}
}

// CreatePromotion 创建促销规则
func (h *Handler) CreatePromotion(c *gin.Context) {
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	promotion, err := h.PromotionAdminService.Create(c.Request.Context(), input)
	if err != nil {
		respondPromotionError(c, err, "error.promotion_save_failed")
		return
	}
	h.recordAudit(c, models.AuditTargetPromotion, promotion.ID, "promotion_create", models.JSON{
		"name": promotion.Name,
		"kind": promotion.Kind,
	})
	response.Success(c, promotion)
}

// UpdatePromotion 更新促销规则
func (h *Handler) UpdatePromotion(c *gin.Context) {
	promotionID, ok := parsePromotionID(c)
	if !ok {
		return
	}
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	promotion, err := h.PromotionAdminService.Update(c.Request.Context(), promotionID, input)
	if err != nil {
		respondPromotionError(c, err, "error.promotion_save_failed")
		return
	}
	h.recordAudit(c, models.AuditTargetPromotion, promotion.ID, "promotion_update", models.JSON{
		"name":      promotion.Name,
		"is_active": promotion.IsActive,
	})
	response.Success(c, promotion)
}

// DeletePromotion 删除促销规则
func (h *Handler) DeletePromotion(c *gin.Context) {
	promotionID, ok := parsePromotionID(c)
	if !ok {
		return
	}
	if err := h.PromotionAdminService.Delete(c.Request.Context(), promotionID); err != nil {
		respondPromotionError(c, err, "error.promotion_delete_failed")
		return
	}
	h.recordAudit(c, models.AuditTargetPromotion, promotionID, "promotion_delete", nil)
	response.Success(c, gin.H{
		"deleted": true,
	})
}

// GetAdminPromotion 获取促销规则详情
func (h *Handler) GetAdminPromotion(c *gin.Context) {
	promotionID, ok := parsePromotionID(c)
	if !ok {
		return
	}
	promotion, err := h.PromotionAdminService.Get(promotionID)
	if err != nil {
		respondPromotionError(c, err, "error.promotion_fetch_failed")
		return
	}
	response.Success(c, promotion)
}

// GetAdminPromotions 获取促销规则列表
func (h *Handler) GetAdminPromotions(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		isActive = &parsed
	}

	promotions, total, err := h.PromotionAdminService.List(repository.PromotionListFilter{
		Page:     page,
		PageSize: pageSize,
		Kind:     strings.TrimSpace(c.Query("kind")),
		Search:   strings.TrimSpace(c.Query("search")),
		IsActive: isActive,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.promotion_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, promotions, response.NewPagination(page, pageSize, total))
}

// RefreshPromotions 手动重建规则快照，返回被跳过的异常规则
func (h *Handler) RefreshPromotions(c *gin.Context) {
	snapshot, err := h.PromotionAdminService.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.promotion_refresh_failed", err)
		return
	}
	requestLog(c).Infow("promotion_snapshot_refreshed",
		"rules", len(snapshot.Rules),
		"invalid", len(snapshot.Invalid),
	)
	h.recordAudit(c, models.AuditTargetSnapshot, 0, "promotion_snapshot_refresh", models.JSON{
		"rules":   len(snapshot.Rules),
		"invalid": len(snapshot.Invalid),
	})
	response.Success(c, gin.H{
		"rules":    len(snapshot.Rules),
		"invalid":  snapshot.Invalid,
		"built_at": snapshot.BuiltAt,
	})
}

// PreviewPromotion 以草稿规则试算购物车，不落库
func (h *Handler) PreviewPromotion(c *gin.Context) {
	var req PreviewPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.Promotion.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	quote, err := h.PromotionAdminService.Preview(c.Request.Context(), req.ID, input, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCartItem):
			respondError(c, response.CodeBadRequest, "error.cart_item_invalid", nil)
		case errors.Is(err, service.ErrProductNotAvailable):
			respondError(c, response.CodeBadRequest, "error.product_not_available", nil)
		case errors.Is(err, service.ErrSKUNotFound):
			respondError(c, response.CodeBadRequest, "error.sku_not_found", nil)
		default:
			respondPromotionError(c, err, "error.promotion_evaluate_failed")
		}
		return
	}
	response.Success(c, quote)
}
