package public

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/dujiao-next/promo-engine/internal/http/handlers/shared"
	"github.com/dujiao-next/promo-engine/internal/http/response"
	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// EvaluateRequest 游客购物车试算请求
type EvaluateRequest struct {
	Items []service.QuoteItem `json:"items" binding:"required"`
}

// GiftMenuRequest 游客赠品菜单请求
type GiftMenuRequest struct {
	RuleID uint                `json:"rule_id" binding:"required"`
	Items  []service.QuoteItem `json:"items" binding:"required"`
}

// PublicProductView 商品详情响应结构
type PublicProductView struct {
	Product    *models.Product            `json:"product"`
	Promotions *service.ProductPromotions `json:"promotions"`
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

// GetProducts 获取商品列表（含直降后价格）
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	var categoryID uint
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		categoryID = uint(parsed)
	}
	search := strings.TrimSpace(c.Query("search"))

	items, total, err := h.ProductService.ListPublic(c.Request.Context(), categoryID, search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// GetProduct 获取商品详情与活动信息
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	product, err := h.ProductService.GetPublic(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	promotions, err := h.ProductService.Promotions(c.Request.Context(), id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.Success(c, PublicProductView{Product: product, Promotions: promotions})
}

// GetProductPromotions 获取商品各规格直降价与活动角标
func (h *Handler) GetProductPromotions(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.ProductService.Promotions(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.promotion_fetch_failed", err)
		return
	}
	response.Success(c, result)
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// EvaluatePromotions 游客购物车试算，不落库
func (h *Handler) EvaluatePromotions(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	quote, err := h.PromotionService.Quote(c.Request.Context(), req.Items)
	if err != nil {
		respondQuoteError(c, err)
		return
	}
	response.Success(c, quote)
}

// GetGiftMenu 游客购物车在指定赠品活动下的可选赠品
func (h *Handler) GetGiftMenu(c *gin.Context) {
	var req GiftMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	options, err := h.PromotionService.GiftMenu(c.Request.Context(), req.Items, req.RuleID)
	if err != nil {
		respondQuoteError(c, err)
		return
	}
	response.Success(c, gin.H{"rule_id": req.RuleID, "options": options})
}
