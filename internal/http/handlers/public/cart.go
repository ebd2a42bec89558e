package public

import (
	"strconv"

	"github.com/dujiao-next/promo-engine/internal/http/response"
	"github.com/dujiao-next/promo-engine/internal/promotion"
	"github.com/dujiao-next/promo-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	SKUID     uint `json:"sku_id"`
	Quantity  int  `json:"quantity"`
}

// ClaimGiftsRequest 领取赠品请求；selections 为空表示放弃该活动赠品
type ClaimGiftsRequest struct {
	RuleID     uint                      `json:"rule_id" binding:"required"`
	Selections []promotion.GiftSelection `json:"selections"`
}

// GetCart 获取购物车报价
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	quote, err := h.CartService.GetCart(c.Request.Context(), uid)
	if err != nil {
		respondCartFetchError(c, err)
		return
	}
	response.Success(c, quote)
}

// UpsertCartItem 添加/更新购物车项；数量小于等于 0 时删除
func (h *Handler) UpsertCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.Quantity <= 0 {
		if err := h.CartService.RemoveItem(uid, req.ProductID, req.SKUID); err != nil {
			respondCartUpdateError(c, err)
			return
		}
		response.Success(c, gin.H{"updated": true})
		return
	}
	if err := h.CartService.UpsertItem(service.UpsertCartItemInput{
		UserID:    uid,
		ProductID: req.ProductID,
		SKUID:     req.SKUID,
		Quantity:  req.Quantity,
	}); err != nil {
		respondCartUpdateError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// DeleteCartItem 删除购物车项，可用 sku_id 指定单个 SKU
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.cart_item_invalid", nil)
		return
	}
	var skuID uint64
	if raw := c.Query("sku_id"); raw != "" {
		skuID, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.cart_item_invalid", nil)
			return
		}
	}
	if err := h.CartService.RemoveItem(uid, uint(productID), uint(skuID)); err != nil {
		respondCartUpdateError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(uid); err != nil {
		respondCartUpdateError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// GetCartGiftMenu 获取购物车在指定赠品活动下的可选赠品
func (h *Handler) GetCartGiftMenu(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	ruleID, err := strconv.ParseUint(c.Param("rule_id"), 10, 64)
	if err != nil || ruleID == 0 {
		respondError(c, response.CodeBadRequest, "error.gift_selection_invalid", nil)
		return
	}
	options, err := h.CartService.GiftMenu(c.Request.Context(), uid, uint(ruleID))
	if err != nil {
		respondCartFetchError(c, err)
		return
	}
	response.Success(c, gin.H{"rule_id": ruleID, "options": options})
}

// ClaimCartGifts 领取赠品，返回更新后的购物车报价
func (h *Handler) ClaimCartGifts(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ClaimGiftsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	quote, err := h.CartService.ClaimGifts(c.Request.Context(), service.ClaimGiftsInput{
		UserID:     uid,
		RuleID:     req.RuleID,
		Selections: req.Selections,
	})
	if err != nil {
		respondGiftClaimError(c, err)
		return
	}
	response.Success(c, quote)
}
