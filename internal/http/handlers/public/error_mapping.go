package public

import (
	"errors"

	"github.com/dujiao-next/promo-engine/internal/http/response"
	"github.com/dujiao-next/promo-engine/internal/promotion"
	"github.com/dujiao-next/promo-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var quoteErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCartItem, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
	{target: service.ErrSKUNotFound, code: response.CodeBadRequest, key: "error.sku_not_found"},
}

// 具体原因优先于 ErrGiftSelectionInvalid 匹配
var giftClaimErrorRules = []mappedHandlerError{
	{target: promotion.ErrGiftSelectionNotGift, code: response.CodeBadRequest, key: "error.gift_rule_not_gift"},
	{target: promotion.ErrGiftRuleNotQualified, code: response.CodeBadRequest, key: "error.gift_rule_not_qualified"},
	{target: promotion.ErrGiftNotInPool, code: response.CodeBadRequest, key: "error.gift_not_in_pool"},
	{target: promotion.ErrGiftQuantityExceeded, code: response.CodeBadRequest, key: "error.gift_quantity_exceeded"},
	{target: promotion.ErrGiftCountCapExceeded, code: response.CodeBadRequest, key: "error.gift_count_cap_exceeded"},
	{target: service.ErrGiftSelectionInvalid, code: response.CodeBadRequest, key: "error.gift_selection_invalid"},
}

var cartUpdateErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCartItem, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
	{target: service.ErrSKUNotFound, code: response.CodeBadRequest, key: "error.sku_not_found"},
}

func respondQuoteError(c *gin.Context, err error) {
	respondWithMappedError(c, err, quoteErrorRules, response.CodeInternal, "error.promotion_evaluate_failed")
}

func respondCartFetchError(c *gin.Context, err error) {
	respondWithMappedError(c, err, quoteErrorRules, response.CodeInternal, "error.cart_fetch_failed")
}

func respondCartUpdateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartUpdateErrorRules, response.CodeInternal, "error.cart_update_failed")
}

func respondGiftClaimError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(giftClaimErrorRules, quoteErrorRules), response.CodeInternal, "error.cart_update_failed")
}
