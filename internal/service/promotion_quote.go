package service

import (
	"context"

	"github.com/dujiao-next/promo-engine/internal/constants"
	"github.com/dujiao-next/promo-engine/internal/logger"
	"github.com/dujiao-next/promo-engine/internal/metrics"
	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/promotion"

	"github.com/shopspring/decimal"
)

// QuoteItem 报价输入行
type QuoteItem struct {
	ProductID  uint `json:"product_id"`
	SKUID      uint `json:"sku_id"`
	Quantity   int  `json:"quantity"`
	IsGift     bool `json:"is_gift"`
	GiftRuleID uint `json:"gift_rule_id,omitempty"`
}

// QuoteLine 报价结果行
type QuoteLine struct {
	ProductID         uint         `json:"product_id"`
	SKUID             uint         `json:"sku_id"`
	SKUCode           string       `json:"sku_code"`
	Title             models.JSON  `json:"title"`
	Quantity          int          `json:"quantity"`
	IsGift            bool         `json:"is_gift"`
	GiftRuleID        uint         `json:"gift_rule_id,omitempty"`
	BasePrice         models.Money `json:"base_price"`
	UnitPrice         models.Money `json:"unit_price"`
	Subtotal          models.Money `json:"subtotal"`
	DirectRuleID      uint         `json:"direct_rule_id,omitempty"`
	GiftInvalid       bool         `json:"gift_invalid,omitempty"`
	GiftInvalidReason string       `json:"gift_invalid_reason,omitempty"`
}

// CartQuote 购物车报价
type CartQuote struct {
	Lines                 []QuoteLine                  `json:"lines"`
	Subtotal              models.Money                 `json:"subtotal"`
	TotalDiscount         models.Money                 `json:"total_discount"`
	Payable               models.Money                 `json:"payable"`
	Promotions            []promotion.AppliedPromotion `json:"promotions"`
	PromotionsUnavailable bool                         `json:"promotions_unavailable,omitempty"`
	UnavailableLines      []QuoteItem                  `json:"unavailable_lines,omitempty"`
}

// Quote 使用当前规则快照为购物车报价
func (s *PromotionService) Quote(ctx context.Context, items []QuoteItem) (*CartQuote, error) {
	rules, ok := s.rules(ctx)
	quote, err := s.QuoteWithRules(ctx, items, rules)
	if err != nil {
		return nil, err
	}
	quote.PromotionsUnavailable = !ok
	return quote, nil
}

// QuoteWithRules 使用指定规则集报价（后台预览草稿规则时使用）
func (s *PromotionService) QuoteWithRules(ctx context.Context, items []QuoteItem, rules []promotion.Rule) (*CartQuote, error) {
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidCartItem
		}
		if item.IsGift && (item.SKUID == 0 || item.GiftRuleID == 0) {
			return nil, ErrInvalidCartItem
		}
	}

	products, skus, err := s.loadCatalog(items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	set := promotion.PrepareDirectRules(rules, now)
	metrics.ObserveEvaluation(constants.OperationDirectPrice, set.Len())

	quote := &CartQuote{Lines: make([]QuoteLine, 0, len(items))}
	cartLines := make([]promotion.CartLine, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok || (!product.IsActive && !item.IsGift) {
			return nil, ErrProductNotAvailable
		}
		sku, err := pickSKU(product, skus, item.SKUID, item.IsGift)
		if err != nil {
			return nil, err
		}

		base := product.PriceAmount
		skuCode := ""
		if sku != nil {
			base = sku.PriceAmount
			skuCode = sku.SKUCode
		}
		line := QuoteLine{
			ProductID:  product.ID,
			SKUID:      item.SKUID,
			SKUCode:    skuCode,
			Title:      product.TitleJSON,
			Quantity:   item.Quantity,
			IsGift:     item.IsGift,
			GiftRuleID: item.GiftRuleID,
			BasePrice:  base,
		}
		engineItem := ItemForProduct(product)
		unit := decimal.Zero
		if !item.IsGift {
			price := s.engine.PriceFor(engineItem, base.Decimal, set)
			unit = price.FinalPrice
			if price.Rule != nil {
				line.DirectRuleID = price.Rule.ID
			}
		}
		cartLine := promotion.NewCartLine(engineItem, item.Quantity, unit)
		cartLine.SKUID = item.SKUID
		cartLine.IsGift = item.IsGift
		line.UnitPrice = models.NewMoneyFromDecimal(unit)
		line.Subtotal = models.NewMoneyFromDecimal(cartLine.Subtotal())
		subtotal = subtotal.Add(cartLine.Subtotal())

		quote.Lines = append(quote.Lines, line)
		cartLines = append(cartLines, cartLine)
	}

	evaluation := s.engine.EvaluateCart(now, promotion.Cart{
		Lines:     cartLines,
		GiftStock: s.giftStock(rules),
	}, rules)
	metrics.ObserveEvaluation(constants.OperationEvaluateCart, len(rules))
	reportSkipped(constants.OperationEvaluateCart, evaluation.Skipped)

	markInvalidGifts(quote.Lines, evaluation)

	quote.Promotions = evaluation.Results
	if quote.Promotions == nil {
		quote.Promotions = []promotion.AppliedPromotion{}
	}
	quote.Subtotal = models.NewMoneyFromDecimal(subtotal)
	quote.TotalDiscount = models.NewMoneyFromDecimal(evaluation.TotalDiscount)
	payable := subtotal.Sub(evaluation.TotalDiscount)
	if payable.IsNegative() {
		payable = decimal.Zero
	}
	quote.Payable = models.NewMoneyFromDecimal(payable)
	return quote, nil
}

// GiftMenu 返回购物车在某个赠品活动下的可选赠品
func (s *PromotionService) GiftMenu(ctx context.Context, items []QuoteItem, ruleID uint) ([]promotion.GiftOption, error) {
	quote, err := s.Quote(ctx, items)
	if err != nil {
		return nil, err
	}
	result, ok := findApplied(quote.Promotions, ruleID)
	if !ok || !result.IsQualified || result.ActionType != promotion.ActionGift {
		return []promotion.GiftOption{}, nil
	}
	return result.GiftOptions, nil
}

func (s *PromotionService) loadCatalog(items []QuoteItem) (map[uint]*models.Product, map[uint]*models.ProductSKU, error) {
	productIDs := make([]uint, 0, len(items))
	skuIDs := make([]uint, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
		if item.SKUID != 0 {
			skuIDs = append(skuIDs, item.SKUID)
		}
	}
	if len(productIDs) == 0 {
		return map[uint]*models.Product{}, map[uint]*models.ProductSKU{}, nil
	}
	products, err := s.productRepo.MapByIDs(productIDs)
	if err != nil {
		return nil, nil, err
	}
	skus, err := s.skuRepo.MapByIDs(skuIDs)
	if err != nil {
		return nil, nil, err
	}
	return products, skus, nil
}

// pickSKU 赠品行允许已下架的 SKU，由赠品库存校验将其标记为失效
func pickSKU(product *models.Product, skus map[uint]*models.ProductSKU, skuID uint, isGift bool) (*models.ProductSKU, error) {
	if skuID == 0 {
		return nil, nil
	}
	sku, ok := skus[skuID]
	if !ok || sku.ProductID != product.ID {
		return nil, ErrSKUNotFound
	}
	if !sku.IsActive && !isGift {
		return nil, ErrProductNotAvailable
	}
	return sku, nil
}

// markInvalidGifts 按活动分组校验已领取的赠品行，不合法的行打标但保留在购物车中
func markInvalidGifts(lines []QuoteLine, evaluation promotion.CartEvaluation) {
	grouped := make(map[uint][]int)
	order := make([]uint, 0)
	for i, line := range lines {
		if !line.IsGift {
			continue
		}
		if _, ok := grouped[line.GiftRuleID]; !ok {
			order = append(order, line.GiftRuleID)
		}
		grouped[line.GiftRuleID] = append(grouped[line.GiftRuleID], i)
	}
	for _, ruleID := range order {
		idx := grouped[ruleID]
		selections := make([]promotion.GiftSelection, 0, len(idx))
		for _, i := range idx {
			selections = append(selections, promotion.GiftSelection{VariantID: lines[i].SKUID, Quantity: lines[i].Quantity})
		}
		result, ok := evaluation.Find(ruleID)
		var err error
		if !ok {
			err = promotion.ErrGiftRuleNotQualified
		} else {
			err = promotion.ValidateGiftSelection(result, selections)
		}
		if err == nil {
			continue
		}
		logger.Debugw("promotion_gift_line_invalid", "rule_id", ruleID, "error", err)
		for _, i := range idx {
			lines[i].GiftInvalid = true
			lines[i].GiftInvalidReason = err.Error()
		}
	}
}
