package promotion

import "github.com/shopspring/decimal"

// GiftStock 赠品可用库存（variantID → 可用数量），未登记的规格视为不限库存
type GiftStock map[uint]int

// GiftOption 可选赠品
type GiftOption struct {
	VariantID       uint            `json:"variant_id"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	AffordableCount int             `json:"affordable_count"`
	Available       bool            `json:"available"`
}

// GiftSelection 用户选择的赠品
type GiftSelection struct {
	VariantID uint `json:"variant_id"`
	Quantity  int  `json:"quantity"`
}

// GiftOptions 列出赠品池中每个规格在 allowance 下可领取的数量。
// 每个赠品独立按完整额度计算，不在赠品之间共享递减额度。
func GiftOptions(rule Rule, allowance decimal.Decimal, stock GiftStock) []GiftOption {
	if rule.Action.Type != ActionGift || len(rule.GiftPool) == 0 {
		return nil
	}
	options := make([]GiftOption, 0, len(rule.GiftPool))
	for _, entry := range rule.GiftPool {
		count := 0
		if allowance.IsPositive() && entry.UnitCost.IsPositive() {
			count = floorDiv(allowance, entry.UnitCost)
		}
		if rule.MaxRepeatCount != nil && count > *rule.MaxRepeatCount {
			count = *rule.MaxRepeatCount
		}
		if available, ok := stock[entry.VariantID]; ok && count > available {
			count = available
		}
		if count < 0 {
			count = 0
		}
		options = append(options, GiftOption{
			VariantID:       entry.VariantID,
			UnitCost:        entry.UnitCost,
			AffordableCount: count,
			Available:       count > 0,
		})
	}
	return options
}

// ValidateGiftSelection 校验赠品选择：每个规格不超过其可领数量，总件数不超过规则上限。
// 不校验多个赠品的合计成本是否超出额度。
func ValidateGiftSelection(result AppliedPromotion, selections []GiftSelection) error {
	if result.ActionType != ActionGift {
		return ErrGiftSelectionNotGift
	}
	if !result.IsQualified {
		return ErrGiftRuleNotQualified
	}
	menu := make(map[uint]GiftOption, len(result.GiftOptions))
	for _, option := range result.GiftOptions {
		menu[option.VariantID] = option
	}
	requested := make(map[uint]int, len(selections))
	total := 0
	for _, selection := range selections {
		if selection.Quantity <= 0 {
			return ErrGiftSelectionQuantity
		}
		if _, ok := menu[selection.VariantID]; !ok {
			return ErrGiftNotInPool
		}
		requested[selection.VariantID] += selection.Quantity
		total += selection.Quantity
	}
	for variantID, quantity := range requested {
		if quantity > menu[variantID].AffordableCount {
			return ErrGiftQuantityExceeded
		}
	}
	if result.MaxGiftCount != nil && total > *result.MaxGiftCount {
		return ErrGiftCountCapExceeded
	}
	return nil
}
