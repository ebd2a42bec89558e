package promotion

import (
	"time"

	"github.com/shopspring/decimal"
)

// DirectRuleSet 已筛选的直降规则集合（有效期内、按优先级降序）。
// 每个请求/批次构建一次，再逐商品调用 PriceFor。
type DirectRuleSet struct {
	rules []Rule
}

// PrepareDirectRules 从规则快照中筛选直降规则
func PrepareDirectRules(rules []Rule, now time.Time) DirectRuleSet {
	selected := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.Kind != KindDirect || !rule.IsValidAt(now) {
			continue
		}
		if rule.Validate() != nil {
			continue
		}
		selected = append(selected, rule)
	}
	return DirectRuleSet{rules: SortRules(selected)}
}

// Len 规则数量
func (s DirectRuleSet) Len() int {
	return len(s.rules)
}

// DirectPrice 直降计算结果
type DirectPrice struct {
	BasePrice  decimal.Decimal `json:"base_price"`
	FinalPrice decimal.Decimal `json:"final_price"`
	Rule       *Rule           `json:"rule,omitempty"`
}

// Discounted 是否命中直降
func (p DirectPrice) Discounted() bool {
	return p.Rule != nil
}

// PriceFor 计算单个商品的直降价，只应用优先级最高的一条命中规则
func (e *Engine) PriceFor(item Item, basePrice decimal.Decimal, set DirectRuleSet) DirectPrice {
	result := DirectPrice{BasePrice: basePrice, FinalPrice: basePrice}
	for i := range set.rules {
		rule := set.rules[i]
		if !MatchesScope(rule.Scope, item) {
			continue
		}
		final, ok := e.directPrice(rule, basePrice)
		if !ok {
			continue
		}
		result.FinalPrice = final
		result.Rule = &rule
		return result
	}
	return result
}

func (e *Engine) directPrice(rule Rule, basePrice decimal.Decimal) (decimal.Decimal, bool) {
	switch rule.Action.Type {
	case ActionPercent:
		ratio := hundred.Sub(rule.Action.Value).Div(hundred)
		final := e.RoundMoney(basePrice.Mul(ratio))
		if final.IsNegative() {
			final = decimal.Zero
		}
		return final, true
	case ActionFixedAmount:
		final := basePrice.Sub(rule.Action.Value)
		if final.IsNegative() {
			final = decimal.Zero
		}
		return final, true
	case ActionGift:
		return basePrice, false
	default:
		return basePrice, false
	}
}
