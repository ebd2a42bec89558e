package promotion

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart 购物车快照
type Cart struct {
	Lines []CartLine
	// GiftStock 赠品库存，由调用方提供
	GiftStock GiftStock
}

// AppliedPromotion 单条规则的计算结果
type AppliedPromotion struct {
	RuleID          uint            `json:"rule_id"`
	Name            string          `json:"name"`
	Kind            Kind            `json:"kind"`
	ActionType      ActionType      `json:"action_type"`
	ThresholdUnit   ThresholdUnit   `json:"threshold_unit"`
	Priority        int             `json:"priority"`
	IsQualified     bool            `json:"is_qualified"`
	QualifyingTotal decimal.Decimal `json:"qualifying_total"`
	MinThreshold    decimal.Decimal `json:"min_threshold"`
	Remaining       decimal.Decimal `json:"remaining"`
	Allowance       decimal.Decimal `json:"allowance"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	RepeatTimes     int             `json:"repeat_times"`
	MaxGiftCount    *int            `json:"max_gift_count,omitempty"`
	GiftOptions     []GiftOption    `json:"gift_options,omitempty"`
	ScopeMatchedIDs []uint          `json:"scope_matched_ids"`
}

// SkippedRule 因配置错误被跳过的规则；Discount 为 true 表示校验通过但优惠计算失败
type SkippedRule struct {
	RuleID   uint  `json:"rule_id"`
	Reason   error `json:"-"`
	Discount bool  `json:"-"`
}

// CartEvaluation 购物车计算结果
type CartEvaluation struct {
	Results       []AppliedPromotion `json:"results"`
	TotalDiscount decimal.Decimal    `json:"total_discount"`
	Skipped       []SkippedRule      `json:"-"`
}

// Find 按规则 ID 查找结果
func (ev CartEvaluation) Find(ruleID uint) (AppliedPromotion, bool) {
	for _, result := range ev.Results {
		if result.RuleID == ruleID {
			return result, true
		}
	}
	return AppliedPromotion{}, false
}

// EvaluateCart 按优先级依次计算所有满减/赠品规则。
// 直降规则不参与；命中行为空的规则不输出；未达标的规则输出 IsQualified=false 以便展示差额。
func (e *Engine) EvaluateCart(now time.Time, cart Cart, rules []Rule) CartEvaluation {
	evaluation := CartEvaluation{
		Results:       make([]AppliedPromotion, 0),
		TotalDiscount: decimal.Zero,
	}
	for _, rule := range SortRules(rules) {
		if !rule.Kind.IsThreshold() {
			continue
		}
		if !rule.IsValidAt(now) {
			continue
		}
		if err := rule.Validate(); err != nil {
			evaluation.Skipped = append(evaluation.Skipped, SkippedRule{RuleID: rule.ID, Reason: err})
			continue
		}

		q := qualify(rule, cart.Lines)
		if q.Empty() {
			continue
		}
		result := AppliedPromotion{
			RuleID:          rule.ID,
			Name:            rule.Name,
			Kind:            rule.Kind,
			ActionType:      rule.Action.Type,
			ThresholdUnit:   rule.ThresholdUnit,
			Priority:        rule.Priority,
			IsQualified:     q.IsQualified,
			QualifyingTotal: q.QualifyingTotal,
			MinThreshold:    rule.MinThreshold,
			Remaining:       remaining(rule.MinThreshold, q.QualifyingTotal),
			Allowance:       decimal.Zero,
			DiscountAmount:  decimal.Zero,
			ScopeMatchedIDs: matchedProductIDs(cart.Lines, q.Lines),
		}
		if rule.Action.Type == ActionGift {
			result.MaxGiftCount = rule.MaxRepeatCount
		}

		if q.IsQualified {
			result.Allowance = q.QualifyingTotal
			if rule.Action.Type == ActionGift {
				result.GiftOptions = GiftOptions(rule, result.Allowance, cart.GiftStock)
			} else {
				discount, times, err := e.computeDiscount(rule, q.QualifyingTotal, cart.Lines)
				if err != nil {
					evaluation.Skipped = append(evaluation.Skipped, SkippedRule{RuleID: rule.ID, Reason: err, Discount: true})
					continue
				}
				result.DiscountAmount = discount
				result.RepeatTimes = times
				evaluation.TotalDiscount = evaluation.TotalDiscount.Add(discount)
			}
		}
		evaluation.Results = append(evaluation.Results, result)
	}
	return evaluation
}

// RuleSummary 商品展示用的活动摘要
type RuleSummary struct {
	RuleID         uint            `json:"rule_id"`
	Name           string          `json:"name"`
	Kind           Kind            `json:"kind"`
	ActionType     ActionType      `json:"action_type"`
	ActionValue    decimal.Decimal `json:"action_value"`
	ThresholdUnit  ThresholdUnit   `json:"threshold_unit"`
	MinThreshold   decimal.Decimal `json:"min_threshold"`
	IsRepeatable   bool            `json:"is_repeatable"`
	MaxRepeatCount *int            `json:"max_repeat_count,omitempty"`
	Priority       int             `json:"priority"`
	StartsAt       *time.Time      `json:"starts_at,omitempty"`
	EndsAt         *time.Time      `json:"ends_at,omitempty"`
}

// EvaluateProduct 列出覆盖该商品的满减/赠品规则，用于商品角标展示，与购物车无关
func (e *Engine) EvaluateProduct(now time.Time, item Item, rules []Rule) []RuleSummary {
	summaries := make([]RuleSummary, 0)
	for _, rule := range SortRules(rules) {
		if !rule.Kind.IsThreshold() {
			continue
		}
		if !Matches(rule, item, now) {
			continue
		}
		if rule.Validate() != nil {
			continue
		}
		summaries = append(summaries, RuleSummary{
			RuleID:         rule.ID,
			Name:           rule.Name,
			Kind:           rule.Kind,
			ActionType:     rule.Action.Type,
			ActionValue:    rule.Action.Value,
			ThresholdUnit:  rule.ThresholdUnit,
			MinThreshold:   rule.MinThreshold,
			IsRepeatable:   rule.Repeatable(),
			MaxRepeatCount: rule.MaxRepeatCount,
			Priority:       rule.Priority,
			StartsAt:       rule.StartsAt,
			EndsAt:         rule.EndsAt,
		})
	}
	return summaries
}

func remaining(threshold, total decimal.Decimal) decimal.Decimal {
	diff := threshold.Sub(total)
	if diff.IsNegative() {
		return decimal.Zero
	}
	return diff
}

func matchedProductIDs(lines []CartLine, idx []int) []uint {
	ids := make([]uint, 0, len(idx))
	seen := make(map[uint]struct{}, len(idx))
	for _, i := range idx {
		id := lines[i].ProductID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
