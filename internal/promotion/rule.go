package promotion

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Scope 适用范围
type Scope struct {
	Type        ScopeType `json:"type"`
	ProductIDs  []uint    `json:"product_ids,omitempty"`
	CategoryIDs []uint    `json:"category_ids,omitempty"`
	TagIDs      []string  `json:"tag_ids,omitempty"`
}

// Action 优惠动作
type Action struct {
	Type  ActionType      `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// GiftPoolEntry 赠品池条目，UnitCost 与规则门槛单位一致
type GiftPoolEntry struct {
	VariantID uint            `json:"variant_id"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// Rule 促销规则快照（只读）
type Rule struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	Kind           Kind            `json:"kind"`
	Scope          Scope           `json:"scope"`
	Action         Action          `json:"action"`
	ThresholdUnit  ThresholdUnit   `json:"threshold_unit"`
	MinThreshold   decimal.Decimal `json:"min_threshold"`
	IsRepeatable   bool            `json:"is_repeatable"`
	MaxRepeatCount *int            `json:"max_repeat_count,omitempty"`
	StartsAt       *time.Time      `json:"starts_at,omitempty"`
	EndsAt         *time.Time      `json:"ends_at,omitempty"`
	IsActive       bool            `json:"is_active"`
	Priority       int             `json:"priority"`
	GiftPool       []GiftPoolEntry `json:"gift_pool,omitempty"`
}

// IsValidAt 判断规则在指定时间是否生效，缺失的边界视为不限
func (r Rule) IsValidAt(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.StartsAt != nil && now.Before(*r.StartsAt) {
		return false
	}
	if r.EndsAt != nil && now.After(*r.EndsAt) {
		return false
	}
	return true
}

// Repeatable 是否按门槛倍数重复减免（仅固定金额 + 金额门槛）
func (r Rule) Repeatable() bool {
	return r.IsRepeatable && r.Action.Type == ActionFixedAmount && r.ThresholdUnit == UnitAmount
}

// Validate 校验规则配置，返回的错误即配置错误
func (r Rule) Validate() error {
	if _, ok := kindNames[r.Kind]; !ok {
		return ErrUnknownKind
	}
	if _, ok := actionTypeNames[r.Action.Type]; !ok {
		return ErrUnknownAction
	}
	if err := r.Scope.validate(); err != nil {
		return err
	}
	if r.StartsAt != nil && r.EndsAt != nil && r.EndsAt.Before(*r.StartsAt) {
		return ErrWindowInvalid
	}
	if r.Kind == KindDirect {
		return r.validateDirectAction()
	}

	if _, ok := thresholdUnitNames[r.ThresholdUnit]; !ok {
		return ErrUnknownUnit
	}
	if r.MinThreshold.IsNegative() {
		return ErrThresholdInvalid
	}
	if r.MaxRepeatCount != nil && *r.MaxRepeatCount < 0 {
		return ErrRepeatCapInvalid
	}

	switch r.Action.Type {
	case ActionPercent:
		if r.Action.Value.IsNegative() || r.Action.Value.GreaterThan(hundred) {
			return ErrActionValueInvalid
		}
	case ActionFixedAmount:
		if r.Action.Value.IsNegative() {
			return ErrActionValueInvalid
		}
		if r.IsRepeatable {
			if r.ThresholdUnit != UnitAmount {
				return ErrRepeatableUnit
			}
			if !r.MinThreshold.IsPositive() {
				return ErrRepeatableThreshold
			}
		}
	case ActionGift:
		if len(r.GiftPool) == 0 {
			return ErrGiftPoolEmpty
		}
		for _, entry := range r.GiftPool {
			if !entry.UnitCost.IsPositive() {
				return ErrGiftCostInvalid
			}
		}
	}
	return nil
}

// validateDirectAction 直降规则没有门槛，门槛单位、门槛值与重复设置均不参与校验
func (r Rule) validateDirectAction() error {
	switch r.Action.Type {
	case ActionPercent:
		if r.Action.Value.IsNegative() || r.Action.Value.GreaterThan(hundred) {
			return ErrActionValueInvalid
		}
	case ActionFixedAmount:
		if r.Action.Value.IsNegative() {
			return ErrActionValueInvalid
		}
	case ActionGift:
		return ErrActionUnsupported
	}
	return nil
}

func (s Scope) validate() error {
	switch s.Type {
	case ScopeAll:
		return nil
	case ScopeProduct:
		if len(s.ProductIDs) == 0 {
			return ErrScopeEmpty
		}
	case ScopeCategory:
		if len(s.CategoryIDs) == 0 {
			return ErrScopeEmpty
		}
	case ScopeTag:
		if len(s.TagIDs) == 0 {
			return ErrScopeEmpty
		}
	default:
		return ErrUnknownScope
	}
	return nil
}

// SortRules 按优先级降序、ID 升序排序（返回副本）
func SortRules(rules []Rule) []Rule {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
