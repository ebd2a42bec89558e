package promotion

import (
	"fmt"
	"strings"
)

// Kind 规则类型
type Kind int

const (
	// KindDirect 商品直降（逐商品计算，不参与购物车汇总）
	KindDirect Kind = iota + 1
	// KindThresholdCart 购物车满额/满件
	KindThresholdCart
	// KindThresholdProduct 商品满额/满件（与 KindThresholdCart 走同一计算路径）
	KindThresholdProduct
)

var kindNames = map[Kind]string{
	KindDirect:           "direct",
	KindThresholdCart:    "threshold_cart",
	KindThresholdProduct: "threshold_product",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsThreshold 是否为满减类规则
func (k Kind) IsThreshold() bool {
	switch k {
	case KindThresholdCart, KindThresholdProduct:
		return true
	case KindDirect:
		return false
	default:
		return false
	}
}

// MarshalText 输出字符串形式
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText 解析字符串形式
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind 解析规则类型
func ParseKind(raw string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for kind, name := range kindNames {
		if name == normalized {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, raw)
}

// ScopeType 适用范围类型
type ScopeType int

const (
	// ScopeAll 全场
	ScopeAll ScopeType = iota + 1
	// ScopeProduct 指定商品
	ScopeProduct
	// ScopeCategory 指定分类
	ScopeCategory
	// ScopeTag 指定标签
	ScopeTag
)

var scopeTypeNames = map[ScopeType]string{
	ScopeAll:      "all",
	ScopeProduct:  "product",
	ScopeCategory: "category",
	ScopeTag:      "tag",
}

func (s ScopeType) String() string {
	if name, ok := scopeTypeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

// MarshalText 输出字符串形式
func (s ScopeType) MarshalText() ([]byte, error) {
	if _, ok := scopeTypeNames[s]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScope, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText 解析字符串形式
func (s *ScopeType) UnmarshalText(text []byte) error {
	parsed, err := ParseScopeType(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseScopeType 解析适用范围类型
func ParseScopeType(raw string) (ScopeType, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for scope, name := range scopeTypeNames {
		if name == normalized {
			return scope, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScope, raw)
}

// ActionType 优惠动作类型
type ActionType int

const (
	// ActionPercent 百分比折扣
	ActionPercent ActionType = iota + 1
	// ActionFixedAmount 固定金额
	ActionFixedAmount
	// ActionGift 赠品
	ActionGift
)

var actionTypeNames = map[ActionType]string{
	ActionPercent:     "percent",
	ActionFixedAmount: "fixed",
	ActionGift:        "gift",
}

func (a ActionType) String() string {
	if name, ok := actionTypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// MarshalText 输出字符串形式
func (a ActionType) MarshalText() ([]byte, error) {
	if _, ok := actionTypeNames[a]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText 解析字符串形式
func (a *ActionType) UnmarshalText(text []byte) error {
	parsed, err := ParseActionType(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseActionType 解析优惠动作类型
func ParseActionType(raw string) (ActionType, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for action, name := range actionTypeNames {
		if name == normalized {
			return action, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, raw)
}

// ThresholdUnit 门槛单位
type ThresholdUnit int

const (
	// UnitAmount 金额
	UnitAmount ThresholdUnit = iota + 1
	// UnitQuantity 件数
	UnitQuantity
)

var thresholdUnitNames = map[ThresholdUnit]string{
	UnitAmount:   "amount",
	UnitQuantity: "quantity",
}

func (u ThresholdUnit) String() string {
	if name, ok := thresholdUnitNames[u]; ok {
		return name
	}
	return fmt.Sprintf("unit(%d)", int(u))
}

// MarshalText 输出字符串形式；直降规则未设置门槛单位时输出空串
func (u ThresholdUnit) MarshalText() ([]byte, error) {
	if u == 0 {
		return []byte{}, nil
	}
	if _, ok := thresholdUnitNames[u]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnit, int(u))
	}
	return []byte(u.String()), nil
}

// UnmarshalText 解析字符串形式
func (u *ThresholdUnit) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*u = 0
		return nil
	}
	parsed, err := ParseThresholdUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ParseThresholdUnit 解析门槛单位
func ParseThresholdUnit(raw string) (ThresholdUnit, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for unit, name := range thresholdUnitNames {
		if name == normalized {
			return unit, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, raw)
}
