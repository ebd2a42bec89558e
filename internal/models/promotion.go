package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/promo-engine/internal/promotion"

	"gorm.io/gorm"
)

// Promotion 促销规则（直降 / 满减 / 满赠）
type Promotion struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                       // 主键
	Name           string         `gorm:"not null" json:"name"`                                       // 名称
	Kind           string         `gorm:"type:varchar(32);not null;index" json:"kind"`                // 类型（direct/threshold_cart/threshold_product）
	ScopeType      string         `gorm:"type:varchar(16);not null" json:"scope_type"`                // 适用范围（all/product/category/tag）
	ScopeRefIDs    UintArray      `gorm:"type:json" json:"scope_ref_ids"`                             // 关联商品/分类ID
	ScopeTags      StringArray    `gorm:"type:json" json:"scope_tags"`                                // 关联标签
	ActionType     string         `gorm:"type:varchar(16);not null" json:"action_type"`               // 优惠方式（percent/fixed/gift）
	Value          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"value"`         // 数值（百分比或固定金额）
	ThresholdUnit  string         `gorm:"type:varchar(16);not null" json:"threshold_unit"`            // 门槛单位（amount/quantity）
	MinThreshold   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_threshold"` // 门槛值
	IsRepeatable   bool           `gorm:"not null;default:false" json:"is_repeatable"`                // 是否每满重复
	MaxRepeatCount *int           `json:"max_repeat_count"`                                           // 重复/赠品件数上限（空为不限）
	StartsAt       *time.Time     `gorm:"index" json:"starts_at"`                                     // 生效时间
	EndsAt         *time.Time     `gorm:"index" json:"ends_at"`                                       // 失效时间
	IsActive       bool           `gorm:"not null;index" json:"is_active"`                            // 是否启用
	Priority       int            `gorm:"not null;default:0;index" json:"priority"`                   // 优先级（越大越先计算）
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间

	Gifts []PromotionGift `gorm:"foreignKey:PromotionID" json:"gifts,omitempty"` // 赠品池
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}

// PromotionGift 满赠活动的赠品池条目
type PromotionGift struct {
	ID          uint      `gorm:"primarykey" json:"id"`                         // 主键
	PromotionID uint      `gorm:"not null;index" json:"promotion_id"`           // 活动ID
	SKUID       uint      `gorm:"column:sku_id;not null;index" json:"sku_id"`   // 赠品 SKU
	UnitCost    Money     `gorm:"type:decimal(20,2);not null" json:"unit_cost"` // 单件占用额度
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`         // 展示顺序
	CreatedAt   time.Time `json:"created_at"`                                   // 创建时间
}

// TableName 指定表名
func (PromotionGift) TableName() string {
	return "promotion_gifts"
}

// ToRule 转换为计算引擎使用的规则；枚举值非法时返回错误
func (p *Promotion) ToRule() (promotion.Rule, error) {
	if p == nil {
		return promotion.Rule{}, fmt.Errorf("promotion is nil")
	}
	kind, err := promotion.ParseKind(p.Kind)
	if err != nil {
		return promotion.Rule{}, fmt.Errorf("promotion %d: %w", p.ID, err)
	}
	scopeType, err := promotion.ParseScopeType(p.ScopeType)
	if err != nil {
		return promotion.Rule{}, fmt.Errorf("promotion %d: %w", p.ID, err)
	}
	actionType, err := promotion.ParseActionType(p.ActionType)
	if err != nil {
		return promotion.Rule{}, fmt.Errorf("promotion %d: %w", p.ID, err)
	}
	var unit promotion.ThresholdUnit
	if kind != promotion.KindDirect || strings.TrimSpace(p.ThresholdUnit) != "" {
		unit, err = promotion.ParseThresholdUnit(p.ThresholdUnit)
		if err != nil {
			return promotion.Rule{}, fmt.Errorf("promotion %d: %w", p.ID, err)
		}
	}

	scope := promotion.Scope{Type: scopeType}
	switch scopeType {
	case promotion.ScopeProduct:
		scope.ProductIDs = append([]uint(nil), p.ScopeRefIDs...)
	case promotion.ScopeCategory:
		scope.CategoryIDs = append([]uint(nil), p.ScopeRefIDs...)
	case promotion.ScopeTag:
		scope.TagIDs = append([]string(nil), p.ScopeTags...)
	}

	rule := promotion.Rule{
		ID:             p.ID,
		Name:           p.Name,
		Kind:           kind,
		Scope:          scope,
		Action:         promotion.Action{Type: actionType, Value: p.Value.Decimal},
		ThresholdUnit:  unit,
		MinThreshold:   p.MinThreshold.Decimal,
		IsRepeatable:   p.IsRepeatable,
		MaxRepeatCount: p.MaxRepeatCount,
		StartsAt:       p.StartsAt,
		EndsAt:         p.EndsAt,
		IsActive:       p.IsActive,
		Priority:       p.Priority,
	}
	if len(p.Gifts) > 0 {
		rule.GiftPool = make([]promotion.GiftPoolEntry, 0, len(p.Gifts))
		for _, gift := range p.Gifts {
			rule.GiftPool = append(rule.GiftPool, promotion.GiftPoolEntry{
				VariantID: gift.SKUID,
				UnitCost:  gift.UnitCost.Decimal,
			})
		}
	}
	return rule, nil
}
