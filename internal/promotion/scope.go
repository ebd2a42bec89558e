package promotion

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Item 参与范围匹配的商品标识。CategoryID 为 0 表示分类未知，TagIDs 为 nil 表示标签未知。
type Item struct {
	ProductID  uint     `json:"product_id"`
	CategoryID uint     `json:"category_id"`
	TagIDs     []string `json:"tag_ids"`
}

// CartLine 购物车行快照（只读）
type CartLine struct {
	Item
	SKUID        uint            `json:"sku_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
	IsGift       bool            `json:"is_gift"`
}

// NewCartLine 创建购物车行，小计 = 数量 × 单价
func NewCartLine(item Item, quantity int, unitPrice decimal.Decimal) CartLine {
	return CartLine{
		Item:         item,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		LineSubtotal: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// Subtotal 行小计，未填写时按数量 × 单价计算
func (l CartLine) Subtotal() decimal.Decimal {
	if !l.LineSubtotal.IsZero() {
		return l.LineSubtotal
	}
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Matches 判断规则在 now 时刻是否命中商品；规则未生效时不命中任何商品
func Matches(rule Rule, item Item, now time.Time) bool {
	if !rule.IsValidAt(now) {
		return false
	}
	return MatchesScope(rule.Scope, item)
}

// MatchesScope 仅按范围判断，缺失的分类/标签信息按不命中处理
func MatchesScope(scope Scope, item Item) bool {
	switch scope.Type {
	case ScopeAll:
		return true
	case ScopeProduct:
		if item.ProductID == 0 {
			return false
		}
		return slices.Contains(scope.ProductIDs, item.ProductID)
	case ScopeCategory:
		if item.CategoryID == 0 {
			return false
		}
		return slices.Contains(scope.CategoryIDs, item.CategoryID)
	case ScopeTag:
		if item.TagIDs == nil {
			return false
		}
		for _, tag := range item.TagIDs {
			if slices.Contains(scope.TagIDs, tag) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
