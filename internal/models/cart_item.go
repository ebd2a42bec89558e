package models

import "time"

// CartItem 购物车项；赠品行由赠品领取写入，不参与门槛计算
type CartItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                                 // 主键
	UserID     uint      `gorm:"not null;uniqueIndex:idx_cart_user_line" json:"user_id"`               // 用户ID
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_cart_user_line" json:"product_id"`            // 商品ID
	SKUID      uint      `gorm:"column:sku_id;not null;uniqueIndex:idx_cart_user_line" json:"sku_id"`  // SKU ID
	IsGift     bool      `gorm:"not null;default:false;uniqueIndex:idx_cart_user_line" json:"is_gift"` // 是否赠品行
	GiftRuleID uint      `gorm:"not null;default:0;index" json:"gift_rule_id"`                         // 赠品来源活动ID
	Quantity   int       `gorm:"not null" json:"quantity"`                                             // 数量
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                              // 创建时间
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`                                              // 更新时间

	Product *Product    `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
	SKU     *ProductSKU `gorm:"foreignKey:SKUID" json:"sku,omitempty"`         // 关联 SKU
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
