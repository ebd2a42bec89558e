package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// DefaultSKUCode 单规格商品使用的默认 SKU 编码
	DefaultSKUCode = "DEFAULT"
	// StockUnlimited 库存总量为该值时不限库存
	StockUnlimited = -1
)

// ProductSKU 商品 SKU 表（价格+库存维度，赠品也按 SKU 发放）
type ProductSKU struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                                                       // 主键
	ProductID   uint           `gorm:"not null;index;uniqueIndex:idx_product_sku_code" json:"product_id"`                          // 商品ID
	SKUCode     string         `gorm:"column:sku_code;type:varchar(64);not null;uniqueIndex:idx_product_sku_code" json:"sku_code"` // SKU编码（同商品内唯一）
	PriceAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`                                  // SKU价格
	StockTotal  int            `gorm:"not null" json:"stock_total"`                                                                // 库存总量（-1 表示不限）
	StockLocked int            `gorm:"not null;default:0" json:"stock_locked"`                                                     // 库存占用量
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                                                        // 是否启用
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                                                          // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                                                    // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                                                    // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                                                             // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (ProductSKU) TableName() string {
	return "product_skus"
}

// Available 可用库存；不限库存时返回 false
func (s ProductSKU) Available() (int, bool) {
	if s.StockTotal == StockUnlimited {
		return 0, false
	}
	available := s.StockTotal - s.StockLocked
	if available < 0 {
		available = 0
	}
	return available, true
}
