package repository

import (
	"errors"

	"github.com/dujiao-next/promo-engine/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	ListByUser(userID uint) ([]models.CartItem, error)
	Upsert(item *models.CartItem) error
	DeleteByUserAndProduct(userID, productID uint) error
	DeleteByUserProductSKU(userID, productID, skuID uint) error
	DeleteGiftsByRule(userID, ruleID uint) error
	ClearByUser(userID uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCartRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// ListByUser 获取用户购物车项（含商品与 SKU）
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.Preload("Product").Preload("SKU").
		Where("user_id = ?", userID).
		Order("is_gift ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert 添加或更新购物车项，同一商品 SKU 的普通行与赠品行分开存放
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	var existing models.CartItem
	err := r.db.
		Where("user_id = ? AND product_id = ? AND sku_id = ? AND is_gift = ?", item.UserID, item.ProductID, item.SKUID, item.IsGift).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(item).Error
	}
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"quantity":     item.Quantity,
		"gift_rule_id": item.GiftRuleID,
		"updated_at":   item.UpdatedAt,
	}
	if err := r.db.Model(&existing).Updates(updates).Error; err != nil {
		return err
	}
	item.ID = existing.ID
	return nil
}

// DeleteByUserAndProduct 删除某商品全部 SKU 的普通购物车行
func (r *GormCartRepository) DeleteByUserAndProduct(userID, productID uint) error {
	return r.db.
		Where("user_id = ? AND product_id = ? AND is_gift = ?", userID, productID, false).
		Delete(&models.CartItem{}).Error
}

// DeleteByUserProductSKU 删除某商品单个 SKU 的普通购物车行，同商品其他 SKU 不受影响
func (r *GormCartRepository) DeleteByUserProductSKU(userID, productID, skuID uint) error {
	return r.db.
		Where("user_id = ? AND product_id = ? AND sku_id = ? AND is_gift = ?", userID, productID, skuID, false).
		Delete(&models.CartItem{}).Error
}

// DeleteGiftsByRule 删除某活动下已领取的赠品行
func (r *GormCartRepository) DeleteGiftsByRule(userID, ruleID uint) error {
	return r.db.
		Where("user_id = ? AND is_gift = ? AND gift_rule_id = ?", userID, true, ruleID).
		Delete(&models.CartItem{}).Error
}

// ClearByUser 清空购物车
func (r *GormCartRepository) ClearByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
