package repository

import (
	"github.com/dujiao-next/promo-engine/internal/models"

	"gorm.io/gorm"
)

// ProductSKURepository 商品 SKU 数据访问接口
type ProductSKURepository interface {
	ListByIDs(ids []uint) ([]models.ProductSKU, error)
	MapByIDs(ids []uint) (map[uint]*models.ProductSKU, error)
}

// GormProductSKURepository GORM 实现
type GormProductSKURepository struct {
	db *gorm.DB
}

// NewProductSKURepository 创建 SKU 仓库
func NewProductSKURepository(db *gorm.DB) *GormProductSKURepository {
	return &GormProductSKURepository{db: db}
}

// ListByIDs 批量获取 SKU（含所属商品，不过滤上下架，由调用方判定可用性）
func (r *GormProductSKURepository) ListByIDs(ids []uint) ([]models.ProductSKU, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []models.ProductSKU{}, nil
	}
	var items []models.ProductSKU
	if err := r.db.Preload("Product").Where("id IN ?", ids).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// MapByIDs 按 ID 索引批量获取的 SKU；不存在的 ID 不出现在结果中
func (r *GormProductSKURepository) MapByIDs(ids []uint) (map[uint]*models.ProductSKU, error) {
	items, err := r.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	result := make(map[uint]*models.ProductSKU, len(items))
	for i := range items {
		result[items[i].ID] = &items[i]
	}
	return result, nil
}

// uniqueIDs 去掉 0 与重复 ID，保留首次出现顺序
func uniqueIDs(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
