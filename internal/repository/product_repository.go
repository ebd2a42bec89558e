package repository

import (
	"errors"

	"github.com/dujiao-next/promo-engine/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetByID(id uint, onlyActive bool) (*models.Product, error)
	MapByIDs(ids []uint) (map[uint]*models.Product, error)
	Create(product *models.Product) error
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// withSKUs 预加载 SKU；onlyActive 时只带启用的 SKU
func withSKUs(query *gorm.DB, onlyActive bool) *gorm.DB {
	return query.Preload("SKUs", func(db *gorm.DB) *gorm.DB {
		if onlyActive {
			db = db.Where("is_active = ?", true)
		}
		return db.Order("sort_order DESC, id ASC")
	})
}

// List 商品列表，按分类、关键词（slug 与多语言标题）筛选
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	query = applySearch(query, filter.Search, []string{"slug"}, []string{"title_json"})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []models.Product
	query = applyPagination(withSKUs(query, filter.OnlyActive), filter.Page, filter.PageSize)
	if err := query.Order("sort_order DESC, id DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByID 根据 ID 获取商品（含 SKU），不存在时返回 nil
func (r *GormProductRepository) GetByID(id uint, onlyActive bool) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	query := withSKUs(r.db, onlyActive).Where("id = ?", id)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var product models.Product
	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// MapByIDs 按 ID 批量加载商品（不含 SKU，含已下架商品）
func (r *GormProductRepository) MapByIDs(ids []uint) (map[uint]*models.Product, error) {
	ids = uniqueIDs(ids)
	result := make(map[uint]*models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result, nil
}

// Create 创建商品（含关联 SKU）
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}
