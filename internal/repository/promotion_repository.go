package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/promo-engine/internal/models"

	"gorm.io/gorm"
)

// PromotionRepository 促销规则数据访问接口
type PromotionRepository interface {
	GetByID(id uint) (*models.Promotion, error)
	ListActive(now time.Time) ([]models.Promotion, error)
	Create(promotion *models.Promotion) error
	Update(promotion *models.Promotion) error
	Delete(id uint) error
	List(filter PromotionListFilter) ([]models.Promotion, int64, error)
	WithTx(tx *gorm.DB) *GormPromotionRepository
}

// GormPromotionRepository GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建促销规则仓库
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRepository) WithTx(tx *gorm.DB) *GormPromotionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRepository{db: tx}
}

func preloadGifts(query *gorm.DB) *gorm.DB {
	return query.Preload("Gifts", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	})
}

func whereActiveAt(query *gorm.DB, now time.Time) *gorm.DB {
	query = query.Where("is_active = ?", true)
	query = query.Where("(starts_at IS NULL OR starts_at <= ?)", now)
	return query.Where("(ends_at IS NULL OR ends_at >= ?)", now)
}

// GetByID 根据ID获取促销规则（含赠品池）
func (r *GormPromotionRepository) GetByID(id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := preloadGifts(r.db).First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// ListActive 获取已启用且未结束的规则（含尚未开始的规则与赠品池），按优先级降序。
// 生效窗口由计算引擎按请求时间判断，快照缓存期间开始的规则无需等待刷新。
func (r *GormPromotionRepository) ListActive(now time.Time) ([]models.Promotion, error) {
	var promotions []models.Promotion
	query := preloadGifts(r.db.Model(&models.Promotion{})).
		Where("is_active = ?", true).
		Where("(ends_at IS NULL OR ends_at >= ?)", now)
	if err := query.Order("priority DESC, id ASC").Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

// Create 创建促销规则（赠品池随主记录一起写入）
func (r *GormPromotionRepository) Create(promotion *models.Promotion) error {
	return r.db.Create(promotion).Error
}

// Update 更新促销规则并整体替换赠品池
func (r *GormPromotionRepository) Update(promotion *models.Promotion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Gifts").Save(promotion).Error; err != nil {
			return err
		}
		return replaceGifts(tx, promotion)
	})
}

func replaceGifts(tx *gorm.DB, promotion *models.Promotion) error {
	if err := tx.Where("promotion_id = ?", promotion.ID).Delete(&models.PromotionGift{}).Error; err != nil {
		return err
	}
	if len(promotion.Gifts) == 0 {
		return nil
	}
	for i := range promotion.Gifts {
		promotion.Gifts[i].ID = 0
		promotion.Gifts[i].PromotionID = promotion.ID
	}
	return tx.Create(&promotion.Gifts).Error
}

// Delete 删除促销规则及其赠品池
func (r *GormPromotionRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", id).Delete(&models.PromotionGift{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Promotion{}, id).Error
	})
}

// List 获取促销规则列表
func (r *GormPromotionRepository) List(filter PromotionListFilter) ([]models.Promotion, int64, error) {
	var promotions []models.Promotion
	query := r.db.Model(&models.Promotion{})

	if kind := strings.TrimSpace(filter.Kind); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.ActiveAt != nil {
		query = whereActiveAt(query, *filter.ActiveAt)
	}
	query = applySearch(query, filter.Search, []string{"name"}, nil)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(preloadGifts(query), filter.Page, filter.PageSize)
	if err := query.Order("priority DESC, id DESC").Find(&promotions).Error; err != nil {
		return nil, 0, err
	}
	return promotions, total, nil
}
