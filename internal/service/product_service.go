package service

import (
	"context"

	"github.com/dujiao-next/promo-engine/internal/constants"
	"github.com/dujiao-next/promo-engine/internal/metrics"
	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/repository"
)

// ProductListItem 公开商品列表项（附带直降价）
type ProductListItem struct {
	models.Product
	Price SKUPrice `json:"price"`
}

// ProductService 商品业务服务
type ProductService struct {
	repo             repository.ProductRepository
	promotionService *PromotionService
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, promotionService *PromotionService) *ProductService {
	return &ProductService{repo: repo, promotionService: promotionService}
}

// ListPublic 获取公开商品列表，整页共用一次筛选出的直降规则
func (s *ProductService) ListPublic(ctx context.Context, categoryID uint, search string, page, pageSize int) ([]ProductListItem, int64, error) {
	products, total, err := s.repo.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: categoryID,
		Search:     search,
		OnlyActive: true,
	})
	if err != nil {
		return nil, 0, err
	}

	set := s.promotionService.directRules(ctx)
	metrics.ObserveEvaluation(constants.OperationDirectPrice, set.Len())
	items := make([]ProductListItem, 0, len(products))
	for i := range products {
		product := products[i]
		skuID, skuCode, base := listPrice(&product)
		items = append(items, ProductListItem{
			Product: product,
			Price:   s.promotionService.priceFor(ItemForProduct(&product), skuID, skuCode, base, set),
		})
	}
	return items, total, nil
}

// GetPublic 获取公开商品详情
func (s *ProductService) GetPublic(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Promotions 获取商品直降价与活动角标
func (s *ProductService) Promotions(ctx context.Context, id uint) (*ProductPromotions, error) {
	return s.promotionService.ForProduct(ctx, id)
}

// listPrice 列表展示价：有启用 SKU 时取最低价 SKU，否则取商品价
func listPrice(product *models.Product) (uint, string, models.Money) {
	var picked *models.ProductSKU
	for i := range product.SKUs {
		sku := &product.SKUs[i]
		if !sku.IsActive {
			continue
		}
		if picked == nil || sku.PriceAmount.LessThan(picked.PriceAmount.Decimal) {
			picked = sku
		}
	}
	if picked == nil {
		return 0, "", product.PriceAmount
	}
	return picked.ID, picked.SKUCode, picked.PriceAmount
}

