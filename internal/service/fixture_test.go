package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/promo-engine/internal/config"
	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var fixtureNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db         *gorm.DB
	promotions *PromotionService
	admin      *PromotionAdminService
	carts      *CartService
	products   *ProductService
	categories *CategoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductSKU{},
		&models.CartItem{},
		&models.Promotion{},
		&models.PromotionGift{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	promotionRepo := repository.NewPromotionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	skuRepo := repository.NewProductSKURepository(db)
	cartRepo := repository.NewCartRepository(db)

	promotions := NewPromotionService(config.PromotionConfig{
		CurrencyScale:             2,
		ExpandCategoryDescendants: true,
	}, promotionRepo, categoryRepo, productRepo, skuRepo)
	promotions.now = func() time.Time { return fixtureNow }

	return &fixture{
		db:         db,
		promotions: promotions,
		admin:      NewPromotionAdminService(promotionRepo, skuRepo, promotions, nil),
		carts:      NewCartService(cartRepo, productRepo, skuRepo, promotions),
		products:   NewProductService(productRepo, promotions),
		categories: NewCategoryService(categoryRepo),
	}
}

func money(v string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(v))
}

func (f *fixture) createCategory(t *testing.T, parentID uint, slug string) models.Category {
	t.Helper()
	category, err := f.categories.Create(CreateCategoryInput{
		ParentID: parentID,
		Slug:     slug,
		NameJSON: map[string]interface{}{"zh-CN": slug},
	})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return *category
}

// createProduct 创建商品及一个不限库存的默认 SKU
func (f *fixture) createProduct(t *testing.T, categoryID uint, slug, price string, tags ...string) (models.Product, models.ProductSKU) {
	t.Helper()
	product := models.Product{
		CategoryID:  categoryID,
		Slug:        slug,
		TitleJSON:   models.JSON{"zh-CN": slug},
		PriceAmount: money(price),
		Tags:        models.StringArray(tags),
		IsActive:    true,
	}
	if err := f.db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	sku := f.createSKU(t, product.ID, models.DefaultSKUCode, price, models.StockUnlimited)
	return product, sku
}

func (f *fixture) createSKU(t *testing.T, productID uint, code, price string, stock int) models.ProductSKU {
	t.Helper()
	sku := models.ProductSKU{
		ProductID:   productID,
		SKUCode:     code,
		PriceAmount: money(price),
		StockTotal:  stock,
		IsActive:    true,
	}
	if err := f.db.Create(&sku).Error; err != nil {
		t.Fatalf("create sku failed: %v", err)
	}
	return sku
}

// createPromotion 直接落库，绕过后台校验
func (f *fixture) createPromotion(t *testing.T, row *models.Promotion) {
	t.Helper()
	if err := f.db.Create(row).Error; err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
}

func cartRule(name, action, value, minThreshold string) *models.Promotion {
	return &models.Promotion{
		Name:          name,
		Kind:          "threshold_cart",
		ScopeType:     "all",
		ActionType:    action,
		Value:         money(value),
		ThresholdUnit: "amount",
		MinThreshold:  money(minThreshold),
		IsActive:      true,
	}
}
