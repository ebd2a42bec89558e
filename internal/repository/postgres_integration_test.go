//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/promo-engine/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.CartItem{},
		&models.PromotionGift{},
		&models.Promotion{},
		&models.ProductSKU{},
		&models.Product{},
		&models.Category{},
		&models.AdminAuditLog{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductSKU{},
		&models.Promotion{},
		&models.PromotionGift{},
		&models.CartItem{},
		&models.AdminAuditLog{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresLocalizedJSONSearchRepositories(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	category := &models.Category{
		Slug:     "pg-category",
		NameJSON: models.JSON{"zh-CN": "Postgres 分类"},
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	productRepo := NewProductRepository(db)
	product := &models.Product{
		CategoryID:  category.ID,
		Slug:        "pg-product-rocket",
		TitleJSON:   models.JSON{"zh-CN": "火箭耳机", "en-US": "Rocket Booster Earphones"},
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(99)),
		IsActive:    true,
	}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	for _, keyword := range []string{"火箭", "booster"} {
		rows, total, err := productRepo.List(ProductListFilter{Page: 1, PageSize: 10, Search: keyword})
		if err != nil {
			t.Fatalf("product list search %s failed: %v", keyword, err)
		}
		if total != 1 || len(rows) != 1 {
			t.Fatalf("product list search %s want 1 got total=%d len=%d", keyword, total, len(rows))
		}
	}

	promotionRepo := NewPromotionRepository(db)
	if err := promotionRepo.Create(&models.Promotion{
		Name:          "Postgres 满减",
		Kind:          "threshold_cart",
		ScopeType:     "all",
		ActionType:    "fixed",
		Value:         models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		ThresholdUnit: "amount",
		MinThreshold:  models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		IsActive:      true,
	}); err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	rows, total, err := promotionRepo.List(PromotionListFilter{Page: 1, PageSize: 10, Search: "postgres"})
	if err != nil {
		t.Fatalf("promotion list search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("promotion search should be case-insensitive, total=%d len=%d", total, len(rows))
	}
}

func TestPostgresPromotionAndCartQueries(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	category := &models.Category{Slug: "pg-cart-category", NameJSON: models.JSON{"zh-CN": "购物车分类"}}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := &models.Product{
		CategoryID:  category.ID,
		Slug:        "pg-cart-product",
		TitleJSON:   models.JSON{"zh-CN": "购物车商品"},
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
		IsActive:    true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	sku := &models.ProductSKU{
		ProductID:   product.ID,
		SKUCode:     models.DefaultSKUCode,
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
		StockTotal:  10,
		IsActive:    true,
	}
	if err := db.Create(sku).Error; err != nil {
		t.Fatalf("create sku failed: %v", err)
	}

	promotionRepo := NewPromotionRepository(db)
	expired := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	fixtures := []models.Promotion{
		{Name: "expired", Kind: "direct", ScopeType: "all", ActionType: "percent", ThresholdUnit: "amount", IsActive: true, EndsAt: &expired},
		{Name: "upcoming", Kind: "direct", ScopeType: "all", ActionType: "percent", ThresholdUnit: "amount", IsActive: true, StartsAt: &future, Priority: 1},
		{
			Name: "gift", Kind: "threshold_cart", ScopeType: "all", ActionType: "gift", ThresholdUnit: "amount", IsActive: true, Priority: 5,
			Gifts: []models.PromotionGift{{SKUID: sku.ID, UnitCost: models.NewMoneyFromDecimal(decimal.NewFromInt(50))}},
		},
	}
	for i := range fixtures {
		if err := promotionRepo.Create(&fixtures[i]); err != nil {
			t.Fatalf("create promotion %s failed: %v", fixtures[i].Name, err)
		}
	}

	active, err := promotionRepo.ListActive(now)
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if len(active) != 2 || active[0].Name != "gift" || len(active[0].Gifts) != 1 {
		t.Fatalf("list active should return gift then upcoming, got %+v", active)
	}

	cartRepo := NewCartRepository(db)
	item := &models.CartItem{UserID: 9, ProductID: product.ID, SKUID: sku.ID, Quantity: 1, CreatedAt: now, UpdatedAt: now}
	if err := cartRepo.Upsert(item); err != nil {
		t.Fatalf("upsert cart failed: %v", err)
	}
	item.Quantity = 3
	if err := cartRepo.Upsert(item); err != nil {
		t.Fatalf("upsert cart again failed: %v", err)
	}
	items, err := cartRepo.ListByUser(9)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("upsert should overwrite quantity, got %+v", items)
	}

	auditRepo := NewAdminAuditLogRepository(db)
	if err := auditRepo.Create(&models.AdminAuditLog{
		OperatorAdminID: 1,
		TargetType:      models.AuditTargetPromotion,
		TargetID:        fixtures[2].ID,
		Action:          "promotion_create",
		DetailJSON:      models.JSON{"name": "gift"},
		CreatedAt:       now,
	}); err != nil {
		t.Fatalf("create audit log failed: %v", err)
	}
	logs, total, err := auditRepo.ListAdmin(AdminAuditLogListFilter{Page: 1, PageSize: 10, TargetType: models.AuditTargetPromotion})
	if err != nil || total != 1 || len(logs) != 1 {
		t.Fatalf("audit list want 1 got total=%d err=%v", total, err)
	}
}
