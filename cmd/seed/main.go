package main

import (
	"time"

	"github.com/dujiao-next/promo-engine/internal/config"
	"github.com/dujiao-next/promo-engine/internal/logger"
	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/repository"
	"github.com/dujiao-next/promo-engine/internal/service"

	"github.com/shopspring/decimal"
)

type seedSKU struct {
	Code  string
	Price float64
	Stock int
}

type seedProduct struct {
	Slug     string
	Category string
	Title    map[string]interface{}
	Price    float64
	Tags     []string
	SKUs     []seedSKU
}

func money(value float64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromFloat(value))
}

func intPtr(v int) *int {
	return &v
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.InitDefaultAdmin("admin", "admin123"); err != nil {
		stdLog.Printf("Failed to init admin: %v", err)
	}

	// 添加分类（数码配件挂在电子产品下，用于演示按分类活动覆盖子分类）
	categoryIDs := map[string]uint{}
	categories := []struct {
		Slug   string
		Parent string
		Name   map[string]interface{}
	}{
		{Slug: "electronics", Name: map[string]interface{}{"zh-CN": "电子产品", "zh-TW": "電子產品", "en-US": "Electronics"}},
		{Slug: "accessories", Parent: "electronics", Name: map[string]interface{}{"zh-CN": "数码配件", "zh-TW": "數碼配件", "en-US": "Accessories"}},
		{Slug: "lifestyle", Name: map[string]interface{}{"zh-CN": "生活用品", "zh-TW": "生活用品", "en-US": "Lifestyle"}},
	}
	for _, item := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", item.Slug).First(&existing).Error; err == nil {
			categoryIDs[item.Slug] = existing.ID
			stdLog.Printf("Category already exists: %s", item.Slug)
			continue
		}
		category := models.Category{
			ParentID: categoryIDs[item.Parent],
			Slug:     item.Slug,
			NameJSON: models.JSON(item.Name),
		}
		if err := models.DB.Create(&category).Error; err != nil {
			stdLog.Printf("Failed to create category %s: %v", item.Slug, err)
			continue
		}
		categoryIDs[item.Slug] = category.ID
		stdLog.Printf("Created category: %s", item.Slug)
	}

	// 添加商品与 SKU
	products := []seedProduct{
		{
			Slug:     "wireless-earphones",
			Category: "electronics",
			Title:    map[string]interface{}{"zh-CN": "无线蓝牙耳机", "zh-TW": "無線藍牙耳機", "en-US": "Wireless Bluetooth Earphones"},
			Price:    99.99,
			Tags:     []string{"audio", "new-arrival"},
			SKUs:     []seedSKU{{Code: "BLACK", Price: 99.99, Stock: models.StockUnlimited}, {Code: "WHITE", Price: 109.99, Stock: 30}},
		},
		{
			Slug:     "smart-watch",
			Category: "electronics",
			Title:    map[string]interface{}{"zh-CN": "智能手表", "zh-TW": "智能手錶", "en-US": "Smart Watch"},
			Price:    199.99,
			Tags:     []string{"wearable"},
			SKUs:     []seedSKU{{Code: models.DefaultSKUCode, Price: 199.99, Stock: 50}},
		},
		{
			Slug:     "power-bank",
			Category: "accessories",
			Title:    map[string]interface{}{"zh-CN": "便携充电宝", "zh-TW": "便攜充電寶", "en-US": "Portable Power Bank"},
			Price:    49.99,
			Tags:     []string{"charger"},
			SKUs:     []seedSKU{{Code: models.DefaultSKUCode, Price: 49.99, Stock: models.StockUnlimited}},
		},
		{
			Slug:     "backpack",
			Category: "lifestyle",
			Title:    map[string]interface{}{"zh-CN": "多功能背包", "zh-TW": "多功能背包", "en-US": "Multi-function Backpack"},
			Price:    79.99,
			Tags:     []string{"travel", "new-arrival"},
			SKUs:     []seedSKU{{Code: models.DefaultSKUCode, Price: 79.99, Stock: 100}},
		},
		{
			Slug:     "gift-cable",
			Category: "accessories",
			Title:    map[string]interface{}{"zh-CN": "赠品-数据线", "zh-TW": "贈品-數據線", "en-US": "Gift - USB Cable"},
			Price:    9.90,
			Tags:     []string{"gift"},
			SKUs:     []seedSKU{{Code: models.DefaultSKUCode, Price: 9.90, Stock: 200}},
		},
		{
			Slug:     "gift-sticker",
			Category: "lifestyle",
			Title:    map[string]interface{}{"zh-CN": "赠品-贴纸包", "zh-TW": "贈品-貼紙包", "en-US": "Gift - Sticker Pack"},
			Price:    2.00,
			Tags:     []string{"gift"},
			SKUs:     []seedSKU{{Code: models.DefaultSKUCode, Price: 2.00, Stock: 3}},
		},
	}
	skuIDs := map[string]uint{}
	productIDs := map[string]uint{}
	for _, item := range products {
		var existing models.Product
		if err := models.DB.Preload("SKUs").Where("slug = ?", item.Slug).First(&existing).Error; err == nil {
			productIDs[item.Slug] = existing.ID
			for _, sku := range existing.SKUs {
				skuIDs[item.Slug+"/"+sku.SKUCode] = sku.ID
			}
			stdLog.Printf("Product already exists: %s", item.Slug)
			continue
		}
		product := models.Product{
			CategoryID:  categoryIDs[item.Category],
			Slug:        item.Slug,
			TitleJSON:   models.JSON(item.Title),
			PriceAmount: money(item.Price),
			Tags:        models.StringArray(item.Tags),
			IsActive:    true,
		}
		for i, sku := range item.SKUs {
			product.SKUs = append(product.SKUs, models.ProductSKU{
				SKUCode:     sku.Code,
				PriceAmount: money(sku.Price),
				StockTotal:  sku.Stock,
				IsActive:    true,
				SortOrder:   i,
			})
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", item.Slug, err)
			continue
		}
		productIDs[item.Slug] = product.ID
		for _, sku := range product.SKUs {
			skuIDs[item.Slug+"/"+sku.SKUCode] = sku.ID
		}
		stdLog.Printf("Created product: %s", item.Slug)
	}

	// 添加促销规则
	now := time.Now()
	endsAt := now.AddDate(0, 1, 0)
	promotions := []models.Promotion{
		{
			Name:          "新品九折",
			Kind:          "direct",
			ScopeType:     "tag",
			ScopeTags:     models.StringArray{"new-arrival"},
			ActionType:    "percent",
			Value:         money(10),
			ThresholdUnit: "amount",
			IsActive:      true,
			Priority:      20,
		},
		{
			Name:           "全场每满 200 减 20",
			Kind:           "threshold_cart",
			ScopeType:      "all",
			ActionType:     "fixed",
			Value:          money(20),
			ThresholdUnit:  "amount",
			MinThreshold:   money(200),
			IsRepeatable:   true,
			MaxRepeatCount: intPtr(3),
			StartsAt:       &now,
			EndsAt:         &endsAt,
			IsActive:       true,
			Priority:       10,
		},
		{
			Name:          "电子产品满 2 件 95 折",
			Kind:          "threshold_product",
			ScopeType:     "category",
			ScopeRefIDs:   models.UintArray{categoryIDs["electronics"]},
			ActionType:    "percent",
			Value:         money(5),
			ThresholdUnit: "quantity",
			MinThreshold:  money(2),
			IsActive:      true,
			Priority:      5,
		},
		{
			Name:           "满 150 送好礼",
			Kind:           "threshold_cart",
			ScopeType:      "all",
			ActionType:     "gift",
			ThresholdUnit:  "amount",
			MinThreshold:   money(150),
			MaxRepeatCount: intPtr(2),
			IsActive:       true,
			Gifts: []models.PromotionGift{
				{SKUID: skuIDs["gift-cable/"+models.DefaultSKUCode], UnitCost: money(50), SortOrder: 0},
				{SKUID: skuIDs["gift-sticker/"+models.DefaultSKUCode], UnitCost: money(25), SortOrder: 1},
			},
		},
	}
	for _, item := range promotions {
		var existing models.Promotion
		if err := models.DB.Where("name = ?", item.Name).First(&existing).Error; err == nil {
			stdLog.Printf("Promotion already exists: %s", item.Name)
			continue
		}
		rule, err := item.ToRule()
		if err == nil {
			err = rule.Validate()
		}
		if err != nil {
			stdLog.Printf("Skip invalid promotion %s: %v", item.Name, err)
			continue
		}
		if err := models.DB.Create(&item).Error; err != nil {
			stdLog.Printf("Failed to create promotion %s: %v", item.Name, err)
			continue
		}
		stdLog.Printf("Created promotion: %s", item.Name)
	}

	// 生成联调用的前台用户 Token
	authService := service.NewAuthService(cfg, repository.NewAdminRepository(models.DB))
	token, expiresAt, err := authService.GenerateUserJWT(1)
	if err != nil {
		stdLog.Printf("Failed to generate user token: %v", err)
	} else {
		stdLog.Printf("Demo user token (user_id=1, expires %s): %s", expiresAt.Format(time.RFC3339), token)
	}

	stdLog.Printf("Seed completed: %d categories, %d products", len(categoryIDs), len(productIDs))
}
