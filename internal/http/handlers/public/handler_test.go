package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dujiao-next/promo-engine/internal/config"
	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/provider"
	"github.com/dujiao-next/promo-engine/internal/repository"
	"github.com/dujiao-next/promo-engine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type testEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type handlerFixture struct {
	db      *gorm.DB
	handler *Handler
	router  *gin.Engine
}

func setupHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
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

	c := &provider.Container{Config: &config.Config{}}
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.ProductSKURepo = repository.NewProductSKURepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.PromotionService = service.NewPromotionService(config.PromotionConfig{CurrencyScale: 2, ExpandCategoryDescendants: true},
		c.PromotionRepo, c.CategoryRepo, c.ProductRepo, c.ProductSKURepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.PromotionService)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.ProductSKURepo, c.PromotionService)

	h := New(c)
	r := gin.New()
	r.GET("/public/products", h.GetProducts)
	r.GET("/public/products/:id", h.GetProduct)
	r.GET("/public/products/:id/promotions", h.GetProductPromotions)
	r.POST("/public/promotions/evaluate", h.EvaluatePromotions)
	r.POST("/public/promotions/gifts", h.GetGiftMenu)
	user := r.Group("", func(ctx *gin.Context) {
		ctx.Set("user_id", uint(7))
		ctx.Next()
	})
	user.GET("/cart", h.GetCart)
	user.POST("/cart/items", h.UpsertCartItem)
	user.DELETE("/cart/items/:product_id", h.DeleteCartItem)
	user.GET("/cart/gifts/:rule_id", h.GetCartGiftMenu)
	user.POST("/cart/gifts", h.ClaimCartGifts)
	r.GET("/anonymous/cart", h.GetCart)
	return &handlerFixture{db: db, handler: h, router: r}
}

func money(v string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(v))
}

func (f *handlerFixture) createProduct(t *testing.T, slug, price string, stock int) (models.Product, models.ProductSKU) {
	t.Helper()
	category := models.Category{Slug: "cat-" + slug, NameJSON: models.JSON{"zh-CN": slug}}
	if err := f.db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := models.Product{
		CategoryID:  category.ID,
		Slug:        slug,
		TitleJSON:   models.JSON{"zh-CN": slug},
		PriceAmount: money(price),
		IsActive:    true,
	}
	if err := f.db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	sku := models.ProductSKU{
		ProductID:   product.ID,
		SKUCode:     models.DefaultSKUCode,
		PriceAmount: money(price),
		StockTotal:  stock,
		IsActive:    true,
	}
	if err := f.db.Create(&sku).Error; err != nil {
		t.Fatalf("create sku failed: %v", err)
	}
	return product, sku
}

func (f *handlerFixture) createPromotion(t *testing.T, row *models.Promotion) {
	t.Helper()
	if err := f.db.Create(row).Error; err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body interface{}) testEnvelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp testEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func decodeQuote(t *testing.T, resp testEnvelope) service.CartQuote {
	t.Helper()
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d msg=%s", resp.StatusCode, resp.Msg)
	}
	var quote service.CartQuote
	if err := json.Unmarshal(resp.Data, &quote); err != nil {
		t.Fatalf("unmarshal quote failed: %v", err)
	}
	return quote
}

func intPtr(v int) *int { return &v }
