package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/service"
)

func TestEvaluatePromotionsAppliesCartThreshold(t *testing.T) {
	f := setupHandlerFixture(t)
	product, sku := f.createProduct(t, "tea", "100", models.StockUnlimited)
	f.createPromotion(t, &models.Promotion{
		Name:          "满150减20",
		Kind:          "threshold_cart",
		ScopeType:     "all",
		ActionType:    "fixed",
		Value:         money("20"),
		ThresholdUnit: "amount",
		MinThreshold:  money("150"),
		IsActive:      true,
	})

	quote := decodeQuote(t, f.do(t, http.MethodPost, "/public/promotions/evaluate", map[string]interface{}{
		"items": []service.QuoteItem{{ProductID: product.ID, SKUID: sku.ID, Quantity: 2}},
	}))
	if got := quote.Subtotal.StringFixed(2); got != "200.00" {
		t.Fatalf("subtotal want 200.00 got %s", got)
	}
	if got := quote.TotalDiscount.StringFixed(2); got != "20.00" {
		t.Fatalf("total discount want 20.00 got %s", got)
	}
	if got := quote.Payable.StringFixed(2); got != "180.00" {
		t.Fatalf("payable want 180.00 got %s", got)
	}
	if len(quote.Promotions) != 1 || !quote.Promotions[0].IsQualified {
		t.Fatalf("expected one qualified promotion, got %+v", quote.Promotions)
	}
}

func TestEvaluatePromotionsRejectsBadItems(t *testing.T) {
	f := setupHandlerFixture(t)
	product, _ := f.createProduct(t, "tea", "100", models.StockUnlimited)

	cases := []struct {
		name string
		body interface{}
		want int
	}{
		{"missing items", map[string]interface{}{}, 400},
		{"zero quantity", map[string]interface{}{"items": []service.QuoteItem{{ProductID: product.ID, Quantity: 0}}}, 400},
		{"unknown product", map[string]interface{}{"items": []service.QuoteItem{{ProductID: 9999, Quantity: 1}}}, 400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, "/public/promotions/evaluate", tc.body)
			if resp.StatusCode != tc.want {
				t.Fatalf("status_code want %d got %d msg=%s", tc.want, resp.StatusCode, resp.Msg)
			}
		})
	}
}

func TestGetProductPromotionsShowsDirectPrice(t *testing.T) {
	f := setupHandlerFixture(t)
	product, _ := f.createProduct(t, "coffee", "50", models.StockUnlimited)
	f.createPromotion(t, &models.Promotion{
		Name:          "咖啡八折",
		Kind:          "direct",
		ScopeType:     "product",
		ScopeRefIDs:   models.UintArray{product.ID},
		ActionType:    "percent",
		Value:         money("20"),
		ThresholdUnit: "amount",
		IsActive:      true,
	})

	resp := f.do(t, http.MethodGet, fmt.Sprintf("/public/products/%d/promotions", product.ID), nil)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d msg=%s", resp.StatusCode, resp.Msg)
	}
	var result service.ProductPromotions
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(result.Prices) != 1 {
		t.Fatalf("expected one sku price, got %d", len(result.Prices))
	}
	if got := result.Prices[0].FinalPrice.StringFixed(2); got != "40.00" {
		t.Fatalf("final price want 40.00 got %s", got)
	}

	missing := f.do(t, http.MethodGet, "/public/products/9999/promotions", nil)
	if missing.StatusCode != 404 {
		t.Fatalf("missing product want 404 got %d", missing.StatusCode)
	}
	bad := f.do(t, http.MethodGet, "/public/products/abc/promotions", nil)
	if bad.StatusCode != 400 {
		t.Fatalf("bad id want 400 got %d", bad.StatusCode)
	}
}

func TestGetProductsPagination(t *testing.T) {
	f := setupHandlerFixture(t)
	for i := 0; i < 3; i++ {
		f.createProduct(t, fmt.Sprintf("p%d", i), "10", models.StockUnlimited)
	}
	req := f.do(t, http.MethodGet, "/public/products?page=1&page_size=2", nil)
	if req.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", req.StatusCode)
	}
	var items []service.ProductListItem
	if err := json.Unmarshal(req.Data, &items); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("page size 2 want 2 items got %d", len(items))
	}
}
