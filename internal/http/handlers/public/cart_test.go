package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/promotion"
)

func (f *handlerFixture) setupGiftRule(t *testing.T) (models.Product, models.ProductSKU, *models.Promotion) {
	t.Helper()
	product, _ := f.createProduct(t, "tea", "100", models.StockUnlimited)
	_, giftSKU := f.createProduct(t, "cup", "30", 5)
	rule := &models.Promotion{
		Name:           "满200赠杯",
		Kind:           "threshold_cart",
		ScopeType:      "all",
		ActionType:     "gift",
		Value:          money("0"),
		ThresholdUnit:  "amount",
		MinThreshold:   money("200"),
		MaxRepeatCount: intPtr(2),
		IsActive:       true,
		Gifts: []models.PromotionGift{
			{SKUID: giftSKU.ID, UnitCost: money("100")},
		},
	}
	f.createPromotion(t, rule)
	return product, giftSKU, rule
}

func TestCartFlowWithGiftClaim(t *testing.T) {
	f := setupHandlerFixture(t)
	product, giftSKU, rule := f.setupGiftRule(t)

	resp := f.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": product.ID, "quantity": 3})
	if resp.StatusCode != 0 {
		t.Fatalf("upsert want 0 got %d msg=%s", resp.StatusCode, resp.Msg)
	}

	menu := f.do(t, http.MethodGet, fmt.Sprintf("/cart/gifts/%d", rule.ID), nil)
	if menu.StatusCode != 0 {
		t.Fatalf("gift menu want 0 got %d msg=%s", menu.StatusCode, menu.Msg)
	}
	var menuData struct {
		Options []promotion.GiftOption `json:"options"`
	}
	if err := json.Unmarshal(menu.Data, &menuData); err != nil {
		t.Fatalf("unmarshal menu failed: %v", err)
	}
	if len(menuData.Options) != 1 || menuData.Options[0].VariantID != giftSKU.ID {
		t.Fatalf("unexpected gift menu: %+v", menuData.Options)
	}

	claim := decodeQuote(t, f.do(t, http.MethodPost, "/cart/gifts", map[string]interface{}{
		"rule_id":    rule.ID,
		"selections": []promotion.GiftSelection{{VariantID: giftSKU.ID, Quantity: 2}},
	}))
	gifts := 0
	for _, line := range claim.Lines {
		if line.IsGift {
			gifts += line.Quantity
			if !line.UnitPrice.IsZero() {
				t.Fatalf("gift line should be free, got %s", line.UnitPrice.String())
			}
		}
	}
	if gifts != 2 {
		t.Fatalf("gift quantity want 2 got %d", gifts)
	}

	cart := decodeQuote(t, f.do(t, http.MethodGet, "/cart", nil))
	if got := cart.Payable.StringFixed(2); got != "300.00" {
		t.Fatalf("payable want 300.00 got %s", got)
	}
}

func TestClaimGiftsMapsEngineErrors(t *testing.T) {
	f := setupHandlerFixture(t)
	product, giftSKU, rule := f.setupGiftRule(t)
	other, _ := f.createProduct(t, "spoon", "5", models.StockUnlimited)

	// 未加购，门槛未达成
	resp := f.do(t, http.MethodPost, "/cart/gifts", map[string]interface{}{
		"rule_id":    rule.ID,
		"selections": []promotion.GiftSelection{{VariantID: giftSKU.ID, Quantity: 1}},
	})
	if resp.StatusCode != 400 || resp.Msg != "Cart does not qualify for this gift promotion" {
		t.Fatalf("unqualified want 400 got %d msg=%s", resp.StatusCode, resp.Msg)
	}

	f.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": product.ID, "quantity": 2})
	cases := []struct {
		name       string
		selections []promotion.GiftSelection
		msg        string
	}{
		{"over allowance", []promotion.GiftSelection{{VariantID: giftSKU.ID, Quantity: 3}}, "Selected gift quantity exceeds the allowance"},
		{"not in pool", []promotion.GiftSelection{{VariantID: other.ID + 100, Quantity: 1}}, "Selected gift is not offered by this promotion"},
		{"zero quantity", []promotion.GiftSelection{{VariantID: giftSKU.ID, Quantity: 0}}, "Invalid gift selection"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, "/cart/gifts", map[string]interface{}{
				"rule_id":    rule.ID,
				"selections": tc.selections,
			})
			if resp.StatusCode != 400 || resp.Msg != tc.msg {
				t.Fatalf("want 400 %q got %d %q", tc.msg, resp.StatusCode, resp.Msg)
			}
		})
	}
}

func TestDeleteCartItem(t *testing.T) {
	f := setupHandlerFixture(t)
	product, _ := f.createProduct(t, "tea", "100", models.StockUnlimited)
	f.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": product.ID, "quantity": 1})

	resp := f.do(t, http.MethodDelete, fmt.Sprintf("/cart/items/%d", product.ID), nil)
	if resp.StatusCode != 0 {
		t.Fatalf("delete want 0 got %d", resp.StatusCode)
	}
	cart := decodeQuote(t, f.do(t, http.MethodGet, "/cart", nil))
	if len(cart.Lines) != 0 {
		t.Fatalf("cart should be empty, got %d lines", len(cart.Lines))
	}

	bad := f.do(t, http.MethodDelete, "/cart/items/abc", nil)
	if bad.StatusCode != 400 {
		t.Fatalf("bad id want 400 got %d", bad.StatusCode)
	}
	badSKU := f.do(t, http.MethodDelete, fmt.Sprintf("/cart/items/%d?sku_id=x", product.ID), nil)
	if badSKU.StatusCode != 400 {
		t.Fatalf("bad sku id want 400 got %d", badSKU.StatusCode)
	}
}

func TestCartRequiresUser(t *testing.T) {
	f := setupHandlerFixture(t)
	resp := f.do(t, http.MethodGet, "/anonymous/cart", nil)
	if resp.StatusCode != 401 {
		t.Fatalf("anonymous cart want 401 got %d", resp.StatusCode)
	}
}
