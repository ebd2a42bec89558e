package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/promotion"
)

func setupGiftCart(t *testing.T) (*fixture, uint, models.ProductSKU, *models.Promotion) {
	t.Helper()
	f := newFixture(t)
	product, _ := f.createProduct(t, 1, "coffee", "60")
	giftProduct, _ := f.createProduct(t, 1, "spoon", "5")
	giftSKU := f.createSKU(t, giftProduct.ID, "GOLD", "9", 3)

	rule := cartRule("满100赠勺", "gift", "0", "100")
	max := 2
	rule.MaxRepeatCount = &max
	rule.Gifts = []models.PromotionGift{{SKUID: giftSKU.ID, UnitCost: money("50")}}
	f.createPromotion(t, rule)

	if err := f.carts.UpsertItem(UpsertCartItemInput{UserID: 7, ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("upsert item failed: %v", err)
	}
	return f, product.ID, giftSKU, rule
}

func TestCartUpsertUsesFirstActiveSKU(t *testing.T) {
	f, productID, _, _ := setupGiftCart(t)
	quote, err := f.carts.GetCart(context.Background(), 7)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(quote.Lines) != 1 || quote.Lines[0].ProductID != productID || quote.Lines[0].SKUID == 0 {
		t.Fatalf("unexpected cart lines: %+v", quote.Lines)
	}
	if quote.Subtotal.String() != "120.00" {
		t.Fatalf("unexpected subtotal: %s", quote.Subtotal)
	}
}

func TestCartClaimGifts(t *testing.T) {
	f, _, giftSKU, rule := setupGiftCart(t)
	ctx := context.Background()

	quote, err := f.carts.ClaimGifts(ctx, ClaimGiftsInput{
		UserID:     7,
		RuleID:     rule.ID,
		Selections: []promotion.GiftSelection{{VariantID: giftSKU.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("claim gifts failed: %v", err)
	}
	if len(quote.Lines) != 2 {
		t.Fatalf("expected paid line + gift line, got %+v", quote.Lines)
	}
	gift := quote.Lines[1]
	if !gift.IsGift || gift.GiftRuleID != rule.ID || gift.Quantity != 2 {
		t.Fatalf("unexpected gift line: %+v", gift)
	}
	if !gift.UnitPrice.IsZero() || gift.GiftInvalid {
		t.Fatalf("claimed gift should be free and valid: %+v", gift)
	}
	if quote.Subtotal.String() != "120.00" {
		t.Fatalf("gift line should not change subtotal: %s", quote.Subtotal)
	}

	// 再次领取会替换原有赠品行
	quote, err = f.carts.ClaimGifts(ctx, ClaimGiftsInput{
		UserID:     7,
		RuleID:     rule.ID,
		Selections: []promotion.GiftSelection{{VariantID: giftSKU.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("reclaim gifts failed: %v", err)
	}
	if len(quote.Lines) != 2 || quote.Lines[1].Quantity != 1 {
		t.Fatalf("gift line should be replaced: %+v", quote.Lines)
	}
}

func TestCartClaimGiftsRejectsOverAllowance(t *testing.T) {
	f, _, giftSKU, rule := setupGiftCart(t)
	_, err := f.carts.ClaimGifts(context.Background(), ClaimGiftsInput{
		UserID:     7,
		RuleID:     rule.ID,
		Selections: []promotion.GiftSelection{{VariantID: giftSKU.ID, Quantity: 3}},
	})
	if !errors.Is(err, ErrGiftSelectionInvalid) || !errors.Is(err, promotion.ErrGiftQuantityExceeded) {
		t.Fatalf("expected quantity exceeded, got %v", err)
	}
}

func TestCartClaimGiftsRejectsUnqualifiedRule(t *testing.T) {
	f, productID, giftSKU, rule := setupGiftCart(t)
	if err := f.carts.UpsertItem(UpsertCartItemInput{UserID: 7, ProductID: productID, Quantity: 1}); err != nil {
		t.Fatalf("upsert item failed: %v", err)
	}
	_, err := f.carts.ClaimGifts(context.Background(), ClaimGiftsInput{
		UserID:     7,
		RuleID:     rule.ID,
		Selections: []promotion.GiftSelection{{VariantID: giftSKU.ID, Quantity: 1}},
	})
	if !errors.Is(err, promotion.ErrGiftRuleNotQualified) {
		t.Fatalf("expected not qualified, got %v", err)
	}
}

func TestCartGiftLineInvalidAfterRemovingPaidItems(t *testing.T) {
	f, productID, giftSKU, rule := setupGiftCart(t)
	ctx := context.Background()
	if _, err := f.carts.ClaimGifts(ctx, ClaimGiftsInput{
		UserID:     7,
		RuleID:     rule.ID,
		Selections: []promotion.GiftSelection{{VariantID: giftSKU.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("claim gifts failed: %v", err)
	}
	if err := f.carts.RemoveItem(7, productID, 0); err != nil {
		t.Fatalf("remove item failed: %v", err)
	}

	quote, err := f.carts.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(quote.Lines) != 1 || !quote.Lines[0].IsGift || !quote.Lines[0].GiftInvalid {
		t.Fatalf("orphan gift line should be flagged invalid: %+v", quote.Lines)
	}
}

func TestCartReportsInactiveProductsWithoutDeleting(t *testing.T) {
	f, productID, _, _ := setupGiftCart(t)
	if err := f.db.Model(&models.Product{}).Where("id = ?", productID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}
	quote, err := f.carts.GetCart(context.Background(), 7)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(quote.Lines) != 0 || len(quote.UnavailableLines) != 1 || quote.UnavailableLines[0].ProductID != productID {
		t.Fatalf("inactive product should be reported unavailable: lines=%+v unavailable=%+v", quote.Lines, quote.UnavailableLines)
	}
	var count int64
	f.db.Model(&models.CartItem{}).Where("user_id = ?", 7).Count(&count)
	if count != 1 {
		t.Fatalf("reading the cart must not delete rows, count=%d", count)
	}

	other, _ := f.createProduct(t, 1, "tea", "10")
	if err := f.carts.UpsertItem(UpsertCartItemInput{UserID: 7, ProductID: other.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert item failed: %v", err)
	}
	f.db.Model(&models.CartItem{}).Where("user_id = ? AND product_id = ?", 7, productID).Count(&count)
	if count != 0 {
		t.Fatalf("inactive cart row should be pruned on update, count=%d", count)
	}
}

func TestCartInactiveSKUKeepsSiblingSKU(t *testing.T) {
	f := newFixture(t)
	product, skuA := f.createProduct(t, 1, "coffee", "60")
	skuB := f.createSKU(t, product.ID, "LARGE", "80", models.StockUnlimited)
	for _, sku := range []models.ProductSKU{skuA, skuB} {
		if err := f.carts.UpsertItem(UpsertCartItemInput{UserID: 7, ProductID: product.ID, SKUID: sku.ID, Quantity: 1}); err != nil {
			t.Fatalf("upsert sku %d failed: %v", sku.ID, err)
		}
	}
	if err := f.db.Model(&models.ProductSKU{}).Where("id = ?", skuB.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate sku failed: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		quote, err := f.carts.GetCart(ctx, 7)
		if err != nil {
			t.Fatalf("get cart failed: %v", err)
		}
		if len(quote.Lines) != 1 || quote.Lines[0].SKUID != skuA.ID {
			t.Fatalf("read %d: active sku line should stay: %+v", i, quote.Lines)
		}
	}

	// 更新购物车时只清理失效 SKU 的行
	if err := f.carts.UpsertItem(UpsertCartItemInput{UserID: 7, ProductID: product.ID, SKUID: skuA.ID, Quantity: 3}); err != nil {
		t.Fatalf("update item failed: %v", err)
	}
	var rows []models.CartItem
	if err := f.db.Where("user_id = ?", 7).Find(&rows).Error; err != nil {
		t.Fatalf("list rows failed: %v", err)
	}
	if len(rows) != 1 || rows[0].SKUID != skuA.ID || rows[0].Quantity != 3 {
		t.Fatalf("only the inactive sku row should be pruned: %+v", rows)
	}
}

func TestCartRemoveItemBySKU(t *testing.T) {
	f := newFixture(t)
	product, skuA := f.createProduct(t, 1, "coffee", "60")
	skuB := f.createSKU(t, product.ID, "LARGE", "80", models.StockUnlimited)
	for _, sku := range []models.ProductSKU{skuA, skuB} {
		if err := f.carts.UpsertItem(UpsertCartItemInput{UserID: 7, ProductID: product.ID, SKUID: sku.ID, Quantity: 1}); err != nil {
			t.Fatalf("upsert sku %d failed: %v", sku.ID, err)
		}
	}
	if err := f.carts.RemoveItem(7, product.ID, skuB.ID); err != nil {
		t.Fatalf("remove sku line failed: %v", err)
	}
	quote, err := f.carts.GetCart(context.Background(), 7)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(quote.Lines) != 1 || quote.Lines[0].SKUID != skuA.ID {
		t.Fatalf("only sku %d should remain: %+v", skuA.ID, quote.Lines)
	}
	if err := f.carts.RemoveItem(7, product.ID, 0); err != nil {
		t.Fatalf("remove product lines failed: %v", err)
	}
	quote, err = f.carts.GetCart(context.Background(), 7)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(quote.Lines) != 0 {
		t.Fatalf("all product lines should be removed: %+v", quote.Lines)
	}
}

func TestCartUpsertRejectsUnknownSKU(t *testing.T) {
	f, productID, giftSKU, _ := setupGiftCart(t)
	err := f.carts.UpsertItem(UpsertCartItemInput{UserID: 7, ProductID: productID, SKUID: giftSKU.ID, Quantity: 1})
	if err != ErrSKUNotFound {
		t.Fatalf("expected ErrSKUNotFound, got %v", err)
	}
}
