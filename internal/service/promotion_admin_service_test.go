package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dujiao-next/promo-engine/internal/promotion"
	"github.com/dujiao-next/promo-engine/internal/repository"
)

func fixedInput(name, minThreshold, value string) PromotionInput {
	return PromotionInput{
		Name:          name,
		Kind:          "threshold_cart",
		ScopeType:     "all",
		ActionType:    "fixed",
		Value:         money(value),
		ThresholdUnit: "amount",
		MinThreshold:  money(minThreshold),
	}
}

func TestAdminCreateNormalizesAndRefreshesSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.promotions.Snapshot(ctx); err != nil {
		t.Fatalf("warm snapshot failed: %v", err)
	}

	input := fixedInput("  满100减10 ", "100", "10")
	input.Kind = " THRESHOLD_CART"
	input.ScopeType = "Product"
	input.ScopeRefIDs = []uint{3, 0, 3, 5}
	row, err := f.admin.Create(ctx, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if row.Name != "满100减10" || row.Kind != "threshold_cart" || !row.IsActive {
		t.Fatalf("unexpected normalized row: %+v", row)
	}
	if len(row.ScopeRefIDs) != 2 || row.ScopeRefIDs[0] != 3 || row.ScopeRefIDs[1] != 5 {
		t.Fatalf("scope ids not normalized: %v", row.ScopeRefIDs)
	}

	snapshot, err := f.promotions.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(snapshot.Rules) != 1 || snapshot.Rules[0].ID != row.ID {
		t.Fatalf("snapshot should be rebuilt after create: %+v", snapshot.Rules)
	}
}

func TestAdminCreateRejectsInvalidRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	repeatable := fixedInput("每满0减5", "0", "5")
	repeatable.IsRepeatable = true

	percent := fixedInput("超额折扣", "0", "120")
	percent.ActionType = "percent"

	emptyScope := fixedInput("空范围", "0", "5")
	emptyScope.ScopeType = "category"

	missingGift := fixedInput("赠品不存在", "100", "0")
	missingGift.ActionType = "gift"
	missingGift.Gifts = []PromotionGiftInput{{SKUID: 404, UnitCost: money("10")}}

	directGift := fixedInput("直降赠品", "0", "0")
	directGift.Kind = "direct"
	directGift.ActionType = "gift"
	directGift.Gifts = []PromotionGiftInput{{SKUID: 1, UnitCost: money("10")}}

	cases := []struct {
		name  string
		input PromotionInput
		cause error
	}{
		{name: "blank name", input: fixedInput(" ", "0", "5")},
		{name: "unknown kind", input: PromotionInput{Name: "x", Kind: "bundle", ScopeType: "all", ActionType: "fixed", Value: money("1")}, cause: promotion.ErrUnknownKind},
		{name: "repeatable zero threshold", input: repeatable, cause: promotion.ErrRepeatableThreshold},
		{name: "percent over 100", input: percent, cause: promotion.ErrActionValueInvalid},
		{name: "empty scope", input: emptyScope, cause: promotion.ErrScopeEmpty},
		{name: "zero fixed value", input: fixedInput("零元", "0", "0"), cause: promotion.ErrActionValueInvalid},
		{name: "missing gift sku", input: missingGift, cause: ErrSKUNotFound},
		{name: "gift on direct", input: directGift, cause: promotion.ErrActionUnsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.admin.Create(ctx, tc.input)
			if !errors.Is(err, ErrPromotionInvalid) {
				t.Fatalf("expected ErrPromotionInvalid, got %v", err)
			}
			if tc.cause != nil && !errors.Is(err, tc.cause) {
				t.Fatalf("expected cause %v, got %v", tc.cause, err)
			}
		})
	}
}

func TestAdminUpdateReplacesGiftPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	giftProduct, first := f.createProduct(t, 1, "sticker", "1")
	second := f.createSKU(t, giftProduct.ID, "BIG", "2", 5)

	input := fixedInput("满50赠贴纸", "50", "0")
	input.ActionType = "gift"
	input.Gifts = []PromotionGiftInput{{SKUID: first.ID, UnitCost: money("10")}}
	row, err := f.admin.Create(ctx, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	input.Gifts = []PromotionGiftInput{{SKUID: second.ID, UnitCost: money("25")}}
	inactive := false
	input.IsActive = &inactive
	updated, err := f.admin.Update(ctx, row.ID, input)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.IsActive || len(updated.Gifts) != 1 || updated.Gifts[0].SKUID != second.ID {
		t.Fatalf("unexpected updated row: %+v", updated)
	}

	snapshot, err := f.promotions.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(snapshot.Rules) != 0 {
		t.Fatalf("disabled rule should leave the snapshot: %+v", snapshot.Rules)
	}
}

func TestAdminDeleteAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	row, err := f.admin.Create(ctx, fixedInput("立减1", "0", "1"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := f.admin.Delete(ctx, row.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := f.admin.Get(row.ID); err != ErrPromotionNotFound {
		t.Fatalf("expected ErrPromotionNotFound, got %v", err)
	}
	if err := f.admin.Delete(ctx, row.ID); err != ErrPromotionNotFound {
		t.Fatalf("deleting twice should report not found, got %v", err)
	}
}

func TestAdminListFiltersByKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.admin.Create(ctx, fixedInput("满减", "10", "1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	direct := fixedInput("直降", "0", "1")
	direct.Kind = "direct"
	if _, err := f.admin.Create(ctx, direct); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rows, total, err := f.admin.List(repository.PromotionListFilter{Page: 1, PageSize: 10, Kind: "direct"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Name != "直降" {
		t.Fatalf("unexpected list result: total=%d rows=%+v", total, rows)
	}
}

func TestAdminPreviewDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product, sku := f.createProduct(t, 1, "desk", "80")
	existing, err := f.admin.Create(ctx, fixedInput("满50减5", "50", "5"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	items := []QuoteItem{{ProductID: product.ID, SKUID: sku.ID, Quantity: 1}}
	quote, err := f.admin.Preview(ctx, existing.ID, fixedInput("满50减15", "50", "15"), items)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if quote.TotalDiscount.String() != "15.00" {
		t.Fatalf("draft should replace stored rule, discount=%s", quote.TotalDiscount)
	}

	quote, err = f.promotions.Quote(ctx, items)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.TotalDiscount.String() != "5.00" {
		t.Fatalf("preview must not change stored rules, discount=%s", quote.TotalDiscount)
	}
}
