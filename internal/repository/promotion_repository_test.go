package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/promo-engine/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T, tables ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(tables...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func money(v string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(v))
}

func newGiftPromotion(name string, priority int, gifts ...models.PromotionGift) *models.Promotion {
	return &models.Promotion{
		Name:          name,
		Kind:          "threshold_cart",
		ScopeType:     "all",
		ActionType:    "gift",
		ThresholdUnit: "amount",
		MinThreshold:  money("100"),
		IsActive:      true,
		Priority:      priority,
		Gifts:         gifts,
	}
}

func TestPromotionListActiveSkipsEndedAndDisabled(t *testing.T) {
	db := openTestDB(t, &models.Promotion{}, &models.PromotionGift{})
	repo := NewPromotionRepository(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	active := newGiftPromotion("active", 1,
		models.PromotionGift{SKUID: 12, UnitCost: money("20"), SortOrder: 2},
		models.PromotionGift{SKUID: 11, UnitCost: money("10"), SortOrder: 1},
	)
	high := newGiftPromotion("high", 9, models.PromotionGift{SKUID: 13, UnitCost: money("5")})
	expired := newGiftPromotion("expired", 5, models.PromotionGift{SKUID: 14, UnitCost: money("5")})
	expired.EndsAt = &past
	pending := newGiftPromotion("pending", 5, models.PromotionGift{SKUID: 15, UnitCost: money("5")})
	pending.StartsAt = &future
	for _, p := range []*models.Promotion{active, high, expired, pending} {
		if err := repo.Create(p); err != nil {
			t.Fatalf("create promotion failed: %v", err)
		}
	}
	disabled := newGiftPromotion("disabled", 5, models.PromotionGift{SKUID: 16, UnitCost: money("5")})
	if err := repo.Create(disabled); err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	if err := db.Model(disabled).Update("is_active", false).Error; err != nil {
		t.Fatalf("disable promotion failed: %v", err)
	}

	rows, err := repo.ListActive(now)
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 enabled promotions, got %d", len(rows))
	}
	if rows[0].Name != "high" || rows[1].Name != "pending" || rows[2].Name != "active" {
		t.Fatalf("unexpected order: %s, %s, %s", rows[0].Name, rows[1].Name, rows[2].Name)
	}
	if len(rows[2].Gifts) != 2 || rows[2].Gifts[0].SKUID != 11 {
		t.Fatalf("gifts should be preloaded by sort order: %+v", rows[2].Gifts)
	}
}

func TestPromotionUpdateReplacesGifts(t *testing.T) {
	db := openTestDB(t, &models.Promotion{}, &models.PromotionGift{})
	repo := NewPromotionRepository(db)

	p := newGiftPromotion("gift", 0,
		models.PromotionGift{SKUID: 1, UnitCost: money("10")},
		models.PromotionGift{SKUID: 2, UnitCost: money("20")},
	)
	if err := repo.Create(p); err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}

	p.Name = "gift v2"
	p.Gifts = []models.PromotionGift{{SKUID: 3, UnitCost: money("30")}}
	if err := repo.Update(p); err != nil {
		t.Fatalf("update promotion failed: %v", err)
	}

	got, err := repo.GetByID(p.ID)
	if err != nil || got == nil {
		t.Fatalf("get promotion failed: %v", err)
	}
	if got.Name != "gift v2" {
		t.Fatalf("name not updated: %s", got.Name)
	}
	if len(got.Gifts) != 1 || got.Gifts[0].SKUID != 3 {
		t.Fatalf("gift pool not replaced: %+v", got.Gifts)
	}

	var count int64
	if err := db.Model(&models.PromotionGift{}).Count(&count).Error; err != nil {
		t.Fatalf("count gifts failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("stale gifts left behind: %d", count)
	}
}

func TestPromotionDeleteAndGetMissing(t *testing.T) {
	db := openTestDB(t, &models.Promotion{}, &models.PromotionGift{})
	repo := NewPromotionRepository(db)

	p := newGiftPromotion("gift", 0, models.PromotionGift{SKUID: 1, UnitCost: money("10")})
	if err := repo.Create(p); err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	if err := repo.Delete(p.ID); err != nil {
		t.Fatalf("delete promotion failed: %v", err)
	}
	got, err := repo.GetByID(p.ID)
	if err != nil {
		t.Fatalf("get deleted promotion failed: %v", err)
	}
	if got != nil {
		t.Fatalf("deleted promotion should not be found")
	}
}

func TestPromotionListFilters(t *testing.T) {
	db := openTestDB(t, &models.Promotion{}, &models.PromotionGift{})
	repo := NewPromotionRepository(db)

	for i := 0; i < 3; i++ {
		p := &models.Promotion{
			Name:          fmt.Sprintf("direct %d", i),
			Kind:          "direct",
			ScopeType:     "all",
			ActionType:    "percent",
			ThresholdUnit: "amount",
			Value:         money("10"),
			IsActive:      true,
			Priority:      i,
		}
		if err := repo.Create(p); err != nil {
			t.Fatalf("create promotion failed: %v", err)
		}
	}
	if err := repo.Create(newGiftPromotion("summer gift", 0, models.PromotionGift{SKUID: 1, UnitCost: money("1")})); err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}

	rows, total, err := repo.List(PromotionListFilter{Kind: "direct", Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(rows) != 2 {
		t.Fatalf("expected total 3 and page of 2, got %d/%d", total, len(rows))
	}
	if rows[0].Priority != 2 {
		t.Fatalf("list should order by priority desc, got %d", rows[0].Priority)
	}

	rows, total, err = repo.List(PromotionListFilter{Search: "summer"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || rows[0].Name != "summer gift" || len(rows[0].Gifts) != 1 {
		t.Fatalf("unexpected search result: total=%d rows=%+v", total, rows)
	}
}
