package promotion

import (
	"errors"
	"testing"
)

func giftRule(min string, capCount *int, pool ...GiftPoolEntry) Rule {
	rule := cartRule(1, UnitAmount, min, Action{Type: ActionGift})
	rule.MaxRepeatCount = capCount
	rule.GiftPool = pool
	return rule
}

func TestGiftOptionsIndependentAffordability(t *testing.T) {
	rule := giftRule("100", nil,
		GiftPoolEntry{VariantID: 11, UnitCost: dec("30")},
		GiftPoolEntry{VariantID: 12, UnitCost: dec("50")},
		GiftPoolEntry{VariantID: 13, UnitCost: dec("200")},
	)
	options := GiftOptions(rule, dec("100"), nil)
	want := map[uint]int{11: 3, 12: 2, 13: 0}
	if len(options) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(options))
	}
	for _, option := range options {
		if option.AffordableCount != want[option.VariantID] {
			t.Fatalf("variant %d: want %d, got %d", option.VariantID, want[option.VariantID], option.AffordableCount)
		}
		if option.Available != (option.AffordableCount > 0) {
			t.Fatalf("variant %d: availability mismatch", option.VariantID)
		}
	}
}

func TestGiftOptionsCapAndStock(t *testing.T) {
	rule := giftRule("100", intPtr(2),
		GiftPoolEntry{VariantID: 11, UnitCost: dec("10")},
		GiftPoolEntry{VariantID: 12, UnitCost: dec("10")},
	)
	options := GiftOptions(rule, dec("100"), GiftStock{12: 1})
	if options[0].AffordableCount != 2 {
		t.Fatalf("expected cap 2, got %d", options[0].AffordableCount)
	}
	if options[1].AffordableCount != 1 {
		t.Fatalf("expected stock limit 1, got %d", options[1].AffordableCount)
	}

	options = GiftOptions(rule, dec("100"), GiftStock{11: 0})
	if options[0].Available {
		t.Fatalf("out-of-stock gift should be unavailable")
	}
}

func TestValidateGiftSelection(t *testing.T) {
	rule := giftRule("100", intPtr(3),
		GiftPoolEntry{VariantID: 11, UnitCost: dec("40")},
		GiftPoolEntry{VariantID: 12, UnitCost: dec("60")},
	)
	result := AppliedPromotion{
		RuleID:       rule.ID,
		ActionType:   ActionGift,
		IsQualified:  true,
		MaxGiftCount: rule.MaxRepeatCount,
		GiftOptions:  GiftOptions(rule, dec("120"), nil),
	}

	// 每个赠品独立计算额度，合计成本超出 allowance 也允许
	if err := ValidateGiftSelection(result, []GiftSelection{{VariantID: 11, Quantity: 2}, {VariantID: 12, Quantity: 1}}); err != nil {
		t.Fatalf("expected selection to pass, got %v", err)
	}

	tests := []struct {
		name       string
		selections []GiftSelection
		want       error
	}{
		{name: "not in pool", selections: []GiftSelection{{VariantID: 99, Quantity: 1}}, want: ErrGiftNotInPool},
		{name: "over affordable", selections: []GiftSelection{{VariantID: 12, Quantity: 3}}, want: ErrGiftQuantityExceeded},
		{name: "split over affordable", selections: []GiftSelection{{VariantID: 12, Quantity: 1}, {VariantID: 12, Quantity: 2}}, want: ErrGiftQuantityExceeded},
		{name: "over cap", selections: []GiftSelection{{VariantID: 11, Quantity: 3}, {VariantID: 12, Quantity: 1}}, want: ErrGiftCountCapExceeded},
		{name: "zero quantity", selections: []GiftSelection{{VariantID: 11, Quantity: 0}}, want: ErrGiftSelectionQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateGiftSelection(result, tt.selections); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	result.IsQualified = false
	if err := ValidateGiftSelection(result, []GiftSelection{{VariantID: 11, Quantity: 1}}); !errors.Is(err, ErrGiftRuleNotQualified) {
		t.Fatalf("expected not qualified error, got %v", err)
	}
	result.ActionType = ActionPercent
	if err := ValidateGiftSelection(result, nil); !errors.Is(err, ErrGiftSelectionNotGift) {
		t.Fatalf("expected not gift error, got %v", err)
	}
}
