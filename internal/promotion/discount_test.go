package promotion

import (
	"errors"
	"testing"
)

func repeatableRule(min, value string, capCount *int) Rule {
	rule := cartRule(1, UnitAmount, min, Action{Type: ActionFixedAmount, Value: dec(value)})
	rule.IsRepeatable = true
	rule.MaxRepeatCount = capCount
	return rule
}

func TestComputeDiscountRepeatable(t *testing.T) {
	engine := New()
	rule := repeatableRule("1000", "100", nil)

	discount, err := engine.ComputeDiscount(rule, dec("5000"), nil)
	if err != nil {
		t.Fatalf("compute discount failed: %v", err)
	}
	if !discount.Equal(dec("500")) {
		t.Fatalf("expected 500, got %s", discount)
	}

	discount, err = engine.ComputeDiscount(rule, dec("1999.99"), nil)
	if err != nil {
		t.Fatalf("compute discount failed: %v", err)
	}
	if !discount.Equal(dec("100")) {
		t.Fatalf("expected floor to 1 repeat, got %s", discount)
	}
}

func TestComputeDiscountRepeatableCap(t *testing.T) {
	engine := New()
	rule := repeatableRule("1000", "100", intPtr(3))
	discount, err := engine.ComputeDiscount(rule, dec("10000"), nil)
	if err != nil {
		t.Fatalf("compute discount failed: %v", err)
	}
	if !discount.Equal(dec("300")) {
		t.Fatalf("expected capped discount 300, got %s", discount)
	}
}

func TestComputeDiscountNonRepeatableFixed(t *testing.T) {
	engine := New()
	rule := cartRule(1, UnitAmount, "1000", Action{Type: ActionFixedAmount, Value: dec("100")})
	discount, err := engine.ComputeDiscount(rule, dec("9000"), nil)
	if err != nil {
		t.Fatalf("compute discount failed: %v", err)
	}
	if !discount.Equal(dec("100")) {
		t.Fatalf("expected flat 100, got %s", discount)
	}
}

func TestComputeDiscountPercentRounding(t *testing.T) {
	engine := New()
	rule := cartRule(1, UnitAmount, "0", Action{Type: ActionPercent, Value: dec("15")})
	// 33.33 * 15% = 4.9995
	discount, err := engine.ComputeDiscount(rule, dec("33.33"), nil)
	if err != nil {
		t.Fatalf("compute discount failed: %v", err)
	}
	if !discount.Equal(dec("5")) {
		t.Fatalf("expected half-up rounding to 5.00, got %s", discount)
	}

	scaled := New(WithCurrencyScale(0))
	discount, err = scaled.ComputeDiscount(rule, dec("10"), nil)
	if err != nil {
		t.Fatalf("compute discount failed: %v", err)
	}
	if !discount.Equal(dec("2")) {
		t.Fatalf("expected 1.5 rounded to 2 at scale 0, got %s", discount)
	}
}

func TestComputeDiscountPercentQuantityUnitUsesAmount(t *testing.T) {
	engine := New()
	rule := cartRule(1, UnitQuantity, "3", Action{Type: ActionPercent, Value: dec("10")})
	lines := []CartLine{line(1, 1, "300"), line(2, 1, "300"), line(3, 1, "300")}
	q := Qualify(rule, lines, testNow)
	if !q.IsQualified {
		t.Fatalf("3 units should qualify")
	}
	discount, err := engine.ComputeDiscount(rule, q.QualifyingTotal, lines)
	if err != nil {
		t.Fatalf("compute discount failed: %v", err)
	}
	if !discount.Equal(dec("90")) {
		t.Fatalf("expected 90, got %s", discount)
	}
}

func TestComputeDiscountConfigErrors(t *testing.T) {
	engine := New()
	rule := repeatableRule("0", "10", nil)
	if _, err := engine.ComputeDiscount(rule, dec("100"), nil); !errors.Is(err, ErrRepeatableThreshold) {
		t.Fatalf("expected repeatable threshold error, got %v", err)
	}
	rule = repeatableRule("2", "10", nil)
	rule.ThresholdUnit = UnitQuantity
	if _, err := engine.ComputeDiscount(rule, dec("4"), nil); !errors.Is(err, ErrRepeatableUnit) {
		t.Fatalf("expected repeatable unit error, got %v", err)
	}
}

func TestComputeDiscountGiftIsZero(t *testing.T) {
	engine := New()
	rule := cartRule(1, UnitAmount, "100", Action{Type: ActionGift})
	discount, err := engine.ComputeDiscount(rule, dec("500"), nil)
	if err != nil || !discount.IsZero() {
		t.Fatalf("gift rule should yield zero discount, got %s %v", discount, err)
	}
}

func TestWholeUnitCurrencyRounding(t *testing.T) {
	engine := New(WithCurrencyScale(0))

	// 905 * 10% = 90.5，整数币种四舍五入为 91
	rule := cartRule(1, UnitAmount, "100", Action{Type: ActionPercent, Value: dec("10")})
	discount, err := engine.ComputeDiscount(rule, dec("905"), nil)
	if err != nil {
		t.Fatalf("compute discount failed: %v", err)
	}
	if !discount.Equal(dec("91")) {
		t.Fatalf("expected 91, got %s", discount)
	}

	// 999 * (100-15)% = 849.15
	set := PrepareDirectRules([]Rule{
		directRule(2, 0, Scope{Type: ScopeAll}, Action{Type: ActionPercent, Value: dec("15")}),
	}, testNow)
	price := engine.PriceFor(Item{ProductID: 1}, dec("999"), set)
	if !price.FinalPrice.Equal(dec("849")) {
		t.Fatalf("expected 849, got %s", price.FinalPrice)
	}
}
