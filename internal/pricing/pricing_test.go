package pricing

import (
	"errors"
	"testing"

	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

func line(price int64, qty float64, unit model.Unit, mods ...model.Modifier) model.CartLine {
	return model.CartLine{
		ItemID:         "item",
		Name:           "Item",
		UnitPriceCents: price,
		Unit:           unit,
		Quantity:       qty,
		Modifiers:      mods,
	}
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name    string
		line    model.CartLine
		want    int64
		wantErr bool
	}{
		{name: "simple", line: line(500, 2, model.UnitEach), want: 1000},
		{name: "with modifiers", line: line(500, 2, model.UnitEach, model.Modifier{Name: "extra", PriceCents: 75}), want: 1150},
		{name: "fractional weight", line: line(899, 1.5, model.UnitPound), want: 1349},
		{name: "fractional weight rounds", line: line(333, 0.5, model.UnitPound), want: 167},
		{name: "fractional each rejected", line: line(500, 1.5, model.UnitEach), wantErr: true},
		{name: "zero quantity rejected", line: line(500, 0, model.UnitEach), wantErr: true},
		{name: "negative modifier below zero", line: line(100, 1, model.UnitEach, model.Modifier{Name: "off", PriceCents: -200}), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LineTotal(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestComputeComposition(t *testing.T) {
	p := Params{TaxRate: 0.10, ServiceFeeCents: 100, ServiceFeePct: 0.05}

	totals, err := Compute(p, Input{
		Lines:            []model.CartLine{line(1000, 2, model.UnitEach)},
		DiscountCents:    500,
		DeliveryFeeCents: 399,
		Tip:              Tip{Kind: TipFixed, Value: 300},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if totals.SubtotalCents != 2000 {
		t.Errorf("subtotal: expected 2000, got %d", totals.SubtotalCents)
	}
	if totals.DiscountCents != 500 {
		t.Errorf("discount: expected 500, got %d", totals.DiscountCents)
	}
	// tax on the discounted base: (2000-500)*0.10
	if totals.TaxCents != 150 {
		t.Errorf("tax: expected 150, got %d", totals.TaxCents)
	}
	// flat 100 + 5% of subtotal
	if totals.ServiceFeeCents != 200 {
		t.Errorf("service fee: expected 200, got %d", totals.ServiceFeeCents)
	}
	if totals.DeliveryFeeCents != 399 {
		t.Errorf("delivery fee: expected 399, got %d", totals.DeliveryFeeCents)
	}
	if totals.TipCents != 300 {
		t.Errorf("tip: expected 300, got %d", totals.TipCents)
	}

	sum := totals.SubtotalCents - totals.DiscountCents + totals.TaxCents +
		totals.ServiceFeeCents + totals.DeliveryFeeCents + totals.TipCents
	if totals.TotalCents != sum {
		t.Errorf("total %d does not equal sum of parts %d", totals.TotalCents, sum)
	}
}

func TestComputeDiscountClamped(t *testing.T) {
	totals, err := Compute(Params{}, Input{
		Lines:         []model.CartLine{line(500, 1, model.UnitEach)},
		DiscountCents: 10000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.DiscountCents != 500 {
		t.Errorf("expected discount clamped to 500, got %d", totals.DiscountCents)
	}
	if totals.TotalCents != 0 {
		t.Errorf("expected total 0, got %d", totals.TotalCents)
	}
}

func TestComputePercentTip(t *testing.T) {
	totals, err := Compute(Params{}, Input{
		Lines: []model.CartLine{line(1999, 1, model.UnitEach)},
		Tip:   Tip{Kind: TipPercent, Value: 15},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 15% of 1999 = 299.85, rounds to 300
	if totals.TipCents != 300 {
		t.Errorf("expected tip 300, got %d", totals.TipCents)
	}
}

func TestComputeTipValidation(t *testing.T) {
	lines := []model.CartLine{line(1000, 1, model.UnitEach)}

	if _, err := Compute(Params{}, Input{Lines: lines, Tip: Tip{Kind: TipPercent, Value: 150}}); err == nil {
		t.Error("expected error for tip percent over 100")
	}
	if _, err := Compute(Params{}, Input{Lines: lines, Tip: Tip{Kind: TipFixed, Value: -5}}); err == nil {
		t.Error("expected error for negative fixed tip")
	}
	if _, err := Compute(Params{}, Input{Lines: lines, Tip: Tip{Kind: "weird"}}); err == nil {
		t.Error("expected error for unknown tip kind")
	}
}

func TestComputeEmptyCart(t *testing.T) {
	_, err := Compute(Params{}, Input{})
	if !errors.Is(err, ErrNoLines) {
		t.Errorf("expected ErrNoLines, got %v", err)
	}
}

func TestComputeStable(t *testing.T) {
	p := Params{TaxRate: 0.0875, ServiceFeePct: 0.033}
	in := Input{
		Lines: []model.CartLine{line(1234, 3, model.UnitEach), line(777, 1.25, model.UnitPound)},
		Tip:   Tip{Kind: TipPercent, Value: 18},
	}

	first, err := Compute(p, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Compute(p, in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("quote not stable: %+v vs %+v", again, first)
		}
	}
}
