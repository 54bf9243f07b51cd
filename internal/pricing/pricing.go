package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

var (
	ErrNoLines            = errors.New("cart must contain at least one line")
	ErrFractionalQuantity = errors.New("fractional quantity on a unit-priced item")
)

type TipKind string

const (
	TipNone    TipKind = ""
	TipPercent TipKind = "percent"
	TipFixed   TipKind = "fixed"
)

type Tip struct {
	Kind TipKind `json:"kind"`
	// Value is whole percent for percent tips, cents for fixed tips.
	Value int64 `json:"value"`
}

// Params are the store-level rates applied to every quote.
type Params struct {
	TaxRate         float64
	ServiceFeeCents int64
	ServiceFeePct   float64
}

// Input is one quote request: priced lines plus the already-resolved
// discount and delivery fee.
type Input struct {
	Lines            []model.CartLine
	DiscountCents    int64
	DeliveryFeeCents int64
	Tip              Tip
}

// LineTotal prices a single cart line: (unit price + modifier deltas)
// times quantity, rounded half-up to a cent. Fractional quantities are
// legal only for weight-priced units.
func LineTotal(line model.CartLine) (int64, error) {
	if line.Quantity <= 0 {
		return 0, fmt.Errorf("line %q: quantity must be positive", line.ItemID)
	}
	if line.Quantity != float64(int64(line.Quantity)) && !line.Unit.AllowsFractional() {
		return 0, fmt.Errorf("line %q: %w", line.ItemID, ErrFractionalQuantity)
	}

	unit := decimal.NewFromInt(line.UnitPriceCents)
	for _, m := range line.Modifiers {
		unit = unit.Add(decimal.NewFromInt(m.PriceCents))
	}
	if unit.IsNegative() {
		return 0, fmt.Errorf("line %q: modifiers drive price below zero", line.ItemID)
	}

	total := unit.Mul(decimal.NewFromFloat(line.Quantity))
	return total.Round(0).IntPart(), nil
}

// Subtotal sums the line totals.
func Subtotal(lines []model.CartLine) (int64, error) {
	var sum int64
	for _, line := range lines {
		lt, err := LineTotal(line)
		if err != nil {
			return 0, err
		}
		sum += lt
	}
	return sum, nil
}

// Compute produces the full totals breakdown. Composition order:
// subtotal, discount (clamped to subtotal), tax on the discounted base,
// service fee (flat + percent of subtotal), delivery fee, tip.
func Compute(p Params, in Input) (model.Totals, error) {
	if len(in.Lines) == 0 {
		return model.Totals{}, ErrNoLines
	}

	subtotal, err := Subtotal(in.Lines)
	if err != nil {
		return model.Totals{}, err
	}

	discount := in.DiscountCents
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	taxable := subtotal - discount
	tax := pctOf(taxable, p.TaxRate)

	serviceFee := p.ServiceFeeCents + pctOf(subtotal, p.ServiceFeePct)

	delivery := in.DeliveryFeeCents
	if delivery < 0 {
		delivery = 0
	}

	tip, err := tipAmount(in.Tip, subtotal)
	if err != nil {
		return model.Totals{}, err
	}

	return model.Totals{
		SubtotalCents:    subtotal,
		DiscountCents:    discount,
		TaxCents:         tax,
		ServiceFeeCents:  serviceFee,
		DeliveryFeeCents: delivery,
		TipCents:         tip,
		TotalCents:       taxable + tax + serviceFee + delivery + tip,
	}, nil
}

func tipAmount(tip Tip, subtotalCents int64) (int64, error) {
	switch tip.Kind {
	case TipNone:
		return 0, nil
	case TipFixed:
		if tip.Value < 0 {
			return 0, fmt.Errorf("tip must not be negative")
		}
		return tip.Value, nil
	case TipPercent:
		if tip.Value < 0 || tip.Value > 100 {
			return 0, fmt.Errorf("tip percent must be in [0,100], got %d", tip.Value)
		}
		return pctOf(subtotalCents, float64(tip.Value)/100), nil
	default:
		return 0, fmt.Errorf("unknown tip kind %q", tip.Kind)
	}
}

// pctOf rounds half-up to a cent so repeated quotes of the same cart
// are stable.
func pctOf(cents int64, rate float64) int64 {
	if rate == 0 || cents == 0 {
		return 0
	}
	return decimal.NewFromInt(cents).
		Mul(decimal.NewFromFloat(rate)).
		Round(0).
		IntPart()
}
