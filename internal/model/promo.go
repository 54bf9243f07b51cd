package model

import "time"

type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountFixed   DiscountKind = "fixed"
)

type PromoCode struct {
	Code             string       `json:"code"`
	Kind             DiscountKind `json:"kind"`
	// Value is whole percent for percent codes, cents for fixed codes.
	Value            int64      `json:"value"`
	MinSubtotalCents int64      `json:"min_subtotal_cents"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	Active           bool       `json:"active"`
}

func (p *PromoCode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}
