package promo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/shopspring/decimal"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

var (
	ErrUnknownCode = errors.New("promo code is not valid")
	ErrInactive    = errors.New("promo code is no longer active")
	ErrExpired     = errors.New("promo code has expired")
	ErrMinSubtotal = errors.New("cart subtotal is below the promo minimum")
)

const bloomFalsePositiveRate = 0.001

// Repository is the slice of promo storage the validator needs.
type Repository interface {
	GetByCode(ctx context.Context, code string) (*model.PromoCode, error)
	ListCodes(ctx context.Context) ([]string, error)
}

// Validator answers "is this code good for this cart". A bloom filter
// over the known code set rejects almost all junk input without a
// database round trip; hits still go to the repository, so a false
// positive only costs one lookup.
type Validator struct {
	repo   Repository
	mu     sync.RWMutex
	filter *bloom.BloomFilter
	now    func() time.Time
}

func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo, now: time.Now}
}

// Load rebuilds the prefilter from the stored code set. Call at boot
// and after admin writes to promo codes.
func (v *Validator) Load(ctx context.Context) error {
	codes, err := v.repo.ListCodes(ctx)
	if err != nil {
		return err
	}

	n := uint(len(codes))
	if n == 0 {
		n = 1
	}
	filter := bloom.NewWithEstimates(n, bloomFalsePositiveRate)
	for _, code := range codes {
		filter.AddString(code)
	}

	v.mu.Lock()
	v.filter = filter
	v.mu.Unlock()
	return nil
}

// Validate resolves a code against the current cart subtotal and
// returns the discount it grants.
func (v *Validator) Validate(ctx context.Context, code string, subtotalCents int64) (int64, error) {
	v.mu.RLock()
	filter := v.filter
	v.mu.RUnlock()

	if filter != nil && !filter.TestString(code) {
		return 0, ErrUnknownCode
	}

	promo, err := v.repo.GetByCode(ctx, code)
	if err != nil {
		return 0, err
	}
	if promo == nil {
		return 0, ErrUnknownCode
	}
	if !promo.Active {
		return 0, ErrInactive
	}
	if promo.Expired(v.now()) {
		return 0, ErrExpired
	}
	if subtotalCents < promo.MinSubtotalCents {
		return 0, ErrMinSubtotal
	}

	return Discount(promo, subtotalCents), nil
}

// Discount computes the cents a code takes off the given subtotal,
// clamped so the result never exceeds the subtotal.
func Discount(p *model.PromoCode, subtotalCents int64) int64 {
	var d int64
	switch p.Kind {
	case model.DiscountPercent:
		d = decimal.NewFromInt(subtotalCents).
			Mul(decimal.NewFromInt(p.Value)).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	case model.DiscountFixed:
		d = p.Value
	}
	if d > subtotalCents {
		d = subtotalCents
	}
	if d < 0 {
		d = 0
	}
	return d
}
