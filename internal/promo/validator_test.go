package promo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

type mockRepo struct {
	promos  map[string]*model.PromoCode
	lookups int
}

func (m *mockRepo) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	m.lookups++
	return m.promos[code], nil
}

func (m *mockRepo) ListCodes(ctx context.Context) ([]string, error) {
	codes := make([]string, 0, len(m.promos))
	for c := range m.promos {
		codes = append(codes, c)
	}
	return codes, nil
}

func newRepo(promos ...*model.PromoCode) *mockRepo {
	m := &mockRepo{promos: make(map[string]*model.PromoCode)}
	for _, p := range promos {
		m.promos[p.Code] = p
	}
	return m
}

func loadedValidator(t *testing.T, repo *mockRepo) *Validator {
	t.Helper()
	v := NewValidator(repo)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return v
}

func TestValidatePercent(t *testing.T) {
	repo := newRepo(&model.PromoCode{Code: "SAVE10", Kind: model.DiscountPercent, Value: 10, Active: true})
	v := loadedValidator(t, repo)

	discount, err := v.Validate(context.Background(), "SAVE10", 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if discount != 200 {
		t.Errorf("expected discount 200, got %d", discount)
	}
}

func TestValidateFixedClamped(t *testing.T) {
	repo := newRepo(&model.PromoCode{Code: "FIVE", Kind: model.DiscountFixed, Value: 500, Active: true})
	v := loadedValidator(t, repo)

	discount, err := v.Validate(context.Background(), "FIVE", 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if discount != 300 {
		t.Errorf("expected discount clamped to subtotal, got %d", discount)
	}
}

func TestValidateUnknownSkipsLookup(t *testing.T) {
	repo := newRepo(&model.PromoCode{Code: "REAL", Kind: model.DiscountFixed, Value: 100, Active: true})
	v := loadedValidator(t, repo)

	_, err := v.Validate(context.Background(), "NOPE", 1000)
	if !errors.Is(err, ErrUnknownCode) {
		t.Fatalf("expected ErrUnknownCode, got %v", err)
	}
	if repo.lookups != 0 {
		t.Errorf("expected prefilter to short-circuit, got %d lookups", repo.lookups)
	}
}

func TestValidateInactive(t *testing.T) {
	repo := newRepo(&model.PromoCode{Code: "OLD", Kind: model.DiscountFixed, Value: 100, Active: false})
	v := loadedValidator(t, repo)
	// Inactive codes are not in the prefilter either, but a direct
	// repo hit must still reject them.
	v.filter.AddString("OLD")

	_, err := v.Validate(context.Background(), "OLD", 1000)
	if !errors.Is(err, ErrInactive) {
		t.Errorf("expected ErrInactive, got %v", err)
	}
}

func TestValidateExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	repo := newRepo(&model.PromoCode{Code: "GONE", Kind: model.DiscountFixed, Value: 100, ExpiresAt: &past, Active: true})
	v := loadedValidator(t, repo)

	_, err := v.Validate(context.Background(), "GONE", 1000)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestValidateMinSubtotal(t *testing.T) {
	repo := newRepo(&model.PromoCode{Code: "BIG", Kind: model.DiscountPercent, Value: 20, MinSubtotalCents: 5000, Active: true})
	v := loadedValidator(t, repo)

	if _, err := v.Validate(context.Background(), "BIG", 4999); !errors.Is(err, ErrMinSubtotal) {
		t.Errorf("expected ErrMinSubtotal, got %v", err)
	}
	if _, err := v.Validate(context.Background(), "BIG", 5000); err != nil {
		t.Errorf("expected success at the minimum, got %v", err)
	}
}

func TestValidateWithoutLoad(t *testing.T) {
	repo := newRepo(&model.PromoCode{Code: "SAVE10", Kind: model.DiscountPercent, Value: 10, Active: true})
	v := NewValidator(repo)

	// No prefilter yet: validation must still work off the repository.
	discount, err := v.Validate(context.Background(), "SAVE10", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if discount != 100 {
		t.Errorf("expected discount 100, got %d", discount)
	}
}
