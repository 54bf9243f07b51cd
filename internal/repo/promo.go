package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

type PromoRepository interface {
	GetByCode(ctx context.Context, code string) (*model.PromoCode, error)
	ListCodes(ctx context.Context) ([]string, error)
	Create(ctx context.Context, promo *model.PromoCode) error
}

type PostgresPromoRepository struct {
	db *sql.DB
}

func NewPostgresPromoRepository(db *sql.DB) *PostgresPromoRepository {
	return &PostgresPromoRepository{db: db}
}

func (r *PostgresPromoRepository) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	query := `SELECT code, kind, value, min_subtotal_cents, expires_at, active
		FROM promo_codes WHERE code = $1`

	var p model.PromoCode
	err := r.db.QueryRowContext(ctx, query, code).
		Scan(&p.Code, &p.Kind, &p.Value, &p.MinSubtotalCents, &p.ExpiresAt, &p.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresPromoRepository) ListCodes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code FROM promo_codes WHERE active`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (r *PostgresPromoRepository) Create(ctx context.Context, promo *model.PromoCode) error {
	query := `INSERT INTO promo_codes (code, kind, value, min_subtotal_cents, expires_at, active)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		promo.Code, promo.Kind, promo.Value, promo.MinSubtotalCents, promo.ExpiresAt, promo.Active)
	return err
}
