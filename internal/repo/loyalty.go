package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

type LoyaltyRepository interface {
	GetAccount(ctx context.Context, customerID string) (*model.LoyaltyAccount, error)
	GetByReferralCode(ctx context.Context, code string) (*model.LoyaltyAccount, error)
	CreateAccount(ctx context.Context, account *model.LoyaltyAccount) error
	// Adjust applies a balance delta and appends the ledger event in one
	// transaction. Debits that would push the balance negative fail with
	// ErrInsufficientStars.
	Adjust(ctx context.Context, event *model.LoyaltyEvent, delta int64) error
	// MarkReferralCredited flips the credited flag; returns false when it
	// was already set, so a referral bonus is paid at most once.
	MarkReferralCredited(ctx context.Context, customerID string) (bool, error)
	ListEvents(ctx context.Context, customerID string) ([]model.LoyaltyEvent, error)
}

type PostgresLoyaltyRepository struct {
	db *sql.DB
}

func NewPostgresLoyaltyRepository(db *sql.DB) *PostgresLoyaltyRepository {
	return &PostgresLoyaltyRepository{db: db}
}

const loyaltyColumns = `customer_id, balance, referral_code, referred_by, referral_credited, created_at`

func (r *PostgresLoyaltyRepository) GetAccount(ctx context.Context, customerID string) (*model.LoyaltyAccount, error) {
	query := `SELECT ` + loyaltyColumns + ` FROM loyalty_accounts WHERE customer_id = $1`
	return r.getOne(ctx, query, customerID)
}

func (r *PostgresLoyaltyRepository) GetByReferralCode(ctx context.Context, code string) (*model.LoyaltyAccount, error) {
	query := `SELECT ` + loyaltyColumns + ` FROM loyalty_accounts WHERE referral_code = $1`
	return r.getOne(ctx, query, code)
}

func (r *PostgresLoyaltyRepository) getOne(ctx context.Context, query string, arg any) (*model.LoyaltyAccount, error) {
	var a model.LoyaltyAccount
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&a.CustomerID, &a.Balance,
		&a.ReferralCode, &a.ReferredBy, &a.ReferralCredited, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PostgresLoyaltyRepository) CreateAccount(ctx context.Context, account *model.LoyaltyAccount) error {
	query := `INSERT INTO loyalty_accounts (` + loyaltyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, account.CustomerID, account.Balance,
		account.ReferralCode, account.ReferredBy, account.ReferralCredited, account.CreatedAt)
	return err
}

func (r *PostgresLoyaltyRepository) Adjust(ctx context.Context, event *model.LoyaltyEvent, delta int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE loyalty_accounts SET balance = balance + $2
		 WHERE customer_id = $1 AND balance + $2 >= 0`,
		event.CustomerID, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the account is missing or the debit exceeds the balance.
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM loyalty_accounts WHERE customer_id = $1)`,
			event.CustomerID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInsufficientStars
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO loyalty_events (id, customer_id, kind, stars, order_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.CustomerID, event.Kind, event.Stars, event.OrderID, event.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresLoyaltyRepository) MarkReferralCredited(ctx context.Context, customerID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE loyalty_accounts SET referral_credited = TRUE
		 WHERE customer_id = $1 AND NOT referral_credited`,
		customerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresLoyaltyRepository) ListEvents(ctx context.Context, customerID string) ([]model.LoyaltyEvent, error) {
	query := `SELECT id, customer_id, kind, stars, order_id, created_at
		FROM loyalty_events WHERE customer_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.LoyaltyEvent
	for rows.Next() {
		var e model.LoyaltyEvent
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Kind, &e.Stars, &e.OrderID, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
