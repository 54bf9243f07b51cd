package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type NewsletterRepository interface {
	Subscribe(ctx context.Context, email string) error
}

type PostgresNewsletterRepository struct {
	db *sql.DB
}

func NewPostgresNewsletterRepository(db *sql.DB) *PostgresNewsletterRepository {
	return &PostgresNewsletterRepository{db: db}
}

// Subscribe is idempotent: resubscribing an existing address is a no-op.
func (r *PostgresNewsletterRepository) Subscribe(ctx context.Context, email string) error {
	query := `INSERT INTO newsletter_subscribers (id, email, subscribed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, uuid.New().String(), email, time.Now())
	return err
}
