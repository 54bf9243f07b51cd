package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

type CustomerRepository interface {
	UpsertByEmail(ctx context.Context, name, email, phone string) (*model.Customer, error)
	GetByID(ctx context.Context, id string) (*model.Customer, error)
}

type PostgresCustomerRepository struct {
	db *sql.DB
}

func NewPostgresCustomerRepository(db *sql.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

// UpsertByEmail finds or creates the customer row keyed by email,
// refreshing name and phone from the latest checkout.
func (r *PostgresCustomerRepository) UpsertByEmail(ctx context.Context, name, email, phone string) (*model.Customer, error) {
	query := `INSERT INTO customers (id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET name = $2, phone = $4
		RETURNING id, name, email, phone, created_at`

	var c model.Customer
	err := r.db.QueryRowContext(ctx, query,
		uuid.New().String(), name, email, phone, time.Now()).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	query := `SELECT id, name, email, phone, created_at FROM customers WHERE id = $1`

	var c model.Customer
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
