package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*model.Order, error)
	List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error)
	// UpdateStatus persists order.Status with a compare-and-set on prev;
	// a concurrent writer that already moved the order off prev gets
	// ErrStatusConflict.
	UpdateStatus(ctx context.Context, order *model.Order, prev model.OrderStatus) error
}

type PostgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

const orderColumns = `id, customer_id, customer_name, customer_email, customer_phone,
	fulfillment, address, lat, lon, lines,
	subtotal_cents, discount_cents, tax_cents, service_fee_cents,
	delivery_fee_cents, tip_cents, total_cents,
	promo_code, stars_redeemed, payment_intent_id, idempotency_key,
	status, created_at, updated_at`

func (r *PostgresOrderRepository) Create(ctx context.Context, order *model.Order) error {
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return err
	}

	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24)`
	_, err = r.db.ExecContext(ctx, query,
		order.ID, order.CustomerID, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
		order.Fulfillment, order.Address, order.Lat, order.Lon, lines,
		order.Totals.SubtotalCents, order.Totals.DiscountCents, order.Totals.TaxCents,
		order.Totals.ServiceFeeCents, order.Totals.DeliveryFeeCents, order.Totals.TipCents,
		order.Totals.TotalCents,
		order.PromoCode, order.StarsRedeemed, order.PaymentIntentID, order.IdempotencyKey,
		order.Status, order.CreatedAt, order.UpdatedAt)
	return err
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *PostgresOrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)
}

func (r *PostgresOrderRepository) GetByPaymentIntent(ctx context.Context, intentID string) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1`, intentID)
}

func (r *PostgresOrderRepository) getOne(ctx context.Context, query string, arg any) (*model.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *PostgresOrderRepository) List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	if status != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// UpdateStatus persists only the status and updated_at of an order.
// The status predicate makes the transition atomic: of two concurrent
// writers moving the same order, exactly one wins.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, order *model.Order, prev model.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, order.ID, order.Status, order.UpdatedAt, prev)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the order is missing or someone else moved it first.
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, order.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		order model.Order
		lines []byte
	)
	err := row.Scan(&order.ID, &order.CustomerID, &order.CustomerName,
		&order.CustomerEmail, &order.CustomerPhone,
		&order.Fulfillment, &order.Address, &order.Lat, &order.Lon, &lines,
		&order.Totals.SubtotalCents, &order.Totals.DiscountCents, &order.Totals.TaxCents,
		&order.Totals.ServiceFeeCents, &order.Totals.DeliveryFeeCents, &order.Totals.TipCents,
		&order.Totals.TotalCents,
		&order.PromoCode, &order.StarsRedeemed, &order.PaymentIntentID, &order.IdempotencyKey,
		&order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &order.Lines); err != nil {
			return nil, err
		}
	}
	return &order, nil
}
