package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

type MenuRepository interface {
	Create(ctx context.Context, item *model.MenuItem) error
	Update(ctx context.Context, item *model.MenuItem) error
	GetByID(ctx context.Context, id string) (*model.MenuItem, error)
	List(ctx context.Context, availableOnly bool) ([]model.MenuItem, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]model.MenuItem, error)
}

type PostgresMenuRepository struct {
	db *sql.DB
}

func NewPostgresMenuRepository(db *sql.DB) *PostgresMenuRepository {
	return &PostgresMenuRepository{db: db}
}

const menuColumns = `id, name, description, price_cents, unit, category, dietary_tags, image_url, available, created_at, updated_at`

func (r *PostgresMenuRepository) Create(ctx context.Context, item *model.MenuItem) error {
	query := `INSERT INTO menu_items (` + menuColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.Name, item.Description, item.PriceCents, item.Unit,
		item.Category, pq.Array(item.DietaryTags), item.ImageURL,
		item.Available, item.CreatedAt, item.UpdatedAt)
	return err
}

func (r *PostgresMenuRepository) Update(ctx context.Context, item *model.MenuItem) error {
	query := `UPDATE menu_items
		SET name = $2, description = $3, price_cents = $4, unit = $5,
		    category = $6, dietary_tags = $7, image_url = $8,
		    available = $9, updated_at = $10
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		item.ID, item.Name, item.Description, item.PriceCents, item.Unit,
		item.Category, pq.Array(item.DietaryTags), item.ImageURL,
		item.Available, item.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresMenuRepository) GetByID(ctx context.Context, id string) (*model.MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menu_items WHERE id = $1`
	item, err := scanMenuItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *PostgresMenuRepository) List(ctx context.Context, availableOnly bool) ([]model.MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menu_items`
	if availableOnly {
		query += ` WHERE available`
	}
	query += ` ORDER BY category, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *PostgresMenuRepository) GetByIDs(ctx context.Context, ids []string) (map[string]model.MenuItem, error) {
	if len(ids) == 0 {
		return map[string]model.MenuItem{}, nil
	}
	query := `SELECT ` + menuColumns + ` FROM menu_items WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string]model.MenuItem, len(ids))
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items[item.ID] = *item
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMenuItem(row rowScanner) (*model.MenuItem, error) {
	var item model.MenuItem
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.PriceCents,
		&item.Unit, &item.Category, pq.Array(&item.DietaryTags),
		&item.ImageURL, &item.Available, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
