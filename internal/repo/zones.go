package repo

import (
	"context"
	"database/sql"

	"github.com/sfdify01/template-yoga-studio-web-sub001/internal/model"
)

type ZoneRepository interface {
	List(ctx context.Context) ([]model.DeliveryZone, error)
	Create(ctx context.Context, zone *model.DeliveryZone) error
	Delete(ctx context.Context, id string) error
}

type PostgresZoneRepository struct {
	db *sql.DB
}

func NewPostgresZoneRepository(db *sql.DB) *PostgresZoneRepository {
	return &PostgresZoneRepository{db: db}
}

func (r *PostgresZoneRepository) List(ctx context.Context) ([]model.DeliveryZone, error) {
	query := `SELECT id, name, radius_km, fee_cents, eta_minutes
		FROM delivery_zones ORDER BY radius_km`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []model.DeliveryZone
	for rows.Next() {
		var z model.DeliveryZone
		if err := rows.Scan(&z.ID, &z.Name, &z.RadiusKm, &z.FeeCents, &z.ETAMinutes); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func (r *PostgresZoneRepository) Create(ctx context.Context, zone *model.DeliveryZone) error {
	query := `INSERT INTO delivery_zones (id, name, radius_km, fee_cents, eta_minutes)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, zone.ID, zone.Name, zone.RadiusKm, zone.FeeCents, zone.ETAMinutes)
	return err
}

func (r *PostgresZoneRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM delivery_zones WHERE id = $1`, id)
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
