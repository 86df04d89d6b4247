package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AggregatedRepository persists the aggregated daily snapshots.
type AggregatedRepository struct {
	pool *pgxpool.Pool
}

// NewAggregatedRepository creates a new aggregated snapshot repository.
func NewAggregatedRepository(pool *pgxpool.Pool) *AggregatedRepository {
	return &AggregatedRepository{pool: pool}
}

// GetByDate retrieves the aggregated snapshot for a date. Returns
// (nil, nil) when no row exists.
func (r *AggregatedRepository) GetByDate(ctx context.Context, fecha string) (*AggregatedSnapshot, error) {
	query := `
		SELECT fecha, productos, updated_at
		FROM aggregated_production_data
		WHERE fecha = $1::date
	`

	var (
		date          time.Time
		productosJSON []byte
		updatedAt     time.Time
	)
	err := r.pool.QueryRow(ctx, query, fecha).Scan(&date, &productosJSON, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var productos []AggregatedProduct
	if err := json.Unmarshal(productosJSON, &productos); err != nil {
		return nil, fmt.Errorf("unmarshal productos for %s: %w", fecha, err)
	}

	return &AggregatedSnapshot{
		Fecha:     date.Format(DateFormat),
		Productos: productos,
		UpdatedAt: updatedAt,
	}, nil
}

// Upsert writes the full product list for a date.
func (r *AggregatedRepository) Upsert(ctx context.Context, fecha string, productos []AggregatedProduct) (*AggregatedSnapshot, error) {
	productosJSON, err := json.Marshal(productos)
	if err != nil {
		return nil, fmt.Errorf("marshal productos: %w", err)
	}

	query := `
		INSERT INTO aggregated_production_data (fecha, productos, updated_at)
		VALUES ($1::date, $2, now())
		ON CONFLICT (fecha) DO UPDATE SET
			productos = EXCLUDED.productos,
			updated_at = now()
		RETURNING fecha, updated_at
	`

	var (
		date      time.Time
		updatedAt time.Time
	)
	if err := r.pool.QueryRow(ctx, query, fecha, productosJSON).Scan(&date, &updatedAt); err != nil {
		return nil, err
	}

	return &AggregatedSnapshot{
		Fecha:     date.Format(DateFormat),
		Productos: productos,
		UpdatedAt: updatedAt,
	}, nil
}
