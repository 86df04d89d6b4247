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

// SnapshotRepository persists the raw daily snapshots.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// GetByDate retrieves the snapshot for a date. Returns (nil, nil) when no
// row exists for that date.
func (r *SnapshotRepository) GetByDate(ctx context.Context, fecha string) (*Snapshot, error) {
	query := `
		SELECT fecha, zonas, updated_at
		FROM production_data
		WHERE fecha = $1::date
	`

	var (
		date      time.Time
		zonasJSON []byte
		updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, query, fecha).Scan(&date, &zonasJSON, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var zonas []Zone
	if err := json.Unmarshal(zonasJSON, &zonas); err != nil {
		return nil, fmt.Errorf("unmarshal zonas for %s: %w", fecha, err)
	}

	return &Snapshot{
		Fecha:     date.Format(DateFormat),
		Zonas:     zonas,
		UpdatedAt: updatedAt,
	}, nil
}

// Upsert writes the full zone list for a date. The upsert keeps two
// concurrent first-inserts of the day from failing on the primary key.
func (r *SnapshotRepository) Upsert(ctx context.Context, fecha string, zonas []Zone) (*Snapshot, error) {
	zonasJSON, err := json.Marshal(zonas)
	if err != nil {
		return nil, fmt.Errorf("marshal zonas: %w", err)
	}

	query := `
		INSERT INTO production_data (fecha, zonas, updated_at)
		VALUES ($1::date, $2, now())
		ON CONFLICT (fecha) DO UPDATE SET
			zonas = EXCLUDED.zonas,
			updated_at = now()
		RETURNING fecha, updated_at
	`

	var (
		date      time.Time
		updatedAt time.Time
	)
	if err := r.pool.QueryRow(ctx, query, fecha, zonasJSON).Scan(&date, &updatedAt); err != nil {
		return nil, err
	}

	return &Snapshot{
		Fecha:     date.Format(DateFormat),
		Zonas:     zonas,
		UpdatedAt: updatedAt,
	}, nil
}
