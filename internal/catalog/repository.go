package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists catalog entries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a catalog repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertBatch writes entries, overwriting names for existing codes.
func (r *Repository) UpsertBatch(ctx context.Context, entries []Entry) error {
	query := `
		INSERT INTO product_catalog (codigo, nombre, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (codigo) DO UPDATE SET
			nombre = EXCLUDED.nombre,
			updated_at = now()
	`

	for _, e := range entries {
		if _, err := r.pool.Exec(ctx, query, e.Codigo, e.Nombre); err != nil {
			return err
		}
	}
	return nil
}

// List retrieves all catalog entries.
func (r *Repository) List(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT codigo, nombre
		FROM product_catalog
		ORDER BY codigo ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Codigo, &e.Nombre); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
