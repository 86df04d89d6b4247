package production

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ThresholdRepository reads the per-zone alert bounds. The rows are owned
// by the administrative surface; this service never writes them.
type ThresholdRepository struct {
	pool *pgxpool.Pool
}

// NewThresholdRepository creates a new threshold repository.
func NewThresholdRepository(pool *pgxpool.Pool) *ThresholdRepository {
	return &ThresholdRepository{pool: pool}
}

// List retrieves all thresholds.
func (r *ThresholdRepository) List(ctx context.Context) ([]AlertThreshold, error) {
	query := `
		SELECT zone_name, min_quantity, max_quantity, enabled
		FROM alert_thresholds
		ORDER BY zone_name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var thresholds []AlertThreshold
	for rows.Next() {
		var t AlertThreshold
		if err := rows.Scan(&t.ZoneName, &t.MinQuantity, &t.MaxQuantity, &t.Enabled); err != nil {
			return nil, err
		}
		thresholds = append(thresholds, t)
	}
	return thresholds, rows.Err()
}

// ListEnabled retrieves only thresholds with the enabled flag set.
func (r *ThresholdRepository) ListEnabled(ctx context.Context) ([]AlertThreshold, error) {
	query := `
		SELECT zone_name, min_quantity, max_quantity, enabled
		FROM alert_thresholds
		WHERE enabled
		ORDER BY zone_name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var thresholds []AlertThreshold
	for rows.Next() {
		var t AlertThreshold
		if err := rows.Scan(&t.ZoneName, &t.MinQuantity, &t.MaxQuantity, &t.Enabled); err != nil {
			return nil, err
		}
		thresholds = append(thresholds, t)
	}
	return thresholds, rows.Err()
}
