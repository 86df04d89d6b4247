package production

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRepository appends and reads the immutable ingestion event log.
// Rows are write-once; nothing here updates or deletes.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// AppendRaw inserts one raw history row.
func (r *HistoryRepository) AppendRaw(ctx context.Context, e HistoryEntry) error {
	query := `
		INSERT INTO production_history (date, zone_name, product_code, quantity, hour)
		VALUES ($1::date, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, e.Date, e.ZoneName, e.ProductCode, e.Quantity, e.Hour)
	return err
}

// AppendAggregated inserts one aggregated history row.
func (r *HistoryRepository) AppendAggregated(ctx context.Context, e AggregatedHistoryEntry) error {
	query := `
		INSERT INTO aggregated_production_history (date, product_name, quantity, hour)
		VALUES ($1::date, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, e.Date, e.ProductName, e.Quantity, e.Hour)
	return err
}

// GetRawRange retrieves raw history rows within a date range, optionally
// filtered by zone. The dashboard's hourly and trend views read from this.
func (r *HistoryRepository) GetRawRange(ctx context.Context, from, to string, zone string) ([]HistoryEntry, error) {
	query := `
		SELECT id, date, zone_name, product_code, quantity, hour, created_at
		FROM production_history
		WHERE date BETWEEN $1::date AND $2::date
		  AND ($3 = '' OR zone_name = $3)
		ORDER BY date ASC, hour ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to, zone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e    HistoryEntry
			date time.Time
		)
		if err := rows.Scan(&e.ID, &date, &e.ZoneName, &e.ProductCode, &e.Quantity, &e.Hour, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Date = date.Format(DateFormat)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetAggregatedRange retrieves aggregated history rows within a date range.
func (r *HistoryRepository) GetAggregatedRange(ctx context.Context, from, to string) ([]AggregatedHistoryEntry, error) {
	query := `
		SELECT id, date, product_name, quantity, hour, created_at
		FROM aggregated_production_history
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date ASC, hour ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AggregatedHistoryEntry
	for rows.Next() {
		var (
			e    AggregatedHistoryEntry
			date time.Time
		)
		if err := rows.Scan(&e.ID, &date, &e.ProductName, &e.Quantity, &e.Hour, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Date = date.Format(DateFormat)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
