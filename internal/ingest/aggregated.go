package ingest

import (
	"context"
	"sync"

	"github.com/lactaria/produccion/backend/internal/product"
	"github.com/lactaria/produccion/backend/internal/production"
)

// Sync types reported to the caller.
const (
	SyncTypeFirst  = "first_sync"
	SyncTypeUpdate = "update_sync"
)

// AggregatedSyncResult reports the outcome of an aggregated sync.
type AggregatedSyncResult struct {
	Snapshot      *production.AggregatedSnapshot
	SyncType      string
	TotalProducts int
	Message       string
}

// SyncAggregated runs the aggregated pipeline: validate → parse and
// aggregate product names → decide first-vs-update sync → persist →
// append history.
//
// First sync (no row for the date, or the sync arrived at or before the
// configured cutoff hour) replaces the day's product list outright. Update
// sync overwrites key-wise: keys in the new batch replace the stored
// value, untouched keys are preserved.
func (s *Service) SyncAggregated(ctx context.Context, req AggregatedSyncRequest) (*AggregatedSyncResult, error) {
	if req.Zonas == nil {
		return nil, ErrMissingZonas
	}

	var items []product.Item
	for _, zona := range req.Zonas {
		for _, p := range zona.Productos {
			items = append(items, product.Item{
				Nombre:   p.NombreProducto,
				Cantidad: p.Cantidad,
			})
		}
	}

	aggregated, warnings := product.Aggregate(items)
	for _, w := range warnings {
		s.logger.WithField("nombre_producto", w).Warn("Could not parse product name, skipping")
	}

	if len(aggregated) == 0 {
		return nil, ErrNoValidProducts
	}

	now := s.now()
	fecha := now.Format(production.DateFormat)
	hour := now.Hour()

	existing, err := s.aggregated.GetByDate(ctx, fecha)
	if err != nil {
		return nil, &StoreError{Op: "fetch existing aggregated data", Err: err}
	}

	firstSync := existing == nil || hour <= s.cutoffHour

	var finalProducts []production.AggregatedProduct
	if firstSync {
		finalProducts = aggregated
	} else {
		finalProducts = production.MergeAggregated(existing.Productos, aggregated)
	}

	snap, err := s.aggregated.Upsert(ctx, fecha, finalProducts)
	if err != nil {
		return nil, &StoreError{Op: "persist aggregated data", Err: err}
	}

	s.appendAggregatedHistory(ctx, fecha, hour, aggregated)

	if s.publisher != nil {
		s.publisher.Publish(ctx, "aggregated_production_data")
	}

	syncType := SyncTypeUpdate
	msg := "Production data merged successfully"
	if firstSync {
		syncType = SyncTypeFirst
		msg = "Production data created successfully"
	}

	return &AggregatedSyncResult{
		Snapshot:      snap,
		SyncType:      syncType,
		TotalProducts: len(aggregated),
		Message:       msg,
	}, nil
}

// appendAggregatedHistory logs this sync's aggregated batch (not the
// merged snapshot) so the trend views see what each call reported.
// Same fire-and-forget policy as the raw pipeline.
func (s *Service) appendAggregatedHistory(ctx context.Context, fecha string, hour int, productos []production.AggregatedProduct) {
	var wg sync.WaitGroup

	for _, p := range productos {
		entry := production.AggregatedHistoryEntry{
			Date:        fecha,
			ProductName: p.Nombre,
			Quantity:    p.Cantidad,
			Hour:        hour,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.history.AppendAggregated(ctx, entry); err != nil {
				s.logger.WithError(err).WithField("product", entry.ProductName).
					Warn("History append failed")
			}
		}()
	}

	wg.Wait()
}
