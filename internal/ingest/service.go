// Package ingest orchestrates the two webhook pipelines: validate,
// normalize or parse, reconcile against the day's snapshot, persist, and
// append the event history.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lactaria/produccion/backend/internal/production"
	"github.com/lactaria/produccion/backend/pkg/config"
	"github.com/lactaria/produccion/backend/pkg/logger"
)

// RawZone is one incoming zone entry on the raw webhook. Either Nombre is
// a zone label, or CodigoAgente carries the ERP agent code (with
// NombreAgente as a human-readable hint for logs).
type RawZone struct {
	Nombre       string               `json:"nombre"`
	CodigoAgente string               `json:"codigo_agente,omitempty"`
	NombreAgente string               `json:"nombre_agente,omitempty"`
	Productos    []production.Product `json:"productos"`
}

// RawSyncRequest is the raw webhook body.
type RawSyncRequest struct {
	Zonas []RawZone `json:"zonas"`
}

// NamedProduct is one product line on the aggregated webhook, carrying the
// free-text descriptive name that drives aggregation.
type NamedProduct struct {
	Codigo         string `json:"codigo"`
	NombreProducto string `json:"nombre_producto"`
	Cantidad       int    `json:"cantidad"`
}

// AggregatedZone is one incoming zone entry on the aggregated webhook.
type AggregatedZone struct {
	Nombre    string         `json:"nombre"`
	Productos []NamedProduct `json:"productos"`
}

// AggregatedSyncRequest is the aggregated webhook body.
type AggregatedSyncRequest struct {
	Zonas []AggregatedZone `json:"zonas"`
}

// Validation errors map to 400 responses; StoreError maps to 500.
var (
	// ErrMissingZonas: the request body has no 'zonas' array.
	ErrMissingZonas = errors.New("invalid data format: expected 'zonas' array")

	// ErrNoValidProducts: every product in the batch failed to parse.
	ErrNoValidProducts = errors.New("no valid products to process")
)

// StoreError wraps a persistence failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// SnapshotStore is the raw snapshot persistence needed by the service.
type SnapshotStore interface {
	GetByDate(ctx context.Context, fecha string) (*production.Snapshot, error)
	Upsert(ctx context.Context, fecha string, zonas []production.Zone) (*production.Snapshot, error)
}

// AggregatedStore is the aggregated snapshot persistence needed by the
// service.
type AggregatedStore interface {
	GetByDate(ctx context.Context, fecha string) (*production.AggregatedSnapshot, error)
	Upsert(ctx context.Context, fecha string, productos []production.AggregatedProduct) (*production.AggregatedSnapshot, error)
}

// HistoryStore appends event-log rows. Append failures are the service's
// to swallow, never the caller's.
type HistoryStore interface {
	AppendRaw(ctx context.Context, e production.HistoryEntry) error
	AppendAggregated(ctx context.Context, e production.AggregatedHistoryEntry) error
}

// Publisher signals that a table changed so dashboards re-fetch.
type Publisher interface {
	Publish(ctx context.Context, table string)
}

// AlertChecker evaluates zone totals against the configured thresholds.
type AlertChecker interface {
	Check(ctx context.Context, zonas []production.Zone)
}

// Service runs both ingestion pipelines. Each call is stateless; the only
// shared mutable state is the per-date snapshot row. The fetch, merge and
// persist sequence is not transactional, upstream serializes calls per date.
type Service struct {
	snapshots  SnapshotStore
	aggregated AggregatedStore
	history    HistoryStore
	publisher  Publisher
	alerts     AlertChecker
	logger     *logger.Logger
	cutoffHour int
	now        func() time.Time
}

// NewService creates an ingestion service.
func NewService(
	snapshots SnapshotStore,
	aggregated AggregatedStore,
	history HistoryStore,
	publisher Publisher,
	log *logger.Logger,
	cfg config.IngestConfig,
) *Service {
	return &Service{
		snapshots:  snapshots,
		aggregated: aggregated,
		history:    history,
		publisher:  publisher,
		logger:     log,
		cutoffHour: cfg.FirstSyncCutoffHour,
		now:        time.Now,
	}
}

// WithAlertChecker wires threshold evaluation into the raw pipeline.
func (s *Service) WithAlertChecker(ac AlertChecker) *Service {
	s.alerts = ac
	return s
}

// WithClock overrides the clock. Tests use this to pin the date and hour.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
