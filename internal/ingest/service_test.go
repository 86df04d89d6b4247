package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lactaria/produccion/backend/internal/production"
	"github.com/lactaria/produccion/backend/pkg/config"
	"github.com/lactaria/produccion/backend/pkg/logger"
)

// In-memory stores standing in for the Postgres repositories.

type fakeSnapshotStore struct {
	snap   *production.Snapshot
	getErr error
}

func (f *fakeSnapshotStore) GetByDate(ctx context.Context, fecha string) (*production.Snapshot, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.snap, nil
}

func (f *fakeSnapshotStore) Upsert(ctx context.Context, fecha string, zonas []production.Zone) (*production.Snapshot, error) {
	f.snap = &production.Snapshot{Fecha: fecha, Zonas: zonas, UpdatedAt: time.Now()}
	return f.snap, nil
}

type fakeAggregatedStore struct {
	snap *production.AggregatedSnapshot
}

func (f *fakeAggregatedStore) GetByDate(ctx context.Context, fecha string) (*production.AggregatedSnapshot, error) {
	return f.snap, nil
}

func (f *fakeAggregatedStore) Upsert(ctx context.Context, fecha string, productos []production.AggregatedProduct) (*production.AggregatedSnapshot, error) {
	f.snap = &production.AggregatedSnapshot{Fecha: fecha, Productos: productos, UpdatedAt: time.Now()}
	return f.snap, nil
}

type fakeHistoryStore struct {
	mu      sync.Mutex
	raw     []production.HistoryEntry
	agg     []production.AggregatedHistoryEntry
	failErr error
}

func (f *fakeHistoryStore) AppendRaw(ctx context.Context, e production.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.raw = append(f.raw, e)
	return nil
}

func (f *fakeHistoryStore) AppendAggregated(ctx context.Context, e production.AggregatedHistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.agg = append(f.agg, e)
	return nil
}

type fakePublisher struct {
	tables []string
}

func (f *fakePublisher) Publish(ctx context.Context, table string) {
	f.tables = append(f.tables, table)
}

type fixture struct {
	service    *Service
	snapshots  *fakeSnapshotStore
	aggregated *fakeAggregatedStore
	history    *fakeHistoryStore
	publisher  *fakePublisher
}

func newFixture(t *testing.T, hour int) *fixture {
	t.Helper()

	f := &fixture{
		snapshots:  &fakeSnapshotStore{},
		aggregated: &fakeAggregatedStore{},
		history:    &fakeHistoryStore{},
		publisher:  &fakePublisher{},
	}

	log := logger.New(&config.Config{Env: "test", LogLevel: "error"})
	cfg := config.IngestConfig{FirstSyncCutoffHour: 5}

	f.service = NewService(f.snapshots, f.aggregated, f.history, f.publisher, log, cfg).
		WithClock(func() time.Time {
			return time.Date(2026, 3, 14, hour, 30, 0, 0, time.UTC)
		})

	return f
}

func TestSyncRawMissingZonas(t *testing.T) {
	f := newFixture(t, 10)

	_, err := f.service.SyncRaw(context.Background(), RawSyncRequest{})

	assert.ErrorIs(t, err, ErrMissingZonas)
}

func TestSyncRawFirstInsertFlattensDuplicateZones(t *testing.T) {
	f := newFixture(t, 10)

	// Two upstream labels that both map to GRAN CANARIA.
	req := RawSyncRequest{Zonas: []RawZone{
		{Nombre: "COMERCIAL ZONA NORTE", Productos: []production.Product{{Codigo: "P001", Cantidad: 10}}},
		{Nombre: "WEB", Productos: []production.Product{{Codigo: "P002", Cantidad: 3}}},
	}}

	result, err := f.service.SyncRaw(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Equal(t, "Production data created successfully", result.Message)
	require.Len(t, result.Snapshot.Zonas, 1)
	assert.Equal(t, "GRAN CANARIA", result.Snapshot.Zonas[0].Nombre)
	assert.Len(t, result.Snapshot.Zonas[0].Productos, 2)

	assert.Equal(t, []string{"production_data"}, f.publisher.tables)
	assert.Len(t, f.history.raw, 2)
}

func TestSyncRawMergeOverwritesByCode(t *testing.T) {
	f := newFixture(t, 12)
	f.snapshots.snap = &production.Snapshot{
		Fecha: "2026-03-14",
		Zonas: []production.Zone{
			{Nombre: "GRAN CANARIA", Productos: []production.Product{
				{Codigo: "P001", Cantidad: 10},
				{Codigo: "P002", Cantidad: 5},
			}},
		},
	}

	req := RawSyncRequest{Zonas: []RawZone{
		{Nombre: "COMERCIAL ZONA NORTE", Productos: []production.Product{{Codigo: "P001", Cantidad: 25}}},
	}}

	result, err := f.service.SyncRaw(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Equal(t, "Production data merged successfully", result.Message)
	require.Len(t, result.Snapshot.Zonas, 1)
	assert.Equal(t, []production.Product{
		{Codigo: "P001", Cantidad: 25},
		{Codigo: "P002", Cantidad: 5},
	}, result.Snapshot.Zonas[0].Productos)
}

func TestSyncRawAgentCodes(t *testing.T) {
	f := newFixture(t, 9)

	req := RawSyncRequest{Zonas: []RawZone{
		{CodigoAgente: "004", NombreAgente: "Reparto Sur", Productos: []production.Product{{Codigo: "P001", Cantidad: 1}}},
		{CodigoAgente: "099", Productos: []production.Product{{Codigo: "P002", Cantidad: 2}}},
	}}

	result, err := f.service.SyncRaw(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Snapshot.Zonas, 2)
	assert.Equal(t, "PINGUINO", result.Snapshot.Zonas[0].Nombre)
	assert.Equal(t, "AGENTE_099", result.Snapshot.Zonas[1].Nombre)
}

func TestSyncRawHistoryFailureDoesNotFailSync(t *testing.T) {
	f := newFixture(t, 10)
	f.history.failErr = errors.New("insert failed")

	req := RawSyncRequest{Zonas: []RawZone{
		{Nombre: "OFICINA", Productos: []production.Product{{Codigo: "P001", Cantidad: 4}}},
	}}

	result, err := f.service.SyncRaw(context.Background(), req)
	require.NoError(t, err)
	assert.NotNil(t, result.Snapshot)
	assert.Empty(t, f.history.raw)
}

func TestSyncRawStoreError(t *testing.T) {
	f := newFixture(t, 10)
	f.snapshots.getErr = errors.New("connection refused")

	req := RawSyncRequest{Zonas: []RawZone{
		{Nombre: "OFICINA", Productos: []production.Product{{Codigo: "P001", Cantidad: 4}}},
	}}

	_, err := f.service.SyncRaw(context.Background(), req)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "fetch existing snapshot", storeErr.Op)
}

func TestSyncRawDayLifecycle(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	// First sync of the day: unmapped label passes through as-is.
	first := RawSyncRequest{Zonas: []RawZone{
		{Nombre: "Tenerife", Productos: []production.Product{{Codigo: "BUR1", Cantidad: 5}}},
	}}
	result, err := f.service.SyncRaw(ctx, first)
	require.NoError(t, err)
	assert.True(t, result.Created)
	require.Len(t, f.history.raw, 1)
	assert.Equal(t, production.HistoryEntry{
		Date:        "2026-03-14",
		ZoneName:    "Tenerife",
		ProductCode: "BUR1",
		Quantity:    5,
		Hour:        10,
	}, f.history.raw[0])

	// Second sync overwrites the count and appends a second history row.
	second := RawSyncRequest{Zonas: []RawZone{
		{Nombre: "Tenerife", Productos: []production.Product{{Codigo: "BUR1", Cantidad: 8}}},
	}}
	result, err = f.service.SyncRaw(ctx, second)
	require.NoError(t, err)
	assert.False(t, result.Created)
	require.Len(t, result.Snapshot.Zonas, 1)
	assert.Equal(t, 8, result.Snapshot.Zonas[0].Productos[0].Cantidad)
	require.Len(t, f.history.raw, 2)
	assert.Equal(t, 8, f.history.raw[1].Quantity)
}

func TestSyncAggregatedMissingZonas(t *testing.T) {
	f := newFixture(t, 10)

	_, err := f.service.SyncAggregated(context.Background(), AggregatedSyncRequest{})

	assert.ErrorIs(t, err, ErrMissingZonas)
}

func TestSyncAggregatedNoValidProducts(t *testing.T) {
	f := newFixture(t, 10)

	req := AggregatedSyncRequest{Zonas: []AggregatedZone{
		{Nombre: "GRAN CANARIA", Productos: []NamedProduct{
			{Codigo: "X1", NombreProducto: "sin peso", Cantidad: 5},
		}},
	}}

	_, err := f.service.SyncAggregated(context.Background(), req)

	assert.ErrorIs(t, err, ErrNoValidProducts)
}

func TestSyncAggregatedFirstSyncWithoutRow(t *testing.T) {
	f := newFixture(t, 10)

	// Multi-pack: 2 packages of 3x100g is 6 units.
	req := AggregatedSyncRequest{Zonas: []AggregatedZone{
		{Nombre: "GRAN CANARIA", Productos: []NamedProduct{
			{Codigo: "B1", NombreProducto: "Burrata 3x100g", Cantidad: 2},
		}},
	}}

	result, err := f.service.SyncAggregated(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, SyncTypeFirst, result.SyncType)
	assert.Equal(t, 1, result.TotalProducts)
	assert.Equal(t, []production.AggregatedProduct{
		{Nombre: "Burrata 100g", Cantidad: 6},
	}, result.Snapshot.Productos)
	assert.Equal(t, []string{"aggregated_production_data"}, f.publisher.tables)
}

func TestSyncAggregatedFirstSyncAtCutoffReplacesRow(t *testing.T) {
	// Hour equals the cutoff, so even an existing row is replaced.
	f := newFixture(t, 5)
	f.aggregated.snap = &production.AggregatedSnapshot{
		Fecha: "2026-03-14",
		Productos: []production.AggregatedProduct{
			{Nombre: "Ricotta 250g", Cantidad: 40},
		},
	}

	req := AggregatedSyncRequest{Zonas: []AggregatedZone{
		{Nombre: "TENERIFE", Productos: []NamedProduct{
			{Codigo: "B1", NombreProducto: "Burrata 100g", Cantidad: 9},
		}},
	}}

	result, err := f.service.SyncAggregated(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, SyncTypeFirst, result.SyncType)
	// Yesterday's leftover row is gone, not merged.
	assert.Equal(t, []production.AggregatedProduct{
		{Nombre: "Burrata 100g", Cantidad: 9},
	}, result.Snapshot.Productos)
}

func TestSyncAggregatedUpdateSyncOverwritesKeys(t *testing.T) {
	f := newFixture(t, 14)
	f.aggregated.snap = &production.AggregatedSnapshot{
		Fecha: "2026-03-14",
		Productos: []production.AggregatedProduct{
			{Nombre: "Burrata 100g", Cantidad: 50},
			{Nombre: "Ricotta 250g", Cantidad: 20},
		},
	}

	req := AggregatedSyncRequest{Zonas: []AggregatedZone{
		{Nombre: "GRAN CANARIA", Productos: []NamedProduct{
			{Codigo: "B1", NombreProducto: "Burrata 100g", Cantidad: 4},
		}},
	}}

	result, err := f.service.SyncAggregated(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, SyncTypeUpdate, result.SyncType)
	assert.Equal(t, []production.AggregatedProduct{
		{Nombre: "Burrata 100g", Cantidad: 4},
		{Nombre: "Ricotta 250g", Cantidad: 20},
	}, result.Snapshot.Productos)
}

func TestSyncAggregatedHistoryLogsBatchNotSnapshot(t *testing.T) {
	f := newFixture(t, 14)
	f.aggregated.snap = &production.AggregatedSnapshot{
		Fecha: "2026-03-14",
		Productos: []production.AggregatedProduct{
			{Nombre: "Ricotta 250g", Cantidad: 20},
		},
	}

	req := AggregatedSyncRequest{Zonas: []AggregatedZone{
		{Nombre: "GRAN CANARIA", Productos: []NamedProduct{
			{Codigo: "B1", NombreProducto: "Burrata 100g", Cantidad: 4},
		}},
	}}

	_, err := f.service.SyncAggregated(context.Background(), req)
	require.NoError(t, err)

	// One row for this call's batch; the preserved Ricotta key is not
	// re-logged.
	require.Len(t, f.history.agg, 1)
	assert.Equal(t, "Burrata 100g", f.history.agg[0].ProductName)
	assert.Equal(t, 4, f.history.agg[0].Quantity)
	assert.Equal(t, 14, f.history.agg[0].Hour)
	assert.Equal(t, "2026-03-14", f.history.agg[0].Date)
}

func TestSyncAggregatedSkipsUnparseableButProceeds(t *testing.T) {
	f := newFixture(t, 10)

	req := AggregatedSyncRequest{Zonas: []AggregatedZone{
		{Nombre: "GRAN CANARIA", Productos: []NamedProduct{
			{Codigo: "B1", NombreProducto: "Burrata 100g", Cantidad: 3},
			{Codigo: "X1", NombreProducto: "formato raro", Cantidad: 7},
		}},
	}}

	result, err := f.service.SyncAggregated(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalProducts)
	assert.Equal(t, []production.AggregatedProduct{
		{Nombre: "Burrata 100g", Cantidad: 3},
	}, result.Snapshot.Productos)
}
