package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lactaria/produccion/backend/internal/catalog"
	"github.com/lactaria/produccion/backend/internal/production"
	"github.com/lactaria/produccion/backend/pkg/config"
	"github.com/lactaria/produccion/backend/pkg/logger"
	"github.com/lactaria/produccion/backend/pkg/redis"
)

type fakeSnapshotReader struct {
	snap *production.Snapshot
}

func (f *fakeSnapshotReader) GetByDate(ctx context.Context, fecha string) (*production.Snapshot, error) {
	return f.snap, nil
}

type fakeAggregatedReader struct{}

func (f *fakeAggregatedReader) GetByDate(ctx context.Context, fecha string) (*production.AggregatedSnapshot, error) {
	return nil, nil
}

type fakeHistoryReader struct {
	raw []production.HistoryEntry
}

func (f *fakeHistoryReader) GetRawRange(ctx context.Context, from, to, zone string) ([]production.HistoryEntry, error) {
	return f.raw, nil
}

func (f *fakeHistoryReader) GetAggregatedRange(ctx context.Context, from, to string) ([]production.AggregatedHistoryEntry, error) {
	return nil, nil
}

type fakeThresholdReader struct{}

func (f *fakeThresholdReader) List(ctx context.Context) ([]production.AlertThreshold, error) {
	return nil, nil
}

type fakeCatalogReader struct{}

func (f *fakeCatalogReader) List(ctx context.Context) ([]catalog.Entry, error) {
	return nil, nil
}

func newDashboardHandler(snap *production.Snapshot) *DashboardHandler {
	cfg := &config.Config{Env: "test", LogLevel: "error"}
	log := logger.New(cfg)

	// Disabled Redis: the cache degrades to a pass-through.
	client, _ := redis.New(cfg)
	cache := redis.NewCache(client, "test")

	return NewDashboardHandler(
		&fakeSnapshotReader{snap: snap},
		&fakeAggregatedReader{},
		&fakeHistoryReader{},
		&fakeThresholdReader{},
		&fakeCatalogReader{},
		cache,
		log,
	)
}

func TestGetSnapshotInvalidDate(t *testing.T) {
	h := newDashboardHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/production/14-03-2026", nil)
	req = mux.SetURLVars(req, map[string]string{"fecha": "14-03-2026"})
	rec := httptest.NewRecorder()

	h.GetSnapshot(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSnapshotNotFound(t *testing.T) {
	h := newDashboardHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/production/2026-03-14", nil)
	req = mux.SetURLVars(req, map[string]string{"fecha": "2026-03-14"})
	rec := httptest.NewRecorder()

	h.GetSnapshot(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSnapshotFound(t *testing.T) {
	h := newDashboardHandler(&production.Snapshot{
		Fecha: "2026-03-14",
		Zonas: []production.Zone{{Nombre: "GRAN CANARIA"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/production/2026-03-14", nil)
	req = mux.SetURLVars(req, map[string]string{"fecha": "2026-03-14"})
	rec := httptest.NewRecorder()

	h.GetSnapshot(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GRAN CANARIA")
}

func TestGetHistoryRejectsBadRange(t *testing.T) {
	h := newDashboardHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history?from=notadate", nil)
	rec := httptest.NewRecorder()

	h.GetHistory(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHistoryReturnsEmptyListNotNull(t *testing.T) {
	h := newDashboardHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()

	h.GetHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
