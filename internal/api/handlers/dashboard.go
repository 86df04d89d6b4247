package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/lactaria/produccion/backend/internal/catalog"
	"github.com/lactaria/produccion/backend/internal/production"
	"github.com/lactaria/produccion/backend/pkg/logger"
	"github.com/lactaria/produccion/backend/pkg/redis"
)

// Read interfaces consumed by the dashboard endpoints.

type SnapshotReader interface {
	GetByDate(ctx context.Context, fecha string) (*production.Snapshot, error)
}

type AggregatedReader interface {
	GetByDate(ctx context.Context, fecha string) (*production.AggregatedSnapshot, error)
}

type HistoryReader interface {
	GetRawRange(ctx context.Context, from, to, zone string) ([]production.HistoryEntry, error)
	GetAggregatedRange(ctx context.Context, from, to string) ([]production.AggregatedHistoryEntry, error)
}

type ThresholdReader interface {
	List(ctx context.Context) ([]production.AlertThreshold, error)
}

type CatalogReader interface {
	List(ctx context.Context) ([]catalog.Entry, error)
}

// DashboardHandler serves the read API the browser dashboard polls and
// re-queries on change signals.
type DashboardHandler struct {
	snapshots  SnapshotReader
	aggregated AggregatedReader
	history    HistoryReader
	thresholds ThresholdReader
	catalog    CatalogReader
	cache      *redis.Cache
	logger     *logger.Logger
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(
	snapshots SnapshotReader,
	aggregated AggregatedReader,
	history HistoryReader,
	thresholds ThresholdReader,
	cat CatalogReader,
	cache *redis.Cache,
	log *logger.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		snapshots:  snapshots,
		aggregated: aggregated,
		history:    history,
		thresholds: thresholds,
		catalog:    cat,
		cache:      cache,
		logger:     log,
	}
}

// GetSnapshot handles GET /api/production/{fecha}.
func (h *DashboardHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	fecha, ok := dateParam(w, r)
	if !ok {
		return
	}

	var cached production.Snapshot
	if found, _ := h.cache.Get(r.Context(), redis.SnapshotKey(fecha), &cached); found {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	snap, err := h.snapshots.GetByDate(r.Context(), fecha)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve production data")
		return
	}
	if snap == nil {
		respondError(w, http.StatusNotFound, "No production data for date")
		return
	}

	_ = h.cache.Set(r.Context(), redis.SnapshotKey(fecha), snap, redis.TTLSnapshot)
	respondJSON(w, http.StatusOK, snap)
}

// GetAggregatedSnapshot handles GET /api/production/aggregated/{fecha}.
func (h *DashboardHandler) GetAggregatedSnapshot(w http.ResponseWriter, r *http.Request) {
	fecha, ok := dateParam(w, r)
	if !ok {
		return
	}

	var cached production.AggregatedSnapshot
	if found, _ := h.cache.Get(r.Context(), redis.AggregatedSnapshotKey(fecha), &cached); found {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	snap, err := h.aggregated.GetByDate(r.Context(), fecha)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get aggregated snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve aggregated data")
		return
	}
	if snap == nil {
		respondError(w, http.StatusNotFound, "No aggregated data for date")
		return
	}

	_ = h.cache.Set(r.Context(), redis.AggregatedSnapshotKey(fecha), snap, redis.TTLSnapshot)
	respondJSON(w, http.StatusOK, snap)
}

// GetHistory handles GET /api/history?from=&to=&zone=.
func (h *DashboardHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rangeParams(w, r)
	if !ok {
		return
	}
	zone := r.URL.Query().Get("zone")

	// Only the unfiltered range is cached; zone-filtered reads are rare.
	var cached []production.HistoryEntry
	if zone == "" {
		if found, _ := h.cache.Get(r.Context(), redis.HistoryKey(from, to), &cached); found {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	entries, err := h.history.GetRawRange(r.Context(), from, to, zone)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	if entries == nil {
		entries = []production.HistoryEntry{}
	}
	if zone == "" {
		_ = h.cache.Set(r.Context(), redis.HistoryKey(from, to), entries, redis.TTLHistory)
	}
	respondJSON(w, http.StatusOK, entries)
}

// GetAggregatedHistory handles GET /api/history/aggregated?from=&to=.
func (h *DashboardHandler) GetAggregatedHistory(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rangeParams(w, r)
	if !ok {
		return
	}

	entries, err := h.history.GetAggregatedRange(r.Context(), from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get aggregated history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	if entries == nil {
		entries = []production.AggregatedHistoryEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// GetThresholds handles GET /api/thresholds.
func (h *DashboardHandler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	thresholds, err := h.thresholds.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get thresholds")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve thresholds")
		return
	}

	if thresholds == nil {
		thresholds = []production.AlertThreshold{}
	}
	respondJSON(w, http.StatusOK, thresholds)
}

// GetCatalog handles GET /api/catalog.
func (h *DashboardHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	var cached []catalog.Entry
	if found, _ := h.cache.Get(r.Context(), "catalog", &cached); found {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	entries, err := h.catalog.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get catalog")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve catalog")
		return
	}

	if entries == nil {
		entries = []catalog.Entry{}
	}
	_ = h.cache.Set(r.Context(), "catalog", entries, redis.TTLCatalog)
	respondJSON(w, http.StatusOK, entries)
}

// dateParam extracts and validates the {fecha} path variable.
func dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	fecha := mux.Vars(r)["fecha"]
	if _, err := time.Parse(production.DateFormat, fecha); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (expected YYYY-MM-DD)")
		return "", false
	}
	return fecha, true
}

// rangeParams extracts from/to query params, defaulting to the last 7
// days.
func rangeParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	now := time.Now()
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	if from == "" {
		from = now.AddDate(0, 0, -7).Format(production.DateFormat)
	}
	if to == "" {
		to = now.Format(production.DateFormat)
	}

	for _, d := range []string{from, to} {
		if _, err := time.Parse(production.DateFormat, d); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date format (expected YYYY-MM-DD)")
			return "", "", false
		}
	}

	return from, to, true
}
