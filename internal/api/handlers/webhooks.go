package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lactaria/produccion/backend/internal/ingest"
	"github.com/lactaria/produccion/backend/pkg/logger"
)

// Syncer is the ingestion surface the webhook handlers call.
type Syncer interface {
	SyncRaw(ctx context.Context, req ingest.RawSyncRequest) (*ingest.RawSyncResult, error)
	SyncAggregated(ctx context.Context, req ingest.AggregatedSyncRequest) (*ingest.AggregatedSyncResult, error)
}

// WebhookHandler handles the two ingestion endpoints.
type WebhookHandler struct {
	service Syncer
	logger  *logger.Logger
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(service Syncer, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  log,
	}
}

// SyncRaw handles POST /api/webhooks/production.
func (h *WebhookHandler) SyncRaw(w http.ResponseWriter, r *http.Request) {
	var req ingest.RawSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.SyncRaw(r.Context(), req)
	if err != nil {
		h.respondSyncError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result.Snapshot,
		"message": result.Message,
	})
}

// SyncAggregated handles POST /api/webhooks/production/aggregated.
func (h *WebhookHandler) SyncAggregated(w http.ResponseWriter, r *http.Request) {
	var req ingest.AggregatedSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.SyncAggregated(r.Context(), req)
	if err != nil {
		h.respondSyncError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result.Snapshot,
		"message": result.Message,
		"processed": map[string]interface{}{
			"total_products": result.TotalProducts,
			"sync_type":      result.SyncType,
		},
	})
}

// respondSyncError maps the ingestion error taxonomy onto status codes:
// validation failures are 400s, store failures 500s with details, and
// anything unexpected a generic 500.
func (h *WebhookHandler) respondSyncError(w http.ResponseWriter, err error) {
	var storeErr *ingest.StoreError

	switch {
	case errors.Is(err, ingest.ErrMissingZonas):
		respondError(w, http.StatusBadRequest,
			"Invalid data format. Expected 'zonas' array with production data.")

	case errors.Is(err, ingest.ErrNoValidProducts):
		respondError(w, http.StatusBadRequest, "No valid products to process")

	case errors.As(err, &storeErr):
		h.logger.WithError(storeErr.Err).WithField("op", storeErr.Op).
			Error("Store operation failed")
		respondErrorDetails(w, http.StatusInternalServerError,
			"Failed to "+storeErr.Op, storeErr.Err.Error())

	default:
		h.logger.WithError(err).Error("Unexpected ingestion error")
		respondErrorDetails(w, http.StatusInternalServerError,
			"Internal server error", err.Error())
	}
}
