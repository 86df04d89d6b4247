package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lactaria/produccion/backend/internal/api/handlers"
	"github.com/lactaria/produccion/backend/internal/ws"
	"github.com/lactaria/produccion/backend/pkg/config"
	"github.com/lactaria/produccion/backend/pkg/database"
	"github.com/lactaria/produccion/backend/pkg/logger"
	"github.com/lactaria/produccion/backend/pkg/redis"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(
	webhooks *handlers.WebhookHandler,
	dashboard *handlers.DashboardHandler,
	hub *ws.Hub,
	db *database.DB,
	limiter *redis.RateLimiter,
	cfg *config.Config,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(db)).Methods("GET")

	// Live change signals for the dashboard
	r.Handle("/ws", hub).Methods("GET")

	// API
	api := r.PathPrefix("/api").Subrouter()

	// Dashboard reads
	api.HandleFunc("/production/aggregated/{fecha}", dashboard.GetAggregatedSnapshot).Methods("GET")
	api.HandleFunc("/production/{fecha}", dashboard.GetSnapshot).Methods("GET")
	api.HandleFunc("/history/aggregated", dashboard.GetAggregatedHistory).Methods("GET")
	api.HandleFunc("/history", dashboard.GetHistory).Methods("GET")
	api.HandleFunc("/thresholds", dashboard.GetThresholds).Methods("GET")
	api.HandleFunc("/catalog", dashboard.GetCatalog).Methods("GET")

	// Ingestion webhooks
	wh := api.PathPrefix("/webhooks").Subrouter()
	wh.Use(rateLimitMiddleware(limiter, cfg.Ingest, log))
	wh.Use(signatureMiddleware(cfg.Ingest.WebhookSecret, log))
	wh.HandleFunc("/production/aggregated", webhooks.SyncAggregated).Methods("POST")
	wh.HandleFunc("/production", webhooks.SyncRaw).Methods("POST")

	// Anything else on a known path is rejected with a JSON 405
	r.MethodNotAllowedHandler = methodNotAllowedHandler()

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	// CORS wraps the router itself so preflight requests are answered
	// before route matching (a webhook route would otherwise 405 them).
	return corsMiddleware(r)
}

// healthCheckHandler returns server and database health.
func healthCheckHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbHealth, _ := db.HealthCheck(r.Context())

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"service":  "produccion-api",
			"database": dbHealth,
		})
	}
}

func methodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Method not allowed",
		})
	})
}
