package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/lactaria/produccion/backend/internal/alerts"
	"github.com/lactaria/produccion/backend/internal/api"
	"github.com/lactaria/produccion/backend/internal/api/handlers"
	"github.com/lactaria/produccion/backend/internal/catalog"
	"github.com/lactaria/produccion/backend/internal/ingest"
	"github.com/lactaria/produccion/backend/internal/notify"
	"github.com/lactaria/produccion/backend/internal/production"
	"github.com/lactaria/produccion/backend/internal/scheduler"
	"github.com/lactaria/produccion/backend/internal/scheduler/jobs"
	"github.com/lactaria/produccion/backend/internal/ws"
	"github.com/lactaria/produccion/backend/pkg/config"
	"github.com/lactaria/produccion/backend/pkg/database"
	"github.com/lactaria/produccion/backend/pkg/httputil"
	"github.com/lactaria/produccion/backend/pkg/logger"
	"github.com/lactaria/produccion/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the production monitoring API server.

This command:
- Receives webhook pushes from the plant agents
- Serves the dashboard read API
- Broadcasts change signals over WebSocket

Endpoints:
  GET  /health                              - Health check
  GET  /ws                                  - Change signal stream
  GET  /api/production/{fecha}              - Raw snapshot
  GET  /api/production/aggregated/{fecha}   - Aggregated snapshot
  GET  /api/history                         - Raw history
  GET  /api/history/aggregated              - Aggregated history
  POST /api/webhooks/production             - Raw sync webhook
  POST /api/webhooks/production/aggregated  - Aggregated sync webhook

Example:
  go run ./cmd/produccion api
  go run ./cmd/produccion api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Produccion API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (optional)
	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	if rdb.Enabled() {
		log.Info("Connected to Redis")
	} else {
		log.Info("Redis disabled, running with in-process signals only")
	}

	cache := redis.NewCache(rdb, "produccion")
	limiter := redis.NewRateLimiter(rdb, "produccion")
	pubsub := redis.NewPubSub(rdb, "produccion:changes")

	// 5. Create repositories
	snapshotRepo := production.NewSnapshotRepository(db.Pool)
	aggregatedRepo := production.NewAggregatedRepository(db.Pool)
	historyRepo := production.NewHistoryRepository(db.Pool)
	thresholdRepo := production.NewThresholdRepository(db.Pool)
	catalogRepo := catalog.NewRepository(db.Pool)

	// 6. Create change broker and WebSocket hub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := notify.NewBroker(pubsub, log)
	go broker.Run(ctx)

	hub := ws.NewHub(broker, log)
	go hub.Run(ctx)

	// 7. Create ingestion service
	service := ingest.NewService(snapshotRepo, aggregatedRepo, historyRepo, broker, log, cfg.Ingest)

	if cfg.Alerts.Enabled {
		var notifier alerts.Notifier
		if cfg.Alerts.WebhookURL != "" {
			// A bad sync can trip every zone at once; cap delivery volume.
			client := httputil.New(log).WithRateLimit(rate.Every(time.Second), 5)
			notifier = alerts.NewWebhookNotifier(client, cfg.Alerts.WebhookURL)
		} else {
			notifier = alerts.NewLogNotifier(log)
		}
		service.WithAlertChecker(alerts.NewChecker(thresholdRepo, notifier, log))
	}

	// 8. Create handlers
	webhookHandler := handlers.NewWebhookHandler(service, log)
	dashboardHandler := handlers.NewDashboardHandler(
		snapshotRepo, aggregatedRepo, historyRepo, thresholdRepo, catalogRepo, cache, log)

	// 9. Create router and server
	router := api.NewRouter(webhookHandler, dashboardHandler, hub, db, limiter, cfg, log)
	server := api.New(cfg, log, router)

	// 10. Start the periodic jobs
	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewRollover(broker)); err != nil {
		return fmt.Errorf("add rollover job: %w", err)
	}
	if err := sched.AddJob(jobs.NewSyncWatchdog(snapshotRepo, log, cfg.Ingest.FirstSyncCutoffHour)); err != nil {
		return fmt.Errorf("add watchdog job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// 11. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
