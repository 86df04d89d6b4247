package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lactaria/produccion/backend/migrations"
	"github.com/lactaria/produccion/backend/pkg/config"
	"github.com/lactaria/produccion/backend/pkg/database"
	"github.com/lactaria/produccion/backend/pkg/logger"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Applies the embedded SQL migrations in order.

Already-applied migrations are skipped, so the command is safe to
re-run on every deploy.

Example:
  go run ./cmd/produccion migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := migrations.Apply(ctx, db.Pool); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Info("Migrations applied")
	fmt.Println("Migrations applied")
	return nil
}
