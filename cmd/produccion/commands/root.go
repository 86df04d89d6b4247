package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "produccion",
	Short: "Production monitoring backend for the dairy plants",
	Long: `Produccion backend CLI

Receives production counts pushed from the plant agents, reconciles
them into daily snapshots and serves the live dashboard API.

Usage:
  go run ./cmd/produccion [command]

Examples:
  go run ./cmd/produccion api
  go run ./cmd/produccion migrate
  go run ./cmd/produccion catalog import productos.html`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
