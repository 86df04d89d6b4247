package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lactaria/produccion/backend/internal/catalog"
	"github.com/lactaria/produccion/backend/pkg/config"
	"github.com/lactaria/produccion/backend/pkg/database"
	"github.com/lactaria/produccion/backend/pkg/httputil"
	"github.com/lactaria/produccion/backend/pkg/logger"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Product catalog operations",
}

// catalogImportCmd imports the ERP product listing.
var catalogImportCmd = &cobra.Command{
	Use:   "import <file|url>",
	Short: "Import the product catalog from an ERP HTML export",
	Long: `Parses the ERP product listing (an HTML table of product code and
name) and upserts it into the product_catalog table.

The argument is either a local export file or an http(s) URL.

Example:
  go run ./cmd/produccion catalog import productos.html
  go run ./cmd/produccion catalog import https://erp.example.com/productos`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogImportCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	source := args[0]

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

	importer := catalog.NewImporter(httputil.New(log), catalog.NewRepository(db.Pool), log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var count int
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		count, err = importer.ImportURL(ctx, source)
	} else {
		var f *os.File
		f, err = os.Open(source)
		if err != nil {
			return fmt.Errorf("open catalog file: %w", err)
		}
		defer f.Close()
		count, err = importer.ImportReader(ctx, f)
	}
	if err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}

	fmt.Printf("Imported %d catalog entries\n", count)
	return nil
}
