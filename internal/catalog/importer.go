// Package catalog maintains the product code → display name table. The
// ERP exports its product listing as an HTML page; the importer scrapes it
// so dashboards can show descriptive names for raw product codes.
package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lactaria/produccion/backend/pkg/httputil"
	"github.com/lactaria/produccion/backend/pkg/logger"
)

// Entry maps a product code to its descriptive name.
type Entry struct {
	Codigo string `json:"codigo"`
	Nombre string `json:"nombre"`
}

// Store persists catalog entries.
type Store interface {
	UpsertBatch(ctx context.Context, entries []Entry) error
}

// Importer fetches and parses the ERP product listing.
type Importer struct {
	client *httputil.Client
	store  Store
	logger *logger.Logger
}

// NewImporter creates a catalog importer.
func NewImporter(client *httputil.Client, store Store, log *logger.Logger) *Importer {
	return &Importer{
		client: client,
		store:  store,
		logger: log,
	}
}

// ImportURL fetches the listing over HTTP and stores the parsed entries.
func (i *Importer) ImportURL(ctx context.Context, url string) (int, error) {
	resp, err := i.client.Get(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return 0, fmt.Errorf("catalog fetch returned status %d", resp.StatusCode)
	}

	return i.importReader(ctx, resp.Body)
}

// ImportReader parses a listing from r and stores the entries. Used by the
// CLI when importing from a local export file.
func (i *Importer) ImportReader(ctx context.Context, r io.Reader) (int, error) {
	return i.importReader(ctx, r)
}

func (i *Importer) importReader(ctx context.Context, r io.Reader) (int, error) {
	entries, err := Parse(r)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("no catalog rows found in listing")
	}

	if err := i.store.UpsertBatch(ctx, entries); err != nil {
		return 0, fmt.Errorf("store catalog entries: %w", err)
	}

	i.logger.WithField("entries", len(entries)).Info("Product catalog imported")
	return len(entries), nil
}

// Parse extracts (code, name) pairs from the ERP listing HTML. The export
// is a plain table whose first two cells per row are code and name; header
// rows and rows without a code are skipped.
func Parse(r io.Reader) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse catalog HTML: %w", err)
	}

	var entries []Entry
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		codigo := strings.TrimSpace(cells.Eq(0).Text())
		nombre := strings.TrimSpace(cells.Eq(1).Text())
		if codigo == "" || nombre == "" {
			return
		}

		entries = append(entries, Entry{Codigo: codigo, Nombre: nombre})
	})

	return entries, nil
}
