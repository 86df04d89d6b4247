package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lactaria/produccion/backend/pkg/config"
	"github.com/lactaria/produccion/backend/pkg/logger"
)

const listingHTML = `
<html><body>
<table>
  <tr><th>Código</th><th>Nombre</th></tr>
  <tr><td>P001</td><td>Burrata 100g</td></tr>
  <tr><td> P002 </td><td> Ricotta 250g </td></tr>
  <tr><td></td><td>Sin código</td></tr>
  <tr><td>P003</td><td></td></tr>
</table>
</body></html>`

type fakeCatalogStore struct {
	entries []Entry
}

func (f *fakeCatalogStore) UpsertBatch(ctx context.Context, entries []Entry) error {
	f.entries = entries
	return nil
}

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(listingHTML))
	require.NoError(t, err)

	// Header row and rows missing a cell are skipped; cells are trimmed.
	assert.Equal(t, []Entry{
		{Codigo: "P001", Nombre: "Burrata 100g"},
		{Codigo: "P002", Nombre: "Ricotta 250g"},
	}, entries)
}

func TestParseNoTable(t *testing.T) {
	entries, err := Parse(strings.NewReader("<html><body><p>nada</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImportReader(t *testing.T) {
	store := &fakeCatalogStore{}
	log := logger.New(&config.Config{Env: "test", LogLevel: "error"})
	importer := NewImporter(nil, store, log)

	count, err := importer.ImportReader(context.Background(), strings.NewReader(listingHTML))
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.Len(t, store.entries, 2)
}

func TestImportReaderEmptyListing(t *testing.T) {
	store := &fakeCatalogStore{}
	log := logger.New(&config.Config{Env: "test", LogLevel: "error"})
	importer := NewImporter(nil, store, log)

	_, err := importer.ImportReader(context.Background(), strings.NewReader("<table></table>"))
	assert.Error(t, err)
	assert.Empty(t, store.entries)
}
