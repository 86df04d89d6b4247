package product

import (
	"github.com/lactaria/produccion/backend/internal/production"
)

// Item is one reported product line entering aggregation: the free-text
// label and the package count reported for it.
type Item struct {
	Nombre   string
	Cantidad int
}

// Aggregate groups items by canonical key and sums unit counts. Each
// item's quantity is multiplied by its pack factor, so multi-packs
// contribute their true unit count, and physically different SKUs that
// parse to the same "{tipo} {gramaje}" collapse into one reporting line.
//
// Unparseable items are skipped, not fatal: their labels come back as
// warnings and the rest of the batch proceeds. An empty result with
// nonempty input means nothing parsed; the caller treats that as a hard
// error.
func Aggregate(items []Item) ([]production.AggregatedProduct, []string) {
	totals := make(map[string]int)
	var warnings []string

	for _, item := range items {
		parsed, err := Parse(item.Nombre)
		if err != nil {
			warnings = append(warnings, item.Nombre)
			continue
		}

		totals[parsed.Key()] += item.Cantidad * parsed.Factor
	}

	return production.SortedAggregated(totals), warnings
}
