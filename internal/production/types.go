package production

import "time"

// Product is one raw product line as reported by upstream. Cantidad is the
// latest known count for that code, not an increment.
type Product struct {
	Codigo   string `json:"codigo"`
	Cantidad int    `json:"cantidad"`
}

// Zone groups products under a canonical zone name. Within a snapshot zone
// names are unique; within a zone product codes are unique.
type Zone struct {
	Nombre    string    `json:"nombre"`
	Productos []Product `json:"productos"`
}

// Snapshot is the day's best-known raw state, one row per date. It is
// mutated by merge on every ingestion call for its date and becomes a
// read-only archive row once the date rolls over.
type Snapshot struct {
	Fecha     string    `json:"fecha"`
	Zonas     []Zone    `json:"zonas"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AggregatedProduct is one reporting line keyed by "{tipo} {gramaje}".
// Cantidad is in sale units (pack factor already applied).
type AggregatedProduct struct {
	Nombre   string `json:"nombre"`
	Cantidad int    `json:"cantidad"`
}

// AggregatedSnapshot is the day's aggregated state, one row per date.
type AggregatedSnapshot struct {
	Fecha     string              `json:"fecha"`
	Productos []AggregatedProduct `json:"productos"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// HistoryEntry is an immutable fact: one product's count at one ingestion
// event. A given (date, zone, code) can have many entries across the day,
// one per sync, each tagged with the hour it arrived.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	Date        string    `json:"date"`
	ZoneName    string    `json:"zone_name"`
	ProductCode string    `json:"product_code"`
	Quantity    int       `json:"quantity"`
	Hour        int       `json:"hour"`
	CreatedAt   time.Time `json:"created_at"`
}

// AggregatedHistoryEntry mirrors HistoryEntry for the aggregated pipeline.
type AggregatedHistoryEntry struct {
	ID          int64     `json:"id"`
	Date        string    `json:"date"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Hour        int       `json:"hour"`
	CreatedAt   time.Time `json:"created_at"`
}

// AlertThreshold is per-zone min/max bounds maintained by the admin
// surface. Read-only from this service's perspective.
type AlertThreshold struct {
	ZoneName    string `json:"zone_name"`
	MinQuantity int    `json:"min_quantity"`
	MaxQuantity int    `json:"max_quantity"`
	Enabled     bool   `json:"enabled"`
}

// DateFormat is the canonical date key for snapshot rows.
const DateFormat = "2006-01-02"
