// Package alerts checks per-zone totals against the configured bounds and
// delivers out-of-range events through an injected notifier.
package alerts

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lactaria/produccion/backend/internal/production"
	"github.com/lactaria/produccion/backend/pkg/httputil"
	"github.com/lactaria/produccion/backend/pkg/logger"
)

// Alert kinds.
const (
	KindBelowMin = "below_min"
	KindAboveMax = "above_max"
)

// Alert is one out-of-bounds observation for a zone.
type Alert struct {
	ZoneName string    `json:"zone_name"`
	Total    int       `json:"total"`
	Min      int       `json:"min_quantity"`
	Max      int       `json:"max_quantity"`
	Kind     string    `json:"kind"`
	At       time.Time `json:"at"`
}

// Notifier delivers alerts. Implementations are stateless; whether alerts
// fire at all is the caller's wiring decision, not ambient process state.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// ThresholdStore reads the enabled per-zone bounds.
type ThresholdStore interface {
	ListEnabled(ctx context.Context) ([]production.AlertThreshold, error)
}

// Checker evaluates a snapshot's zones against the thresholds. Delivery
// failures are logged, never propagated: alerting must not fail a sync.
type Checker struct {
	thresholds ThresholdStore
	notifier   Notifier
	logger     *logger.Logger
}

// NewChecker creates a threshold checker.
func NewChecker(thresholds ThresholdStore, notifier Notifier, log *logger.Logger) *Checker {
	return &Checker{
		thresholds: thresholds,
		notifier:   notifier,
		logger:     log,
	}
}

// Check compares each zone's unit total against its enabled threshold and
// notifies on every bound violation.
func (c *Checker) Check(ctx context.Context, zonas []production.Zone) {
	thresholds, err := c.thresholds.ListEnabled(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to load alert thresholds")
		return
	}
	if len(thresholds) == 0 {
		return
	}

	byZone := make(map[string]production.AlertThreshold, len(thresholds))
	for _, t := range thresholds {
		byZone[t.ZoneName] = t
	}

	now := time.Now()
	for _, zona := range zonas {
		t, ok := byZone[zona.Nombre]
		if !ok {
			continue
		}

		total := 0
		for _, p := range zona.Productos {
			total += p.Cantidad
		}

		var kind string
		switch {
		case total < t.MinQuantity:
			kind = KindBelowMin
		case total > t.MaxQuantity:
			kind = KindAboveMax
		default:
			continue
		}

		alert := Alert{
			ZoneName: zona.Nombre,
			Total:    total,
			Min:      t.MinQuantity,
			Max:      t.MaxQuantity,
			Kind:     kind,
			At:       now,
		}

		if err := c.notifier.Notify(ctx, alert); err != nil {
			c.logger.WithError(err).WithField("zone", zona.Nombre).
				Warn("Alert delivery failed")
		}
	}
}

// WebhookNotifier POSTs alerts as JSON to a configured URL.
type WebhookNotifier struct {
	client *httputil.Client
	url    string
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(client *httputil.Client, url string) *WebhookNotifier {
	return &WebhookNotifier{client: client, url: url}
}

// Notify delivers the alert over HTTP.
func (n *WebhookNotifier) Notify(ctx context.Context, alert Alert) error {
	resp, err := n.client.PostJSON(ctx, n.url, alert)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("alert webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier writes alerts to the log. Used when no webhook URL is
// configured.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

// Notify logs the alert.
func (n *LogNotifier) Notify(_ context.Context, alert Alert) error {
	n.logger.WithFields(map[string]interface{}{
		"zone":  alert.ZoneName,
		"total": alert.Total,
		"min":   alert.Min,
		"max":   alert.Max,
		"kind":  alert.Kind,
	}).Warn("Zone total out of bounds")
	return nil
}
