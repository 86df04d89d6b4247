// Package jobs holds the scheduled jobs wired into the service.
package jobs

import (
	"context"

	"github.com/lactaria/produccion/backend/internal/notify"
)

// Rollover broadcasts change signals at midnight so connected dashboards
// re-fetch and flip to the new (empty) date instead of showing yesterday's
// counts until the first sync lands.
type Rollover struct {
	broker *notify.Broker
}

// NewRollover creates the rollover job.
func NewRollover(broker *notify.Broker) *Rollover {
	return &Rollover{broker: broker}
}

func (j *Rollover) Name() string {
	return "day_rollover"
}

func (j *Rollover) Schedule() string {
	return "0 0 0 * * *"
}

func (j *Rollover) Run(ctx context.Context) error {
	j.broker.Publish(ctx, "production_data")
	j.broker.Publish(ctx, "aggregated_production_data")
	return nil
}
