package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/lactaria/produccion/backend/internal/production"
	"github.com/lactaria/produccion/backend/pkg/logger"
)

// SnapshotReader is the read access the watchdog needs.
type SnapshotReader interface {
	GetByDate(ctx context.Context, fecha string) (*production.Snapshot, error)
}

// SyncWatchdog checks a while after the first-sync cutoff whether any
// ingestion arrived today. A missing snapshot means the upstream
// automation is stuck, which otherwise goes unnoticed until someone looks
// at an empty dashboard.
type SyncWatchdog struct {
	snapshots  SnapshotReader
	logger     *logger.Logger
	cutoffHour int
}

// NewSyncWatchdog creates the watchdog job.
func NewSyncWatchdog(snapshots SnapshotReader, log *logger.Logger, cutoffHour int) *SyncWatchdog {
	return &SyncWatchdog{
		snapshots:  snapshots,
		logger:     log,
		cutoffHour: cutoffHour,
	}
}

func (j *SyncWatchdog) Name() string {
	return "sync_watchdog"
}

// Schedule fires two hours after the first-sync cutoff.
func (j *SyncWatchdog) Schedule() string {
	hour := (j.cutoffHour + 2) % 24
	return fmt.Sprintf("0 0 %d * * *", hour)
}

func (j *SyncWatchdog) Run(ctx context.Context) error {
	fecha := time.Now().Format(production.DateFormat)

	snap, err := j.snapshots.GetByDate(ctx, fecha)
	if err != nil {
		return fmt.Errorf("watchdog snapshot lookup: %w", err)
	}

	if snap == nil {
		j.logger.WithField("fecha", fecha).
			Warn("No production sync received today, upstream automation may be stuck")
	}

	return nil
}
