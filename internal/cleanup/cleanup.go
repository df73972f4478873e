// Package cleanup owns retention of recorded GPS fixes and session expiry.
// Location history is operational data, not an archive: a nightly purge
// wipes it and marks overdue sessions inactive.
package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Joncarre/aplicacion-de-seguimiento/fleetdb"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/clock"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/logging"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/metrics"
)

// PurgeHour is the local hour of day the nightly run fires at.
const PurgeHour = 4

// Stats describes the location table before a purge.
type Stats struct {
	TotalLocations int64                        `json:"totalLocations"`
	PerLine        []fleetdb.LineLocationCount  `json:"perLine"`
	OldestRecorded *time.Time                   `json:"oldestRecorded,omitempty"`
	NewestRecorded *time.Time                   `json:"newestRecorded,omitempty"`
}

// Job runs the nightly retention pass and exposes the same operations for
// on-demand admin use.
type Job struct {
	db      *fleetdb.Client
	logger  *slog.Logger
	clock   clock.Clock
	metrics *metrics.Metrics

	started atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewJob(db *fleetdb.Client, logger *slog.Logger, clk clock.Clock, m *metrics.Metrics) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{
		db:      db,
		logger:  logger.With(slog.String("component", "cleanup")),
		clock:   clk,
		metrics: m,
	}
}

// Stats reports the current size and age span of the location table.
func (j *Job) Stats(ctx context.Context) (Stats, error) {
	total, err := j.db.Queries.CountLocations(ctx)
	if err != nil {
		return Stats{}, err
	}
	perLine, err := j.db.Queries.CountLocationsByLine(ctx)
	if err != nil {
		return Stats{}, err
	}
	oldest, newest, err := j.db.Queries.LocationTimeRange(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalLocations: total,
		PerLine:        perLine,
		OldestRecorded: oldest,
		NewestRecorded: newest,
	}, nil
}

// Purge logs pre-purge statistics, then deletes every location row.
func (j *Job) Purge(ctx context.Context) (int64, error) {
	stats, err := j.Stats(ctx)
	if err != nil {
		logging.LogError(j.logger, "failed to collect pre-purge stats", err)
	} else {
		logging.LogOperation(j.logger, "pre_purge_stats",
			slog.Int64("total_locations", stats.TotalLocations),
			slog.Int("lines_with_data", len(stats.PerLine)))
	}

	purged, err := j.db.Queries.DeleteAllLocations(ctx)
	if err != nil {
		return 0, err
	}
	if j.metrics != nil {
		j.metrics.CountLocationsPurged(purged)
	}
	logging.LogOperation(j.logger, "locations_purged", slog.Int64("count", purged))
	return purged, nil
}

// RunOnce is one nightly pass: expire overdue sessions, then purge the
// location history.
func (j *Job) RunOnce(ctx context.Context) error {
	expired, err := j.db.Queries.ExpireSessions(ctx, j.clock.Now())
	if err != nil {
		return err
	}
	if expired > 0 {
		logging.LogOperation(j.logger, "sessions_expired", slog.Int64("count", expired))
	}

	_, err = j.Purge(ctx)
	return err
}

// Start launches the nightly loop. Idempotent; call Shutdown to stop it.
func (j *Job) Start() {
	if !j.started.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	j.wg.Add(1)
	j.cancel = cancel

	go func() {
		defer j.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				j.logger.Error("panic in cleanup loop", "error", r)
			}
		}()

		for {
			wait := j.untilNextRun()
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
				if err := j.RunOnce(ctx); err != nil {
					logging.LogError(j.logger, "nightly cleanup failed", err)
				}
			case <-ctx.Done():
				timer.Stop()
				return
			}
		}
	}()

	logging.LogOperation(j.logger, "cleanup_job_started", slog.Int("purge_hour", PurgeHour))
}

// Shutdown stops the nightly loop and waits for it to exit. Safe to call
// multiple times and without a prior Start.
func (j *Job) Shutdown() {
	if j.cancel != nil {
		j.cancel()
	}
	j.wg.Wait()
}

// untilNextRun computes the delay to the next occurrence of PurgeHour in
// the clock's local timezone.
func (j *Job) untilNextRun() time.Duration {
	now := j.clock.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), PurgeHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
