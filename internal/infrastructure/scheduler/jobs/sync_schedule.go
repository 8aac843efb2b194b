// Package jobs contains the scheduled jobs of the schedule hub.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lk-schedule/schedule-hub/internal/application/command"
	"github.com/lk-schedule/schedule-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC SCHEDULE JOB
// ══════════════════════════════════════════════════════════════════════════════

// Syncer fetches and loads the schedule for a date range.
type Syncer interface {
	Handle(ctx context.Context, cmd command.SyncScheduleCommand) (*command.LoadScheduleResult, error)
}

// WindowFunc returns the date range to fetch at the given moment.
type WindowFunc func(now time.Time) (start, end time.Time)

// FixedWindow always returns the same range.
func FixedWindow(start, end time.Time) WindowFunc {
	return func(time.Time) (time.Time, time.Time) { return start, end }
}

// SyncScheduleConfig contains configuration for the sync job.
type SyncScheduleConfig struct {
	// Window picks the range to fetch. Defaults to the current semester.
	Window WindowFunc

	// Timeout is the maximum duration of one run, fetch and load included.
	Timeout time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultSyncScheduleConfig returns sensible defaults.
func DefaultSyncScheduleConfig() SyncScheduleConfig {
	return SyncScheduleConfig{
		Window:  timeutil.SemesterWindow,
		Timeout: 5 * time.Minute,
		Now:     timeutil.Now,
	}
}

// SyncScheduleJob re-fetches the whole schedule and replaces the stored one.
type SyncScheduleJob struct {
	syncer Syncer
	config SyncScheduleConfig
	logger *slog.Logger

	lastResult atomic.Pointer[command.LoadScheduleResult]
}

// NewSyncScheduleJob creates a new sync job.
func NewSyncScheduleJob(syncer Syncer, config SyncScheduleConfig) *SyncScheduleJob {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Window == nil {
		config.Window = timeutil.SemesterWindow
	}
	if config.Now == nil {
		config.Now = timeutil.Now
	}

	return &SyncScheduleJob{
		syncer: syncer,
		config: config,
		logger: config.Logger,
	}
}

// Name returns the job name.
func (j *SyncScheduleJob) Name() string {
	return "sync_schedule"
}

// Description returns a human-readable description.
func (j *SyncScheduleJob) Description() string {
	return "Fetches the schedule from the personal cabinet and reloads the store"
}

// Run executes the sync job.
func (j *SyncScheduleJob) Run(ctx context.Context) error {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	start, end := j.config.Window(j.config.Now())
	j.logger.Info("syncing schedule",
		"start", timeutil.FormatDate(start),
		"end", timeutil.FormatDate(end),
	)

	result, err := j.syncer.Handle(ctx, command.SyncScheduleCommand{Start: start, End: end})
	if err != nil {
		return fmt.Errorf("sync_schedule job: %w", err)
	}

	j.lastResult.Store(result)
	return nil
}

// LastResult returns the result of the last successful run, or nil.
func (j *SyncScheduleJob) LastResult() *command.LoadScheduleResult {
	return j.lastResult.Load()
}
