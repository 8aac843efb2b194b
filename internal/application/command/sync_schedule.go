package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC SCHEDULE COMMAND
// Fetches the schedule for a date range and loads it.
// ══════════════════════════════════════════════════════════════════════════════

// SyncScheduleCommand contains the date range to fetch.
type SyncScheduleCommand struct {
	Start time.Time
	End   time.Time
}

// Validate validates the command.
func (c SyncScheduleCommand) Validate() error {
	if c.Start.IsZero() || c.End.IsZero() {
		return errors.New("sync_schedule: start and end are required")
	}
	if !c.End.After(c.Start) {
		return errors.New("sync_schedule: end must be after start")
	}
	return nil
}

// ScheduleFetcher returns raw lesson records for a date range.
type ScheduleFetcher interface {
	FetchLessons(ctx context.Context, start, end time.Time) ([]lesson.RawRecord, error)
}

// SyncScheduleHandler handles the SyncScheduleCommand.
type SyncScheduleHandler struct {
	fetcher ScheduleFetcher
	loader  *LoadScheduleHandler
}

// NewSyncScheduleHandler creates a new SyncScheduleHandler.
func NewSyncScheduleHandler(fetcher ScheduleFetcher, loader *LoadScheduleHandler) *SyncScheduleHandler {
	return &SyncScheduleHandler{
		fetcher: fetcher,
		loader:  loader,
	}
}

// Handle executes the sync schedule command.
func (h *SyncScheduleHandler) Handle(ctx context.Context, cmd SyncScheduleCommand) (*LoadScheduleResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	records, err := h.fetcher.FetchLessons(ctx, cmd.Start, cmd.End)
	if err != nil {
		return nil, fmt.Errorf("sync_schedule: fetch failed: %w", err)
	}

	result, err := h.loader.Handle(ctx, LoadScheduleCommand{Records: records})
	if err != nil {
		return nil, fmt.Errorf("sync_schedule: %w", err)
	}

	return result, nil
}
