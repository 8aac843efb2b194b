// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the system.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
	"github.com/lk-schedule/schedule-hub/internal/domain/shared"
	"github.com/lk-schedule/schedule-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOAD SCHEDULE COMMAND
// Replaces the whole store with the given raw records.
// Every record is built before the store is touched; the replace itself runs
// in one transaction, so a failure leaves the previous contents in place.
// ══════════════════════════════════════════════════════════════════════════════

// LoadScheduleCommand contains the raw records of one load run.
type LoadScheduleCommand struct {
	// Records is the full record list returned by the fetcher.
	Records []lesson.RawRecord

	// RunID identifies the run in logs. Generated when empty.
	RunID string
}

// LoadScheduleResult contains the result of a load run.
type LoadScheduleResult struct {
	// RunID identifies the run in logs.
	RunID string

	// Lessons is the number of lessons written.
	Lessons int

	// Mentions is the number of teacher mentions written.
	Mentions int

	// ByType counts lessons per lesson type.
	ByType map[lesson.Type]int

	// LoadedAt is when the transaction committed.
	LoadedAt time.Time

	// Duration is the wall time of the run.
	Duration time.Duration
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// LoadScheduleHandler handles the LoadScheduleCommand.
// Loads are serialized: at most one runs at a time.
type LoadScheduleHandler struct {
	repo    lesson.Repository
	builder *lesson.Builder
	logger  *slog.Logger

	mu sync.Mutex
}

// LoadScheduleHandlerConfig contains configuration for the handler.
type LoadScheduleHandlerConfig struct {
	// Builder turns raw records into lessons (default rules when nil).
	Builder *lesson.Builder

	// Logger for structured logging.
	Logger *slog.Logger
}

// NewLoadScheduleHandler creates a new LoadScheduleHandler.
func NewLoadScheduleHandler(repo lesson.Repository, config LoadScheduleHandlerConfig) *LoadScheduleHandler {
	if config.Builder == nil {
		config.Builder = lesson.DefaultBuilder()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &LoadScheduleHandler{
		repo:    repo,
		builder: config.Builder,
		logger:  config.Logger,
	}
}

// Handle executes the load schedule command.
func (h *LoadScheduleHandler) Handle(ctx context.Context, cmd LoadScheduleCommand) (*LoadScheduleResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	started := time.Now()
	runID := cmd.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	lessons, err := h.buildLessons(cmd.Records)
	if err != nil {
		h.logger.Error("schedule load rejected", logger.RunID(runID), "error", err)
		return nil, err
	}

	if err := h.repo.ReplaceAll(ctx, lessons); err != nil {
		h.logger.Error("schedule load failed", logger.RunID(runID), "error", err)
		return nil, shared.WrapError("schedule", "Load", shared.ErrLoadAborted, "replace failed", err)
	}

	result := &LoadScheduleResult{
		RunID:    runID,
		Lessons:  len(lessons),
		ByType:   make(map[lesson.Type]int),
		LoadedAt: time.Now().UTC(),
	}
	for _, l := range lessons {
		result.Mentions += len(l.Teachers)
		result.ByType[l.Type]++
	}
	result.Duration = time.Since(started)

	h.logger.Info("schedule loaded",
		logger.RunID(runID),
		"lessons", result.Lessons,
		"mentions", result.Mentions,
		"duration", result.Duration.String(),
	)

	return result, nil
}

// buildLessons builds every record or fails on the first malformed one.
func (h *LoadScheduleHandler) buildLessons(records []lesson.RawRecord) ([]*lesson.Lesson, error) {
	lessons := make([]*lesson.Lesson, 0, len(records))
	for i, raw := range records {
		l, err := h.builder.Build(raw)
		if err != nil {
			return nil, shared.WrapError("schedule", "Load", shared.ErrInvalidInput,
				fmt.Sprintf("record %d (%q) is malformed", i, raw.Title), err)
		}
		lessons = append(lessons, l)
	}
	return lessons, nil
}
