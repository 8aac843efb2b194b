package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
)

type fakeFetcher struct {
	records    []lesson.RawRecord
	err        error
	start, end time.Time
}

func (f *fakeFetcher) FetchLessons(_ context.Context, start, end time.Time) ([]lesson.RawRecord, error) {
	f.start, f.end = start, end
	return f.records, f.err
}

func TestSyncScheduleCommand_Validate(t *testing.T) {
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.Error(t, SyncScheduleCommand{}.Validate())
	assert.Error(t, SyncScheduleCommand{Start: now, End: now}.Validate())
	assert.Error(t, SyncScheduleCommand{Start: now, End: now.Add(-time.Hour)}.Validate())
	assert.NoError(t, SyncScheduleCommand{Start: now, End: now.Add(time.Hour)}.Validate())
}

func TestSyncScheduleHandler_Handle(t *testing.T) {
	repo := &fakeRepository{}
	fetcher := &fakeFetcher{records: sampleRecords()}
	h := NewSyncScheduleHandler(fetcher, NewLoadScheduleHandler(repo, LoadScheduleHandlerConfig{}))

	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	result, err := h.Handle(context.Background(), SyncScheduleCommand{Start: start, End: end})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Lessons)
	assert.Equal(t, start, fetcher.start)
	assert.Equal(t, end, fetcher.end)
	assert.Len(t, repo.lessons, 2)
}

func TestSyncScheduleHandler_FetchError(t *testing.T) {
	repo := &fakeRepository{}
	fetchErr := errors.New("connection refused")
	h := NewSyncScheduleHandler(&fakeFetcher{err: fetchErr}, NewLoadScheduleHandler(repo, LoadScheduleHandlerConfig{}))

	_, err := h.Handle(context.Background(), SyncScheduleCommand{
		Start: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, fetchErr)
	assert.Zero(t, repo.replaced)
}
