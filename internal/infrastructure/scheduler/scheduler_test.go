package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name    string
	err     error
	delay   time.Duration
	runs    atomic.Int32
	active  atomic.Int32
	overlap atomic.Bool
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "test job " + j.name }

func (j *countingJob) Run(ctx context.Context) error {
	if j.active.Add(1) > 1 {
		j.overlap.Store(true)
	}
	defer j.active.Add(-1)

	j.runs.Add(1)
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return j.err
}

// everyTick is due immediately after every run.
type everyTick struct{}

func (everyTick) Next(t time.Time) time.Time { return t }
func (everyTick) String() string             { return "every tick" }

func newTestScheduler() *Scheduler {
	return New(Config{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		TickInterval: 10 * time.Millisecond,
	})
}

func TestScheduler_Register(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.Register(&countingJob{name: "a"}, NewIntervalSchedule(time.Hour)))
	assert.ErrorIs(t, s.Register(&countingJob{name: "a"}, NewIntervalSchedule(time.Hour)), ErrJobAlreadyExists)
	assert.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Hour)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&countingJob{name: "b"}, nil), ErrNilSchedule)

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, "@every 1h0m0s", jobs[0].Schedule)
	assert.True(t, jobs[0].Enabled)
}

func TestScheduler_RunsDueJobsWithoutOverlap(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "slow", delay: 30 * time.Millisecond}
	require.NoError(t, s.Register(job, everyTick{}))

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	assert.Eventually(t, func() bool { return job.runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.False(t, job.overlap.Load())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestScheduler_RunNowWaitsForRunningJob(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "sync", delay: 20 * time.Millisecond}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.RunNow(context.Background(), "sync")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), job.runs.Load())
	assert.False(t, job.overlap.Load())
}

func TestScheduler_RunNowRecordsResult(t *testing.T) {
	s := newTestScheduler()
	jobErr := errors.New("cabinet down")
	require.NoError(t, s.Register(&countingJob{name: "ok"}, NewIntervalSchedule(time.Hour)))
	require.NoError(t, s.Register(&countingJob{name: "bad", err: jobErr}, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "ok")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Manual)

	result, err = s.RunNow(context.Background(), "bad")
	assert.ErrorIs(t, err, jobErr)
	assert.False(t, result.Success)

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	history := s.GetHistory(0)
	require.Len(t, history, 2)
	assert.Equal(t, "ok", history[0].JobName)
	assert.Equal(t, "bad", history[1].JobName)

	snap := s.Metrics().Snapshot()
	assert.Equal(t, int64(2), snap.TotalExecutions)
	assert.Equal(t, int64(1), snap.TotalFailures)
	assert.InDelta(t, 0.5, snap.SuccessRate, 0.001)

	jobs := s.ListJobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "bad", jobs[0].Name)
	assert.Equal(t, int64(1), jobs[0].FailCount)
	require.NotNil(t, jobs[0].LastResult)
}

func TestScheduler_DisabledJobIsSkipped(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "off"}
	require.NoError(t, s.Register(job, everyTick{}))
	require.NoError(t, s.DisableJob("off"))
	assert.ErrorIs(t, s.DisableJob("missing"), ErrJobNotFound)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Stop())

	assert.Zero(t, job.runs.Load())
}

func TestScheduler_HistoryIsBounded(t *testing.T) {
	s := New(Config{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxHistorySize: 2,
	})
	require.NoError(t, s.Register(&countingJob{name: "j"}, NewIntervalSchedule(time.Hour)))

	for range 5 {
		_, _ = s.RunNow(context.Background(), "j")
	}

	assert.Len(t, s.GetHistory(0), 2)
	assert.Len(t, s.GetHistory(1), 1)
}
