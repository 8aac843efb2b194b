// Package lessontest provides a behavioural test suite shared by every
// lesson.Repository implementation.
package lessontest

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
)

// Factory returns an empty repository with the schema already created.
type Factory func(t *testing.T) lesson.Repository

// Records returns a small fixed schedule: two lessons on 2025-02-26 given
// latest-first, and one on 2025-02-27.
func Records() []lesson.RawRecord {
	return []lesson.RawRecord{
		{
			Title:       "Физика",
			Start:       "2025-02-26T10:00:00+04:00",
			End:         "2025-02-26T11:40:00+04:00",
			Description: "<p>Лекции</p><p>Иванов И.И.</p>",
		},
		{
			Title:       "Программирование на Python",
			Start:       "2025-02-26T08:00:00+04:00",
			End:         "2025-02-26T09:35:00+04:00",
			Description: "Лабораторные работы Петрова А.Б., 2-ИАИТ-12ИАИТ-101",
		},
		{
			Title:       "Физика",
			Start:       "2025-02-27T08:00:00+04:00",
			End:         "2025-02-27T09:35:00+04:00",
			Description: "Практические занятия Иванов И.И.",
		},
	}
}

// Lessons builds Records with the default rules.
func Lessons(t *testing.T) []*lesson.Lesson {
	t.Helper()

	records := Records()
	out := make([]*lesson.Lesson, 0, len(records))
	for _, raw := range records {
		l, err := lesson.NewLesson(raw)
		require.NoError(t, err)
		out = append(out, l)
	}
	return out
}

// RunRepositoryTests exercises the lesson.Repository contract.
func RunRepositoryTests(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("EnsureSchemaIsIdempotent", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.EnsureSchema(ctx))
		require.NoError(t, repo.EnsureSchema(ctx))
	})

	t.Run("EmptyStore", func(t *testing.T) {
		repo := newRepo(t)

		entries, err := repo.FindBySubject(ctx, "Программирование")
		require.NoError(t, err)
		assert.Empty(t, entries)

		slots, err := repo.FindByDate(ctx, "2025-02-26")
		require.NoError(t, err)
		assert.Empty(t, slots)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats)
	})

	t.Run("ReplaceAllAssignsIDs", func(t *testing.T) {
		repo := newRepo(t)
		lessons := Lessons(t)

		require.NoError(t, repo.ReplaceAll(ctx, lessons))

		seen := make(map[int64]bool)
		for _, l := range lessons {
			assert.Positive(t, l.ID)
			assert.False(t, seen[l.ID], "duplicate id %d", l.ID)
			seen[l.ID] = true
		}

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, lesson.Stats{Lessons: 3, Mentions: 6}, stats)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		repo := newRepo(t)
		l, err := lesson.NewLesson(lesson.RawRecord{
			Title:       "Технологии и методы программирования",
			Start:       "2025-02-26T10:00:00+04:00",
			End:         "2025-02-26T11:40:00+04:00",
			Description: "Лекции",
		})
		require.NoError(t, err)
		require.NoError(t, repo.ReplaceAll(ctx, []*lesson.Lesson{l}))

		slots, err := repo.FindByDate(ctx, "2025-02-26")
		require.NoError(t, err)
		want := []lesson.DaySlot{{
			Title:     "Технологии и методы программирования",
			StartTime: "10:00",
			EndTime:   "11:40",
			Type:      lesson.TypeLecture,
		}}
		if diff := cmp.Diff(want, slots); diff != "" {
			t.Errorf("FindByDate mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("FindByDateOrdersByStartTime", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.ReplaceAll(ctx, Lessons(t)))

		slots, err := repo.FindByDate(ctx, "2025-02-26")
		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.Equal(t, "08:00", slots[0].StartTime)
		assert.Equal(t, lesson.TypeLab, slots[0].Type)
		assert.Equal(t, "10:00", slots[1].StartTime)
		assert.Equal(t, lesson.TypeLecture, slots[1].Type)

		none, err := repo.FindByDate(ctx, "2025-02-2")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("FindBySubject", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.ReplaceAll(ctx, Lessons(t)))

		entries, err := repo.FindBySubject(ctx, "Физ")
		require.NoError(t, err)
		want := []lesson.Entry{
			{Date: "2025-02-26", Title: "Физика", StartTime: "10:00", EndTime: "11:40", Description: "Лекции Иванов И.И."},
			{Date: "2025-02-27", Title: "Физика", StartTime: "08:00", EndTime: "09:35", Description: "Практические занятия Иванов И.И."},
		}
		if diff := cmp.Diff(want, entries); diff != "" {
			t.Errorf("FindBySubject mismatch (-want +got):\n%s", diff)
		}

		lower, err := repo.FindBySubject(ctx, "физика")
		require.NoError(t, err)
		assert.Empty(t, lower, "match must be case-sensitive")

		wildcard, err := repo.FindBySubject(ctx, "%")
		require.NoError(t, err)
		assert.Empty(t, wildcard, "wildcards must be literal")
	})

	t.Run("FindByDescription", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.ReplaceAll(ctx, Lessons(t)))

		entries, err := repo.FindByDescription(ctx, "Иванов И.И.")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "2025-02-26", entries[0].Date)
		assert.Equal(t, "2025-02-27", entries[1].Date)

		groups, err := repo.FindByDescription(ctx, "2-ИАИТ-12 ИАИТ-101")
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Программирование на Python", groups[0].Title)

		// The space-separated spelling lives only in the teachers table.
		spaced, err := repo.FindByDescription(ctx, "Иванов И И")
		require.NoError(t, err)
		assert.Empty(t, spaced)
	})

	t.Run("ReplaceAllDropsPreviousRows", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.ReplaceAll(ctx, Lessons(t)))
		require.NoError(t, repo.ReplaceAll(ctx, Lessons(t)[:1]))

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, lesson.Stats{Lessons: 1, Mentions: 2}, stats)

		require.NoError(t, repo.ReplaceAll(ctx, nil))
		stats, err = repo.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats)
	})
}
