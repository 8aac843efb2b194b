package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
	"github.com/lk-schedule/schedule-hub/internal/domain/lesson/lessontest"
	"github.com/lk-schedule/schedule-hub/internal/domain/shared"
)

func openTestDB(t *testing.T) *Connection {
	t.Helper()

	conn, err := Open(context.Background(), Config{
		Path:          filepath.Join(t.TempDir(), "schedule.db"),
		BusyTimeoutMS: 1000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func newTestRepository(t *testing.T) *LessonRepository {
	t.Helper()

	repo := NewLessonRepository(openTestDB(t))
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestLessonRepository(t *testing.T) {
	lessontest.RunRepositoryTests(t, func(t *testing.T) lesson.Repository {
		return newTestRepository(t)
	})
}

func TestLessonRepository_ReplaceAllIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	require.NoError(t, repo.ReplaceAll(ctx, lessontest.Lessons(t)))

	// Fail on the very last mention insert, after both deletes and every
	// lesson insert have already run inside the transaction.
	_, err := repo.conn.DB().ExecContext(ctx, `
		CREATE TRIGGER fail_teacher BEFORE INSERT ON teachers
		WHEN NEW.teacher_name = 'Сбой С С'
		BEGIN
			SELECT RAISE(ABORT, 'injected failure');
		END;
	`)
	require.NoError(t, err)

	broken := lessontest.Lessons(t)
	broken[2].Teachers = append(broken[2].Teachers, "Сбой С С")

	err = repo.ReplaceAll(ctx, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected failure")
	for _, l := range broken {
		assert.Zero(t, l.ID, "ids must not be assigned on failure")
	}

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, lesson.Stats{Lessons: 3, Mentions: 6}, stats)

	var orphans int
	err = repo.conn.DB().QueryRowContext(ctx, `
		SELECT count(*) FROM teachers t
		LEFT JOIN lessons l ON l.id = t.lesson_id
		WHERE l.id IS NULL
	`).Scan(&orphans)
	require.NoError(t, err)
	assert.Zero(t, orphans)
}

func TestLessonRepository_ForeignKeysEnforced(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.conn.DB().ExecContext(context.Background(),
		`INSERT INTO teachers (lesson_id, teacher_name) VALUES (999, 'Иванов И.И.')`)
	assert.Error(t, err)
}

func TestLessonRepository_SchemaMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewLessonRepository(openTestDB(t))

	_, err := repo.FindByDate(ctx, "2025-02-26")
	assert.ErrorIs(t, err, shared.ErrSchemaMissing)

	err = repo.ReplaceAll(ctx, lessontest.Lessons(t))
	assert.ErrorIs(t, err, shared.ErrSchemaMissing)
}

func TestOpen_InMemory(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, Config{Path: ":memory:", BusyTimeoutMS: 1000})
	require.NoError(t, err)
	defer conn.Close()

	repo := NewLessonRepository(conn)
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.ReplaceAll(ctx, lessontest.Lessons(t)))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Lessons)
}

func TestConnection_CloseIsIdempotent(t *testing.T) {
	conn := openTestDB(t)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())

	err := conn.WithTx(context.Background(), nil)
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestConfig_DSN(t *testing.T) {
	dsn := DefaultConfig().DSN()

	assert.Contains(t, dsn, "file:schedule.db?")
	assert.Contains(t, dsn, "foreign_keys%281%29")
	assert.Contains(t, dsn, "busy_timeout%285000%29")
}
