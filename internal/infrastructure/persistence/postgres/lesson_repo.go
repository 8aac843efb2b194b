package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
	"github.com/lk-schedule/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LESSON REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LessonRepository implements lesson.Repository for PostgreSQL.
type LessonRepository struct {
	conn *Connection
}

// NewLessonRepository creates a new LessonRepository.
func NewLessonRepository(conn *Connection) *LessonRepository {
	return &LessonRepository{conn: conn}
}

var _ lesson.Repository = (*LessonRepository)(nil)

// EnsureSchema creates the lessons and teachers tables if they are missing.
func (r *LessonRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.conn.Exec(ctx, schemaSQL); err != nil {
		return shared.WrapError("postgres", "EnsureSchema", shared.ErrStoreUnavailable, "failed to create schema", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Write path
// ─────────────────────────────────────────────────────────────────────────────

// ReplaceAll wipes both tables and inserts lessons with their mentions in one
// transaction. Lesson IDs are assigned only after the commit succeeds.
func (r *LessonRepository) ReplaceAll(ctx context.Context, lessons []*lesson.Lesson) error {
	ids := make([]int64, len(lessons))

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM teachers`); err != nil {
			return fmt.Errorf("failed to delete teachers: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM lessons`); err != nil {
			return fmt.Errorf("failed to delete lessons: %w", err)
		}

		for i, l := range lessons {
			err := tx.QueryRow(ctx, `
				INSERT INTO lessons (
					title, start_datetime, end_datetime, description,
					date, start_time, end_time, type_lesson
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id
			`,
				l.Title,
				l.StartDatetime,
				l.EndDatetime,
				l.Description,
				l.Date,
				l.StartTime,
				l.EndTime,
				l.Type.String(),
			).Scan(&ids[i])
			if err != nil {
				return fmt.Errorf("failed to insert lesson %d: %w", i, err)
			}
		}

		batch := &pgx.Batch{}
		queued := 0
		for i, l := range lessons {
			for _, name := range l.Teachers {
				batch.Queue(`INSERT INTO teachers (lesson_id, teacher_name) VALUES ($1, $2)`, ids[i], name)
				queued++
			}
		}
		if queued == 0 {
			return nil
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for range queued {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("failed to insert teacher: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		if IsUndefinedTable(err) {
			return shared.WrapError("postgres", "ReplaceAll", shared.ErrSchemaMissing, "schema not created", err)
		}
		return fmt.Errorf("postgres: replace lessons: %w", err)
	}

	for i, l := range lessons {
		l.ID = ids[i]
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Read path
// ─────────────────────────────────────────────────────────────────────────────

// FindByDate returns lessons of one day ordered by start time.
func (r *LessonRepository) FindByDate(ctx context.Context, date string) ([]lesson.DaySlot, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT title, start_time, end_time, type_lesson
		FROM lessons
		WHERE date = $1
		ORDER BY start_time, id
	`, date)
	if err != nil {
		return nil, readError("FindByDate", err)
	}
	defer rows.Close()

	slots := make([]lesson.DaySlot, 0)
	for rows.Next() {
		var s lesson.DaySlot
		var typ string
		if err := rows.Scan(&s.Title, &s.StartTime, &s.EndTime, &typ); err != nil {
			return nil, fmt.Errorf("postgres: scan day slot: %w", err)
		}
		s.Type = lesson.Type(typ)
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, readError("FindByDate", err)
	}

	return slots, nil
}

// FindBySubject returns lessons whose title contains substr (case-sensitive).
func (r *LessonRepository) FindBySubject(ctx context.Context, substr string) ([]lesson.Entry, error) {
	return r.findEntries(ctx, "FindBySubject", `strpos(title, $1) > 0`, substr)
}

// FindByDescription returns lessons whose normalized description contains fragment.
func (r *LessonRepository) FindByDescription(ctx context.Context, fragment string) ([]lesson.Entry, error) {
	return r.findEntries(ctx, "FindByDescription", `strpos(description, $1) > 0`, fragment)
}

func (r *LessonRepository) findEntries(ctx context.Context, op, where, arg string) ([]lesson.Entry, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT date, title, start_time, end_time, description
		FROM lessons
		WHERE `+where+`
		ORDER BY date, start_time, id
	`, arg)
	if err != nil {
		return nil, readError(op, err)
	}
	defer rows.Close()

	entries := make([]lesson.Entry, 0)
	for rows.Next() {
		var e lesson.Entry
		if err := rows.Scan(&e.Date, &e.Title, &e.StartTime, &e.EndTime, &e.Description); err != nil {
			return nil, fmt.Errorf("postgres: scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, readError(op, err)
	}

	return entries, nil
}

// Stats returns row counts of both tables.
func (r *LessonRepository) Stats(ctx context.Context) (lesson.Stats, error) {
	var stats lesson.Stats
	err := r.conn.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM lessons),
			(SELECT count(*) FROM teachers)
	`).Scan(&stats.Lessons, &stats.Mentions)
	if err != nil {
		return lesson.Stats{}, readError("Stats", err)
	}
	return stats, nil
}

// readError reports a missing table as shared.ErrSchemaMissing, like the
// write path does.
func readError(op string, err error) error {
	if IsUndefinedTable(err) {
		return shared.WrapError("postgres", op, shared.ErrSchemaMissing, "schema not created", err)
	}
	return fmt.Errorf("postgres: %s: %w", op, err)
}
