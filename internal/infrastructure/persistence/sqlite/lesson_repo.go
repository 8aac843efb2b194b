package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
	"github.com/lk-schedule/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LESSON REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LessonRepository implements lesson.Repository for SQLite.
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
	if _, err := r.conn.DB().ExecContext(ctx, schemaSQL); err != nil {
		return shared.WrapError("sqlite", "EnsureSchema", shared.ErrStoreUnavailable, "failed to create schema", err)
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

	err := r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM teachers`); err != nil {
			return fmt.Errorf("failed to delete teachers: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM lessons`); err != nil {
			return fmt.Errorf("failed to delete lessons: %w", err)
		}

		insertLesson, err := tx.PrepareContext(ctx, `
			INSERT INTO lessons (
				title, start_datetime, end_datetime, description,
				date, start_time, end_time, type_lesson
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare lesson insert: %w", err)
		}
		defer insertLesson.Close()

		insertTeacher, err := tx.PrepareContext(ctx, `INSERT INTO teachers (lesson_id, teacher_name) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare teacher insert: %w", err)
		}
		defer insertTeacher.Close()

		for i, l := range lessons {
			res, err := insertLesson.ExecContext(ctx,
				l.Title,
				l.StartDatetime,
				l.EndDatetime,
				l.Description,
				l.Date,
				l.StartTime,
				l.EndTime,
				l.Type.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert lesson %d: %w", i, err)
			}

			ids[i], err = res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to read lesson id: %w", err)
			}

			for _, name := range l.Teachers {
				if _, err := insertTeacher.ExecContext(ctx, ids[i], name); err != nil {
					return fmt.Errorf("failed to insert teacher %q: %w", name, err)
				}
			}
		}

		return nil
	})
	if err != nil {
		if isNoSuchTable(err) {
			return shared.WrapError("sqlite", "ReplaceAll", shared.ErrSchemaMissing, "schema not created", err)
		}
		return fmt.Errorf("sqlite: replace lessons: %w", err)
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
	rows, err := r.conn.DB().QueryContext(ctx, `
		SELECT title, start_time, end_time, type_lesson
		FROM lessons
		WHERE date = ?
		ORDER BY start_time, id
	`, date)
	if err != nil {
		return nil, r.readError("FindByDate", err)
	}
	defer rows.Close()

	slots := make([]lesson.DaySlot, 0)
	for rows.Next() {
		var s lesson.DaySlot
		var typ string
		if err := rows.Scan(&s.Title, &s.StartTime, &s.EndTime, &typ); err != nil {
			return nil, fmt.Errorf("sqlite: scan day slot: %w", err)
		}
		s.Type = lesson.Type(typ)
		slots = append(slots, s)
	}

	return slots, rows.Err()
}

// FindBySubject returns lessons whose title contains substr (case-sensitive).
// instr keeps '%' and '_' literal, unlike LIKE.
func (r *LessonRepository) FindBySubject(ctx context.Context, substr string) ([]lesson.Entry, error) {
	return r.findEntries(ctx, "FindBySubject", `instr(title, ?) > 0`, substr)
}

// FindByDescription returns lessons whose normalized description contains fragment.
func (r *LessonRepository) FindByDescription(ctx context.Context, fragment string) ([]lesson.Entry, error) {
	return r.findEntries(ctx, "FindByDescription", `instr(description, ?) > 0`, fragment)
}

func (r *LessonRepository) findEntries(ctx context.Context, op, where, arg string) ([]lesson.Entry, error) {
	rows, err := r.conn.DB().QueryContext(ctx, `
		SELECT date, title, start_time, end_time, description
		FROM lessons
		WHERE `+where+`
		ORDER BY date, start_time, id
	`, arg)
	if err != nil {
		return nil, r.readError(op, err)
	}
	defer rows.Close()

	entries := make([]lesson.Entry, 0)
	for rows.Next() {
		var e lesson.Entry
		if err := rows.Scan(&e.Date, &e.Title, &e.StartTime, &e.EndTime, &e.Description); err != nil {
			return nil, fmt.Errorf("sqlite: scan entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Stats returns row counts of both tables.
func (r *LessonRepository) Stats(ctx context.Context) (lesson.Stats, error) {
	var stats lesson.Stats
	err := r.conn.DB().QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM lessons),
			(SELECT count(*) FROM teachers)
	`).Scan(&stats.Lessons, &stats.Mentions)
	if err != nil {
		return lesson.Stats{}, r.readError("Stats", err)
	}
	return stats, nil
}

func (r *LessonRepository) readError(op string, err error) error {
	if isNoSuchTable(err) {
		return shared.WrapError("sqlite", op, shared.ErrSchemaMissing, "schema not created", err)
	}
	return fmt.Errorf("sqlite: %s: %w", op, err)
}

// isNoSuchTable reports SQLITE_ERROR "no such table". The driver exposes only
// the numeric result code, which is shared by every generic SQL error.
func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
