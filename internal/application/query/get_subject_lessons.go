package query

import (
	"context"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
	"github.com/lk-schedule/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SUBJECT LESSONS QUERY
// Все занятия, в названии которых есть подстрока. Регистр учитывается.
// ══════════════════════════════════════════════════════════════════════════════

// GetSubjectLessonsQuery содержит подстроку названия предмета.
type GetSubjectLessonsQuery struct {
	Subject string
}

// GetSubjectLessonsResult - занятия по предмету в порядке (date, start_time).
type GetSubjectLessonsResult struct {
	Subject string
	Entries []lesson.Entry
}

// Found сообщает, найдено ли хотя бы одно занятие.
func (r *GetSubjectLessonsResult) Found() bool {
	return len(r.Entries) > 0
}

// GetSubjectLessonsHandler обрабатывает GetSubjectLessonsQuery.
type GetSubjectLessonsHandler struct {
	repo lesson.Repository
}

// NewGetSubjectLessonsHandler создаёт обработчик.
func NewGetSubjectLessonsHandler(repo lesson.Repository) *GetSubjectLessonsHandler {
	return &GetSubjectLessonsHandler{repo: repo}
}

// Handle выполняет запрос. Пустой результат не ошибка.
func (h *GetSubjectLessonsHandler) Handle(ctx context.Context, query GetSubjectLessonsQuery) (*GetSubjectLessonsResult, error) {
	entries, err := h.repo.FindBySubject(ctx, query.Subject)
	if err != nil {
		return nil, shared.WrapError("query", "GetSubjectLessons", shared.ErrStoreUnavailable, "find by subject failed", err)
	}

	return &GetSubjectLessonsResult{
		Subject: query.Subject,
		Entries: entries,
	}, nil
}
