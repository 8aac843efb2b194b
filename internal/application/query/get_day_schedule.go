// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"strings"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
	"github.com/lk-schedule/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DAY SCHEDULE QUERY
// Расписание на конкретный день, по возрастанию времени начала.
// ══════════════════════════════════════════════════════════════════════════════

// GetDayScheduleQuery содержит параметры запроса расписания на день.
type GetDayScheduleQuery struct {
	// Date - дата в формате YYYY-MM-DD, точное совпадение.
	Date string
}

// Validate нормализует параметры запроса.
// Пустая или неизвестная дата не ошибка: результат просто пуст.
func (q *GetDayScheduleQuery) Validate() error {
	q.Date = strings.TrimSpace(q.Date)
	return nil
}

// GetDayScheduleResult - результат запроса.
type GetDayScheduleResult struct {
	Date  string
	Slots []lesson.DaySlot
}

// Found сообщает, есть ли занятия на этот день.
func (r *GetDayScheduleResult) Found() bool {
	return len(r.Slots) > 0
}

// GetDayScheduleHandler обрабатывает GetDayScheduleQuery.
type GetDayScheduleHandler struct {
	repo lesson.Repository
}

// NewGetDayScheduleHandler создаёт обработчик.
func NewGetDayScheduleHandler(repo lesson.Repository) *GetDayScheduleHandler {
	return &GetDayScheduleHandler{repo: repo}
}

// Handle выполняет запрос.
func (h *GetDayScheduleHandler) Handle(ctx context.Context, query GetDayScheduleQuery) (*GetDayScheduleResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetDaySchedule", shared.ErrValidation, err.Error(), err)
	}

	slots, err := h.repo.FindByDate(ctx, query.Date)
	if err != nil {
		return nil, shared.WrapError("query", "GetDaySchedule", shared.ErrStoreUnavailable, "find by date failed", err)
	}

	return &GetDayScheduleResult{
		Date:  query.Date,
		Slots: slots,
	}, nil
}
