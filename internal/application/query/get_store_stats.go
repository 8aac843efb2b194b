package query

import (
	"context"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
	"github.com/lk-schedule/schedule-hub/internal/domain/shared"
)

// GetStoreStatsHandler возвращает количество занятий и упоминаний в хранилище.
type GetStoreStatsHandler struct {
	repo lesson.Repository
}

// NewGetStoreStatsHandler создаёт обработчик.
func NewGetStoreStatsHandler(repo lesson.Repository) *GetStoreStatsHandler {
	return &GetStoreStatsHandler{repo: repo}
}

// Handle выполняет запрос.
func (h *GetStoreStatsHandler) Handle(ctx context.Context) (lesson.Stats, error) {
	stats, err := h.repo.Stats(ctx)
	if err != nil {
		return lesson.Stats{}, shared.WrapError("query", "GetStoreStats", shared.ErrStoreUnavailable, "stats failed", err)
	}
	return stats, nil
}
