package query

import (
	"context"

	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
	"github.com/lk-schedule/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET TEACHER LESSONS QUERY
// Поиск занятий преподавателя.
//
// Ищет подстроку в нормализованном описании занятия, а не в таблице teachers,
// и заново определяет тип занятия по описанию. Таблица teachers этим запросом
// не читается.
// ══════════════════════════════════════════════════════════════════════════════

// GetTeacherLessonsQuery содержит фрагмент ФИО преподавателя.
type GetTeacherLessonsQuery struct {
	Teacher string
}

// TeacherLesson - строка результата поиска по преподавателю.
type TeacherLesson struct {
	Date      string
	Title     string
	StartTime string
	EndTime   string
	Type      lesson.Type
}

// GetTeacherLessonsResult - занятия преподавателя в порядке (date, start_time).
type GetTeacherLessonsResult struct {
	Teacher string
	Lessons []TeacherLesson
}

// Found сообщает, найдено ли хотя бы одно занятие.
func (r *GetTeacherLessonsResult) Found() bool {
	return len(r.Lessons) > 0
}

// GetTeacherLessonsHandler обрабатывает GetTeacherLessonsQuery.
type GetTeacherLessonsHandler struct {
	repo       lesson.Repository
	classifier *lesson.Classifier
}

// GetTeacherLessonsHandlerConfig - настройки обработчика.
type GetTeacherLessonsHandlerConfig struct {
	// Classifier определяет тип занятия при чтении (словарь по умолчанию, если nil).
	Classifier *lesson.Classifier
}

// NewGetTeacherLessonsHandler создаёт обработчик.
func NewGetTeacherLessonsHandler(repo lesson.Repository, config GetTeacherLessonsHandlerConfig) *GetTeacherLessonsHandler {
	if config.Classifier == nil {
		config.Classifier = lesson.NewClassifier(lesson.Vocabulary())
	}
	return &GetTeacherLessonsHandler{
		repo:       repo,
		classifier: config.Classifier,
	}
}

// Handle выполняет запрос. Пустой результат не ошибка.
func (h *GetTeacherLessonsHandler) Handle(ctx context.Context, query GetTeacherLessonsQuery) (*GetTeacherLessonsResult, error) {
	entries, err := h.repo.FindByDescription(ctx, query.Teacher)
	if err != nil {
		return nil, shared.WrapError("query", "GetTeacherLessons", shared.ErrStoreUnavailable, "find by description failed", err)
	}

	lessons := make([]TeacherLesson, 0, len(entries))
	for _, e := range entries {
		lessons = append(lessons, TeacherLesson{
			Date:      e.Date,
			Title:     e.Title,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Type:      h.classifier.Classify(e.Description),
		})
	}

	return &GetTeacherLessonsResult{
		Teacher: query.Teacher,
		Lessons: lessons,
	}, nil
}
