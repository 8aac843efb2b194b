package lesson

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// READ MODELS
// ══════════════════════════════════════════════════════════════════════════════

// DaySlot - строка расписания на день.
type DaySlot struct {
	Title     string
	StartTime string
	EndTime   string
	Type      Type
}

// Entry - занятие с описанием; результат поиска по предмету или по тексту описания.
type Entry struct {
	Date        string
	Title       string
	StartTime   string
	EndTime     string
	Description string
}

// Stats - количество строк в хранилище.
type Stats struct {
	Lessons  int
	Mentions int
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет контракт хранилища расписания.
type Repository interface {
	// EnsureSchema создаёт таблицы lessons и teachers, если их нет.
	// Безопасно вызывать при каждом запуске.
	EnsureSchema(ctx context.Context) error

	// ReplaceAll в одной транзакции удаляет все упоминания, затем все занятия,
	// и вставляет переданные занятия вместе с упоминаниями. Присваивает Lesson.ID.
	// При ошибке прежнее содержимое остаётся нетронутым.
	ReplaceAll(ctx context.Context, lessons []*Lesson) error

	// FindByDate возвращает занятия на дату, упорядоченные по start_time.
	FindByDate(ctx context.Context, date string) ([]DaySlot, error)

	// FindBySubject ищет подстроку в названии с учётом регистра,
	// порядок - (date, start_time).
	FindBySubject(ctx context.Context, substr string) ([]Entry, error)

	// FindByDescription ищет подстроку в нормализованном описании с учётом
	// регистра, порядок - (date, start_time).
	FindByDescription(ctx context.Context, fragment string) ([]Entry, error)

	// Stats возвращает количество занятий и упоминаний.
	Stats(ctx context.Context) (Stats, error)
}
