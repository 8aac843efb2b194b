package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lk-schedule/schedule-hub/internal/application/command"
	"github.com/lk-schedule/schedule-hub/internal/application/query"
	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRESENTER
// Форматирует результаты запросов для вывода в терминал.
// Ширина колонок считается в символах, а не в байтах.
// ══════════════════════════════════════════════════════════════════════════════

// Тексты, которые видит пользователь.
const (
	msgDayNotFound     = "Расписание на этот день не найдено."
	msgSubjectNotFound = "Предмет не найден."
	msgTeacherNotFound = "Преподаватель не найден."
)

// Presenter пишет отформатированные результаты в out.
type Presenter struct {
	out io.Writer
}

// NewPresenter создаёт презентер.
func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

// ─────────────────────────────────────────────────────────────────────────────
// Запросы
// ─────────────────────────────────────────────────────────────────────────────

// Day выводит расписание на день:
// "<дата> - <название:50> <начало:5> - <конец:5>   Тип: <тип>".
func (p *Presenter) Day(res *query.GetDayScheduleResult) {
	if !res.Found() {
		fmt.Fprintln(p.out, msgDayNotFound)
		return
	}
	for _, s := range res.Slots {
		fmt.Fprintf(p.out, "%s - %-50s %-5s - %-5s   Тип: %s\n", res.Date, s.Title, s.StartTime, s.EndTime, s.Type)
	}
}

// Subject выводит занятия по предмету вместе с описанием.
func (p *Presenter) Subject(res *query.GetSubjectLessonsResult) {
	if !res.Found() {
		fmt.Fprintln(p.out, msgSubjectNotFound)
		return
	}
	for _, e := range res.Entries {
		fmt.Fprintf(p.out, "%s - %-50s %-5s - %-5s\n", e.Date, e.Title, e.StartTime, e.EndTime)
		fmt.Fprintf(p.out, "Описание:\n%s\n\n", e.Description)
	}
}

// Teacher выводит занятия преподавателя с заголовком-счётчиком.
func (p *Presenter) Teacher(res *query.GetTeacherLessonsResult) {
	if !res.Found() {
		fmt.Fprintln(p.out, msgTeacherNotFound)
		return
	}
	fmt.Fprintf(p.out, "\nНайдено %d занятий для преподавателя %s:\n", len(res.Lessons), res.Teacher)
	for _, l := range res.Lessons {
		fmt.Fprintf(p.out, "%s - %-50s %-5s-%-5s  Тип: %s\n", l.Date, l.Title, l.StartTime, l.EndTime, l.Type)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Загрузка
// ─────────────────────────────────────────────────────────────────────────────

// Loaded выводит итог загрузки: число занятий, упоминаний и разбивку по типам.
func (p *Presenter) Loaded(res *command.LoadScheduleResult) {
	fmt.Fprintf(p.out, "Загружено занятий: %d, упоминаний преподавателей: %d\n", res.Lessons, res.Mentions)

	types := make([]lesson.Type, 0, len(res.ByType))
	for t := range res.ByType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%s: %d", t, res.ByType[t]))
	}
	if len(parts) > 0 {
		fmt.Fprintln(p.out, strings.Join(parts, ", "))
	}
}

// Stats выводит размер хранилища.
func (p *Presenter) Stats(stats lesson.Stats) {
	fmt.Fprintf(p.out, "В базе занятий: %d, упоминаний преподавателей: %d\n", stats.Lessons, stats.Mentions)
}

// Error выводит ошибку запроса, не прерывая работу.
func (p *Presenter) Error(err error) {
	fmt.Fprintf(p.out, "Ошибка: %v\n", err)
}
