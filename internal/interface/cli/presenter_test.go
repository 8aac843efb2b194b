package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lk-schedule/schedule-hub/internal/application/command"
	"github.com/lk-schedule/schedule-hub/internal/application/query"
	"github.com/lk-schedule/schedule-hub/internal/domain/lesson"
)

func TestPresenter_PadsByCharacters(t *testing.T) {
	var out strings.Builder
	NewPresenter(&out).Day(&query.GetDayScheduleResult{
		Date:  "2025-02-26",
		Slots: []lesson.DaySlot{{Title: "Химия", StartTime: "8:00", EndTime: "9:35", Type: lesson.TypeUnspecified}},
	})

	assert.Equal(t, "2025-02-26 - Химия"+strings.Repeat(" ", 45)+" 8:00  - 9:35    Тип: Не указано\n", out.String())
}

func TestPresenter_LongTitleIsNotTruncated(t *testing.T) {
	title := strings.Repeat("Я", 60)

	var out strings.Builder
	NewPresenter(&out).Teacher(&query.GetTeacherLessonsResult{
		Teacher: "Иванов",
		Lessons: []query.TeacherLesson{{Date: "2025-02-26", Title: title, StartTime: "10:00", EndTime: "11:40", Type: lesson.TypeLab}},
	})

	assert.Contains(t, out.String(), title+" 10:00-11:40  Тип: Лабораторные работы\n")
}

func TestPresenter_Loaded(t *testing.T) {
	var out strings.Builder
	NewPresenter(&out).Loaded(&command.LoadScheduleResult{
		Lessons:  3,
		Mentions: 6,
		ByType: map[lesson.Type]int{
			lesson.TypeSeminar: 1,
			lesson.TypeLecture: 1,
			lesson.TypeLab:     1,
		},
	})

	assert.Equal(t,
		"Загружено занятий: 3, упоминаний преподавателей: 6\n"+
			"Лабораторные работы: 1, Лекции: 1, Практические занятия: 1\n",
		out.String())
}

func TestPresenter_LoadedEmpty(t *testing.T) {
	var out strings.Builder
	NewPresenter(&out).Loaded(&command.LoadScheduleResult{ByType: map[lesson.Type]int{}})

	assert.Equal(t, "Загружено занятий: 0, упоминаний преподавателей: 0\n", out.String())
}

func TestPresenter_Stats(t *testing.T) {
	var out strings.Builder
	NewPresenter(&out).Stats(lesson.Stats{Lessons: 5, Mentions: 8})

	assert.Equal(t, "В базе занятий: 5, упоминаний преподавателей: 8\n", out.String())
}
