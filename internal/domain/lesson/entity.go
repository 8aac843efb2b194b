package lesson

import (
	"errors"
	"fmt"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// RAW RECORD
// ══════════════════════════════════════════════════════════════════════════════

// RawRecord - запись расписания в том виде, в каком её отдаёт API.
// Живёт только в пределах одной загрузки.
type RawRecord struct {
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Lesson - одно занятие расписания.
//
// Date, StartTime и EndTime - проекции StartDatetime/EndDatetime. Они
// вычисляются только в NewLesson и не редактируются отдельно.
type Lesson struct {
	ID            int64
	Title         string
	StartDatetime string
	EndDatetime   string
	Description   string // нормализованный текст
	Date          string // YYYY-MM-DD
	StartTime     string // HH:MM
	EndTime       string // HH:MM
	Type          Type

	// Teachers - извлечённые написания ФИО; каждое станет строкой Mention.
	Teachers []string
}

// Mention - упоминание преподавателя в занятии.
// Одному человеку может соответствовать несколько строк с разным написанием.
type Mention struct {
	ID          int64
	LessonID    int64
	TeacherName string
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrMissingTimestampSeparator - в метке времени нет разделителя "T".
	ErrMissingTimestampSeparator = errors.New("timestamp has no 'T' separator")

	// ErrEmptyDate - пустая дата перед "T".
	ErrEmptyDate = errors.New("timestamp has empty date part")

	// ErrInvalidTimeOfDay - после "T" нет корректного HH:MM.
	ErrInvalidTimeOfDay = errors.New("timestamp has no HH:MM time of day")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY
// ══════════════════════════════════════════════════════════════════════════════

// Builder превращает сырые записи в занятия.
type Builder struct {
	normalizer *Normalizer
	classifier *Classifier
}

// NewBuilder создаёт Builder с нормализатором и классификатором.
func NewBuilder(normalizer *Normalizer, classifier *Classifier) *Builder {
	return &Builder{
		normalizer: normalizer,
		classifier: classifier,
	}
}

// DefaultBuilder использует словарь и правила по умолчанию.
func DefaultBuilder() *Builder {
	return NewBuilder(defaultNormalizer, defaultClassifier)
}

// Build нормализует описание, классифицирует его, выводит дату и время
// и извлекает преподавателей из уже нормализованного текста.
func (b *Builder) Build(raw RawRecord) (*Lesson, error) {
	date, startTime, err := SplitTimestamp(raw.Start)
	if err != nil {
		return nil, fmt.Errorf("start %q: %w", raw.Start, err)
	}

	_, endTime, err := SplitTimestamp(raw.End)
	if err != nil {
		return nil, fmt.Errorf("end %q: %w", raw.End, err)
	}

	description := b.normalizer.Normalize(raw.Description)

	return &Lesson{
		Title:         raw.Title,
		StartDatetime: raw.Start,
		EndDatetime:   raw.End,
		Description:   description,
		Date:          date,
		StartTime:     startTime,
		EndTime:       endTime,
		Type:          b.classifier.Classify(description),
		Teachers:      ExtractTeachers(description),
	}, nil
}

// Classify определяет тип занятия словарём этого Builder.
func (b *Builder) Classify(text string) Type {
	return b.classifier.Classify(text)
}

// NewLesson строит занятие правилами по умолчанию.
func NewLesson(raw RawRecord) (*Lesson, error) {
	return DefaultBuilder().Build(raw)
}

// SplitTimestamp делит "YYYY-MM-DDTHH:MM:SS±HH:MM" по "T" и берёт первые
// пять символов времени. Остальная часть метки не читается.
func SplitTimestamp(ts string) (date, timeOfDay string, err error) {
	date, rest, ok := strings.Cut(ts, "T")
	if !ok {
		return "", "", ErrMissingTimestampSeparator
	}
	if date == "" {
		return "", "", ErrEmptyDate
	}
	if len(rest) < 5 || !isClock(rest[:5]) {
		return "", "", ErrInvalidTimeOfDay
	}
	return date, rest[:5], nil
}

// isClock проверяет форму "DD:DD".
func isClock(s string) bool {
	for i := 0; i < len(s); i++ {
		if i == 2 {
			if s[i] != ':' {
				return false
			}
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Mentions возвращает строки упоминаний для занятия с известным ID.
func (l *Lesson) Mentions() []Mention {
	out := make([]Mention, 0, len(l.Teachers))
	for _, name := range l.Teachers {
		out = append(out, Mention{LessonID: l.ID, TeacherName: name})
	}
	return out
}
