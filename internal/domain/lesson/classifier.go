package lesson

import "strings"

// ══════════════════════════════════════════════════════════════════════════════
// LESSON TYPE
// ══════════════════════════════════════════════════════════════════════════════

// Type - тип занятия, определяемый по ключевому слову в описании.
type Type string

const (
	// TypeLecture - лекция.
	TypeLecture Type = "Лекции"

	// TypeLab - лабораторная работа.
	TypeLab Type = "Лабораторные работы"

	// TypeSeminar - практическое занятие.
	TypeSeminar Type = "Практические занятия"

	// TypeUnspecified - ни одно ключевое слово не найдено.
	TypeUnspecified Type = "Не указано"
)

// Vocabulary возвращает словарь ключевых слов в порядке приоритета.
func Vocabulary() []Type {
	return []Type{TypeLecture, TypeLab, TypeSeminar}
}

// String возвращает строковое представление типа.
func (t Type) String() string {
	return string(t)
}

// IsValid проверяет, что тип входит в фиксированный набор из четырёх значений.
func (t Type) IsValid() bool {
	switch t {
	case TypeLecture, TypeLab, TypeSeminar, TypeUnspecified:
		return true
	}
	return false
}

// Label возвращает латинскую метку для логов.
func (t Type) Label() string {
	switch t {
	case TypeLecture:
		return "lecture"
	case TypeLab:
		return "lab"
	case TypeSeminar:
		return "seminar"
	default:
		return "unspecified"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFIER
// ══════════════════════════════════════════════════════════════════════════════

// Classifier определяет тип занятия по вхождению подстроки.
// Если в описании несколько ключевых слов, побеждает первое по словарю.
type Classifier struct {
	vocabulary []Type
}

// NewClassifier создаёт классификатор со словарём в порядке приоритета.
func NewClassifier(vocabulary []Type) *Classifier {
	v := make([]Type, len(vocabulary))
	copy(v, vocabulary)
	return &Classifier{vocabulary: v}
}

// Classify возвращает тип занятия; никогда не завершается ошибкой.
func (c *Classifier) Classify(text string) Type {
	for _, t := range c.vocabulary {
		if strings.Contains(text, string(t)) {
			return t
		}
	}
	return TypeUnspecified
}

var defaultClassifier = NewClassifier(Vocabulary())

// Classify определяет тип занятия словарём по умолчанию.
func Classify(text string) Type {
	return defaultClassifier.Classify(text)
}
