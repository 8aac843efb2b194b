package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Type
	}{
		{"lecture", "08:00-09:35 Физика Лекции Иванов И.И.", TypeLecture},
		{"lab", "Физика Лабораторные работы", TypeLab},
		{"seminar", "Физика Практические занятия", TypeSeminar},
		{"none", "Физика консультация", TypeUnspecified},
		{"empty", "", TypeUnspecified},
		{"lecture wins over seminar", "Практические занятия Лекции", TypeLecture},
		{"lab wins over seminar", "Практические занятия Лабораторные работы", TypeLab},
		{"case sensitive", "лекции", TypeUnspecified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestClassifier_CustomVocabulary(t *testing.T) {
	vocab := []Type{TypeSeminar, TypeLecture}
	c := NewClassifier(vocab)

	vocab[0] = TypeLab

	assert.Equal(t, TypeSeminar, c.Classify("Практические занятия Лекции"))
	assert.Equal(t, TypeUnspecified, c.Classify("Лабораторные работы"))
}

func TestType_Label(t *testing.T) {
	assert.Equal(t, "lecture", TypeLecture.Label())
	assert.Equal(t, "lab", TypeLab.Label())
	assert.Equal(t, "seminar", TypeSeminar.Label())
	assert.Equal(t, "unspecified", TypeUnspecified.Label())
	assert.False(t, Type("Экзамен").IsValid())
}
