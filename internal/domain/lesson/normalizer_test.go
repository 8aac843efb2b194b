package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "markup and entities",
			in:   "<p>Курс&nbsp;<b>Лекции</b></p>",
			want: "Курс Лекции",
		},
		{
			name: "script body dropped",
			in:   "<div>Лекции<script>var x = 1;</script></div>",
			want: "Лекции",
		},
		{
			name: "gap after leading capital",
			in:   "К урс",
			want: "Курс",
		},
		{
			name: "consecutive single capitals",
			in:   "К Л М",
			want: "КЛМ",
		},
		{
			name: "capital inside word is left alone",
			in:   "АБ В",
			want: "АБ В",
		},
		{
			name: "lowercase single letter is left alone",
			in:   "к урс",
			want: "к урс",
		},
		{
			name: "short capitalized word is merged",
			in:   "В аудитории",
			want: "Ваудитории",
		},
		{
			name: "time range gets trailing space",
			in:   "10:00-11:40Лекции",
			want: "10:00-11:40 Лекции",
		},
		{
			name: "comma between lower and upper",
			in:   "информатика,Иванов",
			want: "информатика, Иванов",
		},
		{
			name: "comma after digit untouched",
			in:   "ауд.101,Корпус",
			want: "ауд.101,Корпус",
		},
		{
			name: "keyword separated",
			in:   "КурсЛабораторные работыИванов И.И.",
			want: "Курс Лабораторные работы Иванов И.И.",
		},
		{
			name: "group codes split",
			in:   "3-ИАИТ-12ИАИТ-105",
			want: "3-ИАИТ-12 ИАИТ-105",
		},
		{
			name: "whitespace collapsed and trimmed",
			in:   "  Курс \t\n  Практические занятия  ",
			want: "Курс Практические занятия",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "full description",
			in:   "<div>08:00-09:35Технологии программирования</div><div>Лекции</div><div>Иванов И.И.</div>",
			want: "08:00-09:35 Технологии программирования Лекции Иванов И.И.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"<p>Курс&nbsp;<b>Лекции</b></p>",
		"10:00-11:40Лекции",
		"информатика,Иванов",
		"КурсЛабораторные работыИванов И.И.",
		"3-ИАИТ-12ИАИТ-105",
		"А Лекции",
		"<div>08:00-09:35Технологии программирования</div><div>Практические занятия</div><div>Петрова А.Б.</div>",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestDefaultRules_Order(t *testing.T) {
	rules := DefaultRules(Vocabulary())

	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{
		"strip_markup",
		"join_capital_gap",
		"time_range_space",
		"comma_space",
		"keyword_space",
		"group_code_space",
		"collapse_space",
	}, names)
}

func TestNormalizer_CustomRules(t *testing.T) {
	n := NewNormalizer([]Rule{
		{Name: "collapse_space", Apply: collapseSpace},
	})

	assert.Equal(t, "<b>a b</b>", n.Normalize("  <b>a   b</b> "))
	assert.Len(t, n.Rules(), 1)
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "a & b", StripMarkup("<span>a &amp; b</span>"))
	assert.Equal(t, "ЛекцииИванов", StripMarkup("Лекции<br/>Иванов"))
	assert.Equal(t, "plain", StripMarkup("plain"))
}
