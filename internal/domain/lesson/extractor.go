package lesson

import (
	"regexp"
	"slices"
)

// teacherPattern - "Фамилия И.О.": слово с заглавной буквы, пробел и два инициала с точками.
var teacherPattern = regexp.MustCompile(`([А-Я][а-я]+)\s([А-Я])\.([А-Я])\.`)

// ExtractTeachers находит преподавателей в нормализованном описании.
//
// На каждое совпадение возвращаются два написания: "Иванов И.И." и "Иванов И И",
// чтобы поиск работал и с точным, и с вольным вводом. Результат - множество
// без повторов, отсортированное для детерминированного порядка. Это эвристика,
// а не сопоставление личностей.
func ExtractTeachers(text string) []string {
	matches := teacherPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches)*2)
	for _, m := range matches {
		surname, first, middle := m[1], m[2], m[3]
		seen[surname+" "+first+"."+middle+"."] = struct{}{}
		seen[surname+" "+first+" "+middle] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}
