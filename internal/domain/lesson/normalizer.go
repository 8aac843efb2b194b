package lesson

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// ══════════════════════════════════════════════════════════════════════════════
// RULES
// Правила применяются строго по порядку: каждое рассчитывает на форму текста,
// которую оставило предыдущее. Вставка или удаление правила - правка этого
// списка, а не кода нормализатора.
// ══════════════════════════════════════════════════════════════════════════════

// Rule - один шаг нормализации описания.
type Rule struct {
	// Name - короткое имя правила для логов и тестов.
	Name string

	// Apply преобразует текст.
	Apply func(string) string
}

// regexpRule строит правило "шаблон -> замена".
func regexpRule(name, pattern, replacement string) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		Name: name,
		Apply: func(s string) string {
			return re.ReplaceAllString(s, replacement)
		},
	}
}

// keywordRule окружает каждое ключевое слово словаря пробелами.
func keywordRule(vocabulary []Type) Rule {
	quoted := make([]string, 0, len(vocabulary))
	for _, t := range vocabulary {
		quoted = append(quoted, regexp.QuoteMeta(string(t)))
	}
	return regexpRule("keyword_space", "("+strings.Join(quoted, "|")+")", " ${1} ")
}

// DefaultRules возвращает правила нормализации в порядке применения.
func DefaultRules(vocabulary []Type) []Rule {
	return []Rule{
		{Name: "strip_markup", Apply: StripMarkup},
		{Name: "join_capital_gap", Apply: joinCapitalGap},
		regexpRule("time_range_space", `(\d{2}:\d{2})-(\d{2}:\d{2})`, "${1}-${2} "),
		regexpRule("comma_space", `([а-я]),([А-Я])`, "${1}, ${2}"),
		keywordRule(vocabulary),
		regexpRule("group_code_space", `(\d-ИАИТ-\d{2})(ИАИТ-\d{3})`, "${1} ${2}"),
		{Name: "collapse_space", Apply: collapseSpace},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// NORMALIZER
// ══════════════════════════════════════════════════════════════════════════════

// Normalizer очищает текст описания занятия.
type Normalizer struct {
	rules []Rule
}

// NewNormalizer создаёт нормализатор с заданным списком правил.
func NewNormalizer(rules []Rule) *Normalizer {
	return &Normalizer{rules: rules}
}

// Rules возвращает копию списка правил.
func (n *Normalizer) Rules() []Rule {
	out := make([]Rule, len(n.rules))
	copy(out, n.rules)
	return out
}

// Normalize применяет все правила по очереди.
func (n *Normalizer) Normalize(raw string) string {
	s := raw
	for _, r := range n.rules {
		s = r.Apply(s)
	}
	return s
}

var defaultNormalizer = NewNormalizer(DefaultRules(Vocabulary()))

// Normalize очищает описание правилами по умолчанию.
func Normalize(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

// ══════════════════════════════════════════════════════════════════════════════
// RULE IMPLEMENTATIONS
// ══════════════════════════════════════════════════════════════════════════════

// StripMarkup удаляет теги и декодирует сущности. Текстовые узлы склеиваются
// без разделителей; содержимое <script> и <style> отбрасывается.
func StripMarkup(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))

	var b strings.Builder
	b.Grow(len(raw))
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if name, _ := z.TagName(); isHiddenTag(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isHiddenTag(name) && skip > 0 {
				skip--
			}
		}
	}
}

func isHiddenTag(name []byte) bool {
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

// joinCapitalGap склеивает заглавную кириллическую букву, с которой начинается
// слово, со следующей кириллической буквой через пробелы: "К урс" -> "Курс".
// Границу слова проверяем по исходному тексту, поэтому "К Л М" -> "КЛМ".
func joinCapitalGap(s string) string {
	runes := []rune(s)

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)

		if !isCyrillicUpper(r) || (i > 0 && isWordRune(runes[i-1])) {
			continue
		}

		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j > i+1 && j < len(runes) && isCyrillic(runes[j]) {
			i = j - 1
		}
	}

	return b.String()
}

// collapseSpace сводит любые пробельные последовательности (включая NBSP)
// к одному пробелу и обрезает края.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isCyrillicUpper(r rune) bool {
	return r >= 'А' && r <= 'Я'
}

func isCyrillicLower(r rune) bool {
	return r >= 'а' && r <= 'я'
}

func isCyrillic(r rune) bool {
	return isCyrillicUpper(r) || isCyrillicLower(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
