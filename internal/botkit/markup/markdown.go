package markup

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Спецсимволы MarkdownV2. Обратный слеш тоже экранируем, иначе он съест следующий символ
var replacer = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`,
	"*", `\*`,
	"[", `\[`,
	"]", `\]`,
	"(", `\(`,
	")", `\)`,
	"~", `\~`,
	"`", "\\`",
	">", `\>`,
	"#", `\#`,
	"+", `\+`,
	"-", `\-`,
	"=", `\=`,
	"|", `\|`,
	"{", `\{`,
	"}", `\}`,
	".", `\.`,
	"!", `\!`,
)

// Внутри (...) ссылки телеграм требует экранировать только ) и \
var linkReplacer = strings.NewReplacer(`\`, `\\`, ")", `\)`)

// Функция которая делает escape спец символы markdown специально для телеграма
func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}

func EscapeLinkURL(url string) string {
	return linkReplacer.Replace(url)
}

// Truncate укладывает текст в max символов (не байт) вместе с suffix.
// Режем по последнему пробелу, чтобы не рвать слово
func Truncate(text string, max int, suffix string) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}

	keep := max - utf8.RuneCountInString(suffix)
	if keep <= 0 {
		return string([]rune(suffix)[:max])
	}

	cut := string([]rune(text)[:keep])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}

	return cut + suffix
}

// Запас под закрывающие маркеры сущностей, которые дописываем после реза
const closersReserve = 8

// Маркеры сущностей MarkdownV2, длинные раньше коротких
var entityMarkers = []string{"__", "||", "*", "_", "~"}

// TruncateMarkdown режет текст, уже размеченный под MarkdownV2. Суффикс экранируется,
// рез не попадает внутрь ссылки, кода или сразу после "\", открытые сущности закрываются
func TruncateMarkdown(text string, max int, suffix string) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}

	tail := EscapeForMarkdown(suffix)
	keep := max - utf8.RuneCountInString(tail) - closersReserve
	if keep <= 0 {
		return Truncate(tail, max, "")
	}

	runes := []rune(text)[:keep]
	cut, closers := markdownCut(runes)

	return string(runes[:cut]) + closers + tail
}

// markdownCut ищет последнее место реза: по пробелу, иначе любое безопасное.
// Возвращает позицию и маркеры, которыми надо закрыть открытые сущности
func markdownCut(runes []rune) (int, string) {
	var (
		open    []string
		escaped bool
		code    bool
		// 0 вне ссылки, 1 текст ссылки, 2 ждем "(", 3 адрес
		link int

		spaceCut, cleanCut   = -1, 0
		spaceOpen, cleanOpen []string
	)

	safe := func() bool { return !escaped && !code && link == 0 }

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if safe() {
			cleanCut, cleanOpen = i, slices.Clone(open)
			if i > 0 && unicode.IsSpace(r) {
				spaceCut, spaceOpen = i, cleanOpen
			}
		}

		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case code:
			code = r != '`'
		case link == 3:
			if r == ')' {
				link = 0
			}
		case link == 2:
			link = 3
		case r == '`':
			code = true
		case r == '[':
			link = 1
		case link == 1 && r == ']':
			link = 0
			if i+1 < len(runes) && runes[i+1] == '(' {
				link = 2
			}
		default:
			if m := entityMarker(runes[i:]); m != "" {
				open = toggleEntity(open, m)
				i += len(m) - 1
			}
		}
	}

	if safe() {
		cleanCut, cleanOpen = len(runes), open
	}

	if spaceCut > 0 {
		return spaceCut, closeEntities(spaceOpen)
	}

	return cleanCut, closeEntities(cleanOpen)
}

func entityMarker(runes []rune) string {
	for _, m := range entityMarkers {
		if strings.HasPrefix(string(runes[:min(len(runes), len(m))]), m) {
			return m
		}
	}
	return ""
}

func toggleEntity(open []string, marker string) []string {
	if i := slices.Index(open, marker); i >= 0 {
		return slices.Delete(open, i, i+1)
	}
	return append(open, marker)
}

func closeEntities(open []string) string {
	var sb strings.Builder
	for i := len(open) - 1; i >= 0; i-- {
		sb.WriteString(open[i])
	}
	return sb.String()
}
