// Package parser достает JSON объект из свободного текста, который вернула модель.
//
// Модель часто заворачивает JSON в ```json ... ``` или добавляет пояснения вокруг.
// Сначала пробуем строгий разбор очищенного текста, потом жадную регулярку по первой
// "{" и последней "}". Фигурные скобки внутри окружающего текста могут сбить регулярку,
// в этом случае получаем Absent.
package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

type Kind int

const (
	// Объект не нашли совсем
	Absent Kind = iota
	// Объект нашли, но обязательных полей нет или они пустые
	Malformed
	Success
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Malformed:
		return "malformed"
	default:
		return "absent"
	}
}

// Результат разбора. Fields заполнен для Success и Malformed
type Outcome struct {
	Kind    Kind
	Fields  map[string]string
	Missing []string
}

func (o Outcome) OK() bool {
	return o.Kind == Success
}

var objectSpan = regexp.MustCompile(`(?s)\{.*\}`)

// Parse никогда не возвращает ошибку: все неудачи выражены через Kind
func Parse(raw string, required ...string) Outcome {
	obj, ok := decode(raw)
	if !ok {
		return Outcome{Kind: Absent}
	}

	fields := make(map[string]string, len(obj))
	for k, v := range obj {
		fields[k] = flatten(v)
	}

	var missing []string
	for _, key := range required {
		if strings.TrimSpace(fields[key]) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return Outcome{Kind: Malformed, Fields: fields, Missing: missing}
	}

	return Outcome{Kind: Success, Fields: fields}
}

func decode(raw string) (map[string]any, bool) {
	var obj map[string]any

	if err := json.Unmarshal([]byte(stripFence(raw)), &obj); err == nil && obj != nil {
		return obj, true
	}

	span := objectSpan.FindString(raw)
	if span == "" {
		return nil, false
	}

	obj = nil
	if err := json.Unmarshal([]byte(span), &obj); err != nil || obj == nil {
		return nil, false
	}

	return obj, true
}

// Убираем ```json или ``` в начале и ``` в конце
func stripFence(raw string) string {
	cleaned := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(cleaned, "```json"):
		cleaned = cleaned[len("```json"):]
	case strings.HasPrefix(cleaned, "```"):
		cleaned = cleaned[len("```"):]
	}

	cleaned = strings.TrimSuffix(cleaned, "```")

	return strings.TrimSpace(cleaned)
}

// Значения приводим к строкам: модель иногда отдает ключевые слова массивом
func flatten(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return marshal(v)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", ")
	default:
		return marshal(v)
	}
}

func marshal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
