package bbtemplar

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotObject — корень данных не объект (ожидается ключ → значение).
	ErrNotObject = errors.New("данные не являются объектом")
	// ErrNotSequence — значение по ключу цикла не массив.
	ErrNotSequence = errors.New("значение не является массивом")
)

var fenceRx = regexp.MustCompile("(?s)```[a-zA-Z]*\\n(.*?)```")

// sanitizeJSONBlock снимает обёртку ```json ... ``` и пробелы по краям.
// Без обёртки возвращает обрезанный исходный текст.
func sanitizeJSONBlock(s string) string {
	if m := fenceRx.FindStringSubmatch(s); len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// ContextFromJSON строит контекст из JSON-объекта (допускается обёртка ```json ... ```).
func ContextFromJSON(data []byte) (Context, error) {
	s := sanitizeJSONBlock(string(data))
	if s == "" {
		return Context{}, nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("разбор JSON: %w", err)
	}
	m, ok := Normalize(v).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("JSON: %w", ErrNotObject)
	}
	return m, nil
}

// ContextFromYAML строит контекст из YAML-документа.
func ContextFromYAML(data []byte) (Context, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("разбор YAML: %w", err)
	}
	if v == nil {
		return Context{}, nil
	}
	m, ok := Normalize(v).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("YAML: %w", ErrNotObject)
	}
	return m, nil
}

// LoadContextFile читает файл данных; формат определяется по расширению.
func LoadContextFile(path string) (Context, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" {
		return ContextFromXLSX(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext {
	case ".yaml", ".yml":
		ctx, err := ContextFromYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return ctx, nil
	case ".json", "":
		ctx, err := ContextFromJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return ctx, nil
	default:
		return nil, fmt.Errorf("%s: неизвестный формат данных %q", path, ext)
	}
}

// Normalize рекурсивно приводит декодированные данные к map[string]any / []any.
// YAML отдаёт map[any]any для ключей-не-строк — такие ключи печатаются через Stringify.
func Normalize(v any) any {
	switch vv := v.(type) {
	case []any:
		for i := range vv {
			vv[i] = Normalize(vv[i])
		}
		return vv
	case map[string]any:
		for k, val := range vv {
			vv[k] = Normalize(val)
		}
		return vv
	case map[any]any:
		out := make(map[string]any, len(vv))
		for k, val := range vv {
			out[Stringify(k)] = Normalize(val)
		}
		return out
	default:
		return vv
	}
}

// MergeContexts объединяет контексты по ключам верхнего уровня; поздние перекрывают ранние.
func MergeContexts(ctxs ...Context) Context {
	out := Context{}
	for _, c := range ctxs {
		for k, v := range c {
			out[k] = v
		}
	}
	return out
}

// SetPath записывает значение по пути "a.b.c", создавая промежуточные карты.
// Промежуточное значение, не являющееся картой, заменяется.
func SetPath(ctx Context, path string, value any) error {
	if ctx == nil {
		return errors.New("запись в nil-контекст")
	}
	if path == "" || strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") || strings.Contains(path, "..") {
		return fmt.Errorf("некорректный путь %q", path)
	}
	cur := ctx
	for {
		seg, tail, more := nextSeg(path)
		if !more {
			cur[seg] = value
			return nil
		}
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[seg] = next
		}
		cur = next
		path = tail
	}
}

// ParseAssignment разбирает "key=value" (значение — строка как есть).
func ParseAssignment(s string) (key, value string, err error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("ожидается key=value, получено %q", s)
	}
	return key, value, nil
}
