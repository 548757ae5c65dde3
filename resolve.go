package bbtemplar

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Context — данные рендера: ключ → значение.
// Значения: скаляры (string, bool, числа), вложенные Context/map[string]any
// и последовательности (для LOOP-блоков).
type Context = map[string]any

// -----------------------------
// Резолвер путей
// -----------------------------

// Resolve проходит по пути вида "file.platform" сегмент за сегментом.
// Если на каком-то шаге значение отсутствует или не индексируется, возвращает (nil, false).
// Числовой сегмент индексирует последовательность ("items.0.name").
func Resolve(path string, ctx Context) (any, bool) {
	if ctx == nil {
		return nil, false
	}
	return drill(ctx, path)
}

func drill(v any, path string) (any, bool) {
	cur := v
	rest := path
	for {
		seg, tail, more := nextSeg(rest)
		if m, ok := asMap(cur); ok {
			nv, ok := m[seg]
			if !ok {
				return nil, false
			}
			cur = nv
		} else if arr, ok := asSeq(cur); ok {
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(arr) {
				return nil, false
			}
			cur = arr[i]
		} else {
			return nil, false
		}
		if !more {
			return cur, true
		}
		rest = tail
	}
}

// nextSeg отделяет первый сегмент пути; more=false для последнего сегмента.
func nextSeg(path string) (seg string, tail string, more bool) {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i], path[i+1:], true
	}
	return path, "", false
}

// asMap приводит значение к map[string]any. Карты с другими строковыми ключами
// (например, map[string]string) читаются через reflect.
func asMap(v any) (map[string]any, bool) {
	switch vv := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return vv, true
	case map[string]string:
		out := make(map[string]any, len(vv))
		for k, s := range vv {
			out[k] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asSeq приводит значение к []any. Строки последовательностью не считаются.
func asSeq(v any) ([]any, bool) {
	switch vv := v.(type) {
	case nil, string, []byte:
		return nil, false
	case []any:
		return vv, true
	case []map[string]any:
		out := make([]any, len(vv))
		for i, m := range vv {
			out[i] = m
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// -----------------------------
// Строковое представление и истинность
// -----------------------------

// Stringify превращает значение в текст для подстановки {path}.
// Целые float64 печатаются без дробной части: 3.0 → "3".
func Stringify(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case bool:
		return strconv.FormatBool(vv)
	case float64:
		return formatFloat(vv, 64)
	case float32:
		return formatFloat(float64(vv), 32)
	case int:
		return strconv.Itoa(vv)
	case int64:
		return strconv.FormatInt(vv, 10)
	case uint64:
		return strconv.FormatUint(vv, 10)
	case json.Number:
		return vv.String()
	case fmt.Stringer:
		return vv.String()
	}
	if arr, ok := asSeq(v); ok {
		parts := make([]string, len(arr))
		for i, it := range arr {
			parts[i] = Stringify(it)
		}
		return strings.Join(parts, ",")
	}
	if m, ok := asMap(v); ok {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Sprintf("%v", m)
		}
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

func formatFloat(f float64, bits int) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// truthy: ложны nil, "", "false", "0", пустая последовательность, false и числовой ноль.
// Пустая карта истинна.
func truthy(v any) bool {
	switch vv := v.(type) {
	case nil:
		return false
	case string:
		return vv != "" && vv != "false" && vv != "0"
	case bool:
		return vv
	case map[string]any:
		return true
	}
	if arr, ok := asSeq(v); ok {
		return len(arr) > 0
	}
	if _, ok := asMap(v); ok {
		return true
	}
	s := Stringify(v)
	return s != "" && s != "false" && s != "0"
}
