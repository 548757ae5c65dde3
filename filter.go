package bbtemplar

import (
	"fmt"

	expro "github.com/expr-lang/expr"
)

// FilterLoop оставляет в ctx[name] только элементы, для которых выражение истинно.
// Выражение вычисляется expr-lang; в окружении доступны поля элемента, item, index
// и функция exists("path"). Язык выражений относится к подготовке данных,
// в самих шаблонах выражений нет.
//
//	FilterLoop(ctx, "files", `platform == "win" && size != ""`)
func FilterLoop(ctx Context, name, expression string) error {
	raw, ok := ctx[name]
	if !ok {
		return fmt.Errorf("фильтр %s: ключ не найден", name)
	}
	items, ok := asSeq(raw)
	if !ok {
		return fmt.Errorf("фильтр %s: %w", name, ErrNotSequence)
	}

	// Окружение компиляции: поля элементов заранее неизвестны, поэтому разрешаем неопределённые имена
	compileEnv := filterEnv(nil, nil, 0)
	delete(compileEnv, "item")
	program, err := expro.Compile(expression, expro.Env(compileEnv), expro.AllowUndefinedVariables())
	if err != nil {
		return fmt.Errorf("фильтр %s: %w", name, err)
	}

	kept := make([]any, 0, len(items))
	for i, it := range items {
		out, err := expro.Run(program, filterEnv(ctx, it, i))
		if err != nil {
			return fmt.Errorf("фильтр %s, элемент %d: %w", name, i, err)
		}
		if truthy(out) {
			kept = append(kept, it)
		}
	}
	ctx[name] = kept
	return nil
}

func filterEnv(ctx Context, item any, index int) map[string]any {
	m, _ := asMap(item)
	env := make(map[string]any, len(m)+3)
	for k, v := range m {
		env[k] = v
	}
	env["item"] = item
	env["index"] = index
	env["exists"] = func(path string) bool {
		// сначала поля элемента, затем внешний контекст
		if _, ok := drill(m, path); ok {
			return true
		}
		_, ok := Resolve(path, ctx)
		return ok
	}
	return env
}
