package bbtemplar

import (
	"io"
	"log/slog"
	"strings"
)

// itemKey — имя, под которым текущий элемент цикла доступен в теле: {item.name}.
const itemKey = "item"

// Engine рендерит шаблоны. После New не меняется и может использоваться из нескольких горутин.
type Engine struct {
	separator string
	logger    *slog.Logger
}

// Option настраивает Engine.
type Option func(*Engine)

// WithSeparator задаёт строку между итерациями LOOP-блока (по умолчанию пусто).
func WithSeparator(sep string) Option {
	return func(e *Engine) { e.separator = sep }
}

// WithLogger включает отладочные записи о неразрешённых плейсхолдерах и непарных маркерах.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New создаёт Engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, o := range opts {
		o(e)
	}
	return e
}

var defaultEngine = New()

// Render разбирает и рендерит шаблон движком по умолчанию.
func Render(src string, ctx Context) string {
	return defaultEngine.Render(src, ctx)
}

// Render разбирает src и рендерит его с ctx. nil-контекст равносилен пустому.
func (e *Engine) Render(src string, ctx Context) string {
	if src == "" {
		return ""
	}
	return e.Execute(Parse(src), ctx)
}

// Execute рендерит уже разобранный шаблон.
func (e *Engine) Execute(t *Template, ctx Context) string {
	if t == nil || len(t.nodes) == 0 {
		return ""
	}
	for _, u := range t.unmatched {
		e.logger.Debug("непарный маркер блока оставлен текстом", "marker", u)
	}
	var sb strings.Builder
	sb.Grow(len(t.src))
	e.walk(t.nodes, ctx, &sb)
	return sb.String()
}

// Render рендерит шаблон движком по умолчанию.
func (t *Template) Render(ctx Context) string {
	return defaultEngine.Execute(t, ctx)
}

// EvalConditions выполняет только IF-блоки; LOOP-маркеры и {path} остаются как есть.
func (e *Engine) EvalConditions(src string, ctx Context) string {
	return e.Execute(parseWith(src, syntaxIf), ctx)
}

// ExpandLoops раскрывает только LOOP-блоки. Тела циклов рендерятся полностью
// в контексте элемента, текст вне циклов не меняется.
func (e *Engine) ExpandLoops(src string, ctx Context) string {
	return e.Execute(parseWith(src, syntaxLoop), ctx)
}

// EvalConditions — то же, что Engine.EvalConditions, для движка по умолчанию.
func EvalConditions(src string, ctx Context) string { return defaultEngine.EvalConditions(src, ctx) }

// ExpandLoops — то же, что Engine.ExpandLoops, для движка по умолчанию.
func ExpandLoops(src string, ctx Context) string { return defaultEngine.ExpandLoops(src, ctx) }

func (e *Engine) walk(nodes []node, ctx Context, sb *strings.Builder) {
	for _, n := range nodes {
		switch nn := n.(type) {
		case *textNode:
			sb.WriteString(nn.text)
		case *varNode:
			v, ok := Resolve(nn.path, ctx)
			if !ok || v == nil {
				e.logger.Debug("плейсхолдер не разрешён", "path", nn.path)
				sb.WriteString(nn.raw)
				continue
			}
			sb.WriteString(Stringify(v))
		case *ifNode:
			v, _ := Resolve(nn.cond, ctx)
			if truthy(v) {
				e.walk(nn.children, ctx, sb)
			}
		case *loopNode:
			raw, found := ctx[nn.name]
			items, ok := asSeq(raw)
			if !ok {
				if found {
					e.logger.Debug("источник цикла не последовательность", "loop", nn.name)
				}
				continue
			}
			for i, item := range items {
				if i > 0 {
					sb.WriteString(e.separator)
				}
				e.walk(nn.children, iterationContext(ctx, item), sb)
			}
		}
	}
}

// iterationContext копирует внешний контекст и накладывает поля элемента:
// каждое поле доступно и как {key}, и как {item.key}.
func iterationContext(outer Context, item any) Context {
	m, isMap := asMap(item)
	nctx := make(Context, len(outer)+len(m)+1)
	for k, v := range outer {
		nctx[k] = v
	}
	if isMap {
		for k, v := range m {
			// nil в элементе не перекрывает внешнее значение
			if _, shadowed := outer[k]; v == nil && shadowed {
				continue
			}
			nctx[k] = v
		}
		nctx[itemKey] = m
	} else {
		nctx[itemKey] = item
	}
	return nctx
}
