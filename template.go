// Package bbtemplar — движок текстовых шаблонов для BBCode-заготовок
// (описания релизов, посты с файлами) и конвертер BBCode → HTML для предпросмотра.
//
// Синтаксис шаблона:
//   - {path}                              — подстановка значения по пути "a.b.c";
//   - <!--IF:cond--> ... <!--/IF:cond-->  — блок выводится, если cond истинно;
//   - <!--LOOP:name--> ... <!--/LOOP:name--> — блок повторяется для каждого элемента ctx[name].
//
// Неразрешённые {path} остаются в тексте как есть, непарные маркеры блоков
// считаются обычным текстом. Рендер не возвращает ошибок.
package bbtemplar

import (
	"regexp"
	"strings"
)

// -----------------------------
// AST
// -----------------------------

type node interface{}

type textNode struct {
	text string
}

type varNode struct {
	path string
	raw  string // исходный текст "{path}"
}

type ifNode struct {
	cond     string
	children []node
}

type loopNode struct {
	name     string
	children []node
}

// Template — разобранный шаблон. Неизменяем, безопасен для конкурентного Render.
type Template struct {
	src       string
	nodes     []node
	unmatched []string // открывающие маркеры без пары, оставленные текстом
}

// -----------------------------
// Парсер
// -----------------------------

var (
	// Открывающий маркер: вид блока и токен до ближайшего "-->"
	rxBlockOpen = regexp.MustCompile(`<!--(IF|LOOP):(.+?)-->`)
	rxLoopName  = regexp.MustCompile(`^\w+$`)
	rxVar       = regexp.MustCompile(`\{([\w.]+)\}`)
)

// набор конструкций, которые распознаёт конкретный проход парсера
type syntaxMask uint8

const (
	syntaxIf syntaxMask = 1 << iota
	syntaxLoop
	syntaxVar

	syntaxAll = syntaxIf | syntaxLoop | syntaxVar
)

// Parse разбирает шаблон в дерево. Ошибок нет: всё, что не сложилось в блок, остаётся текстом.
func Parse(src string) *Template {
	return parseWith(src, syntaxAll)
}

func parseWith(src string, mask syntaxMask) *Template {
	t := &Template{src: src}
	t.nodes = t.parse(src, mask)
	return t
}

func (t *Template) parse(src string, mask syntaxMask) []node {
	var nodes []node
	var lit strings.Builder

	flush := func() {
		if lit.Len() == 0 {
			return
		}
		nodes = append(nodes, splitVars(lit.String(), mask)...)
		lit.Reset()
	}

	pos := 0
	for pos < len(src) {
		m := rxBlockOpen.FindStringSubmatchIndex(src[pos:])
		if m == nil {
			lit.WriteString(src[pos:])
			break
		}
		start, end := pos+m[0], pos+m[1]
		kind := src[pos+m[2] : pos+m[3]]
		token := src[pos+m[4] : pos+m[5]]
		lit.WriteString(src[pos:start])

		var want syntaxMask
		if kind == "IF" {
			want = syntaxIf
		} else {
			want = syntaxLoop
		}
		if mask&want == 0 || (want == syntaxLoop && !rxLoopName.MatchString(token)) {
			lit.WriteString(src[start:end])
			pos = end
			continue
		}

		// Тело нежадное: блок закрывает первый маркер с тем же токеном
		closeTag := "<!--/" + kind + ":" + token + "-->"
		ci := strings.Index(src[end:], closeTag)
		if ci < 0 {
			t.unmatched = append(t.unmatched, src[start:end])
			lit.WriteString(src[start:end])
			pos = end
			continue
		}
		body := src[end : end+ci]
		flush()
		if want == syntaxIf {
			nodes = append(nodes, &ifNode{cond: token, children: t.parse(body, mask)})
		} else {
			// Тело цикла всегда разбирается полностью: вложенные циклы, условия и переменные
			nodes = append(nodes, &loopNode{name: token, children: t.parse(body, syntaxAll)})
		}
		pos = end + ci + len(closeTag)
	}
	flush()
	return nodes
}

// splitVars режет литерал на текст и {path}-токены.
func splitVars(s string, mask syntaxMask) []node {
	if mask&syntaxVar == 0 {
		return []node{&textNode{text: s}}
	}
	ms := rxVar.FindAllStringSubmatchIndex(s, -1)
	if len(ms) == 0 {
		return []node{&textNode{text: s}}
	}
	var out []node
	last := 0
	for _, m := range ms {
		start, end := m[0], m[1]
		if start > last {
			out = append(out, &textNode{text: s[last:start]})
		}
		out = append(out, &varNode{path: s[m[2]:m[3]], raw: s[start:end]})
		last = end
	}
	if last < len(s) {
		out = append(out, &textNode{text: s[last:]})
	}
	return out
}

// Source возвращает исходный текст шаблона.
func (t *Template) Source() string { return t.src }

// -----------------------------
// Интроспекция
// -----------------------------

// Info — сводка по шаблону: какие пути, условия и циклы в нём встречаются.
type Info struct {
	Variables  []string
	Conditions []string
	Loops      []string
	Unmatched  []string
}

// Inspect собирает уникальные имена в порядке первого появления.
func (t *Template) Inspect() Info {
	var info Info
	seen := map[string]struct{}{}
	add := func(dst *[]string, kind, name string) {
		key := kind + "\x00" + name
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		*dst = append(*dst, name)
	}
	var walk func([]node)
	walk = func(ns []node) {
		for _, n := range ns {
			switch nn := n.(type) {
			case *varNode:
				add(&info.Variables, "var", nn.path)
			case *ifNode:
				add(&info.Conditions, "if", nn.cond)
				walk(nn.children)
			case *loopNode:
				add(&info.Loops, "loop", nn.name)
				walk(nn.children)
			}
		}
	}
	walk(t.nodes)
	info.Unmatched = append(info.Unmatched, t.unmatched...)
	return info
}
