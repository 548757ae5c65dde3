package bbtemplar

import (
	"regexp"
	"sort"
	"strings"
)

// -----------------------------
// BBCode → HTML
// -----------------------------

const anchorAttrs = ` target="_blank" rel="noopener noreferrer"`

var (
	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

	rxURLWithTarget = regexp.MustCompile(`(?is)\[url=([^\]]*)\](.*?)\[/url\]`)
	rxURLPlain      = regexp.MustCompile(`(?is)\[url\](.*?)\[/url\]`)
	rxAnchor        = regexp.MustCompile(`(?s)<a(?:\s[^>]*)?>.*?</a>`)
	rxBareURL       = regexp.MustCompile(`https?://[^\s<>\[\]"']+`)
	rxTagArg        = regexp.MustCompile(`(?i)\[[a-z]+=[^\]]*\]`)
)

// bbTag описывает парный тег: открывающий маркер (группа 1 — необязательный аргумент)
// и функцию, строящую HTML из аргумента и тела.
type bbTag struct {
	open   *regexp.Regexp
	close  *regexp.Regexp
	render func(arg, body string) string
}

func newTag(name, argPattern string, render func(arg, body string) string) bbTag {
	open := `(?i)\[` + name + `\]`
	if argPattern != "" {
		open = `(?i)\[` + name + argPattern + `\]`
	}
	return bbTag{
		open:   regexp.MustCompile(open),
		close:  regexp.MustCompile(`(?i)\[/` + name + `\]`),
		render: render,
	}
}

func spanStyle(style string) func(string, string) string {
	return func(_ string, body string) string {
		return `<span style="` + style + `">` + body + `</span>`
	}
}

// Порядок важен: code первым, чтобы его тело не трогали остальные теги.
var bbTags = []bbTag{
	newTag("code", `(?:=([\w+#.-]{1,32}))?`, func(lang, body string) string {
		body = strings.ReplaceAll(body, "[", "&#91;")
		if lang != "" {
			return `<pre><code class="language-` + lang + `">` + body + `</code></pre>`
		}
		return `<pre><code>` + body + `</code></pre>`
	}),
	newTag("b", "", spanStyle("font-weight: bold;")),
	newTag("i", "", spanStyle("font-style: italic;")),
	newTag("u", "", spanStyle("text-decoration: underline;")),
	newTag("s", "", spanStyle("text-decoration: line-through;")),
	newTag("color", `=(#[0-9a-fA-F]{3,8}|[a-zA-Z]{1,32})`, func(c, body string) string {
		return `<span style="color: ` + c + `;">` + body + `</span>`
	}),
	newTag("size", `=(\d{1,3})`, func(n, body string) string {
		return `<span style="font-size: ` + n + `px;">` + body + `</span>`
	}),
	newTag("spoiler", `(?:="([^"\]]*)")?`, func(title, body string) string {
		if title == "" {
			title = "Spoiler"
		}
		return `<details class="spoiler"><summary>` + title + `</summary>` + body + `</details>`
	}),
	newTag("quote", `(?:=([^\]"]{1,64}))?`, func(author, body string) string {
		if author != "" {
			return `<blockquote class="quote"><cite>` + author + `</cite>` + body + `</blockquote>`
		}
		return `<blockquote class="quote">` + body + `</blockquote>`
	}),
}

// ConvertMarkup превращает BBCode в HTML для предпросмотра.
// Шаги фиксированы: экранирование &<>, [url], автоссылки, переводы строк, парные теги.
// Имена тегов регистронезависимы.
func ConvertMarkup(text string) string {
	if text == "" {
		return ""
	}
	out := htmlEscaper.Replace(text)
	out = convertURLTags(out)
	out = autolink(out)
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\n", "<br>")
	for _, tag := range bbTags {
		out = replaceTag(out, tag)
	}
	return out
}

func convertURLTags(s string) string {
	s = rxURLWithTarget.ReplaceAllStringFunc(s, func(m string) string {
		sm := rxURLWithTarget.FindStringSubmatch(m)
		target, label := strings.TrimSpace(sm[1]), sm[2]
		if target == "" {
			return `<a>` + label + `</a>`
		}
		return `<a href="` + hrefEscape(target) + `"` + anchorAttrs + `>` + label + `</a>`
	})
	return rxURLPlain.ReplaceAllStringFunc(s, func(m string) string {
		sm := rxURLPlain.FindStringSubmatch(m)
		u := strings.TrimSpace(sm[1])
		if u == "" {
			return ""
		}
		return `<a href="` + hrefEscape(u) + `"` + anchorAttrs + `>` + u + `</a>`
	})
}

func hrefEscape(u string) string {
	return strings.ReplaceAll(u, `"`, "%22")
}

// autolink оборачивает голые http(s)-ссылки, не трогая уже построенные <a>
// и аргументы тегов вида [quote=...].
func autolink(s string) string {
	spans := skipSpans(s)
	if len(spans) == 0 {
		return rxBareURL.ReplaceAllStringFunc(s, linkify)
	}
	var sb strings.Builder
	last := 0
	for _, sp := range spans {
		sb.WriteString(rxBareURL.ReplaceAllStringFunc(s[last:sp[0]], linkify))
		sb.WriteString(s[sp[0]:sp[1]])
		last = sp[1]
	}
	sb.WriteString(rxBareURL.ReplaceAllStringFunc(s[last:], linkify))
	return sb.String()
}

// skipSpans возвращает упорядоченные непересекающиеся участки, которые autolink копирует как есть.
func skipSpans(s string) [][]int {
	all := append(rxAnchor.FindAllStringIndex(s, -1), rxTagArg.FindAllStringIndex(s, -1)...)
	if len(all) == 0 {
		return nil
	}
	sort.Slice(all, func(i, j int) bool { return all[i][0] < all[j][0] })
	out := all[:1]
	for _, sp := range all[1:] {
		prev := out[len(out)-1]
		if sp[0] < prev[1] {
			if sp[1] > prev[1] {
				prev[1] = sp[1]
			}
			continue
		}
		out = append(out, sp)
	}
	return out
}

func linkify(u string) string {
	var tail string
	// экранированные < и > ссылку завершают
	for _, ent := range []string{"&lt;", "&gt;"} {
		if i := strings.Index(u, ent); i >= 0 {
			tail = u[i:] + tail
			u = u[:i]
		}
	}
	for u != "" {
		c := u[len(u)-1]
		if !strings.ContainsRune(".,;:!?)", rune(c)) {
			break
		}
		// скобка остаётся, если она парная: .../Go_(language)
		if c == ')' && strings.Count(u, ")") <= strings.Count(u, "(") {
			break
		}
		tail = u[len(u)-1:] + tail
		u = u[:len(u)-1]
	}
	if u == "http://" || u == "https://" {
		return u + tail
	}
	return `<a href="` + u + `"` + anchorAttrs + `>` + u + `</a>` + tail
}

type tagMark struct {
	start, end int
	arg        string
	opener     bool
}

type tagFrame struct {
	mark tagMark
	body strings.Builder
}

// replaceTag сопоставляет теги изнутри наружу за один проход: закрывающий маркер
// снимает со стека ближайший открывающий. Непарные маркеры остаются текстом.
func replaceTag(s string, tag bbTag) string {
	closes := tag.close.FindAllStringIndex(s, -1)
	if len(closes) == 0 {
		return s
	}
	opens := tag.open.FindAllStringSubmatchIndex(s, -1)
	if len(opens) == 0 {
		return s
	}

	marks := make([]tagMark, 0, len(opens)+len(closes))
	for _, o := range opens {
		m := tagMark{start: o[0], end: o[1], opener: true}
		if len(o) >= 4 && o[2] >= 0 {
			m.arg = s[o[2]:o[3]]
		}
		marks = append(marks, m)
	}
	for _, c := range closes {
		marks = append(marks, tagMark{start: c[0], end: c[1]})
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].start < marks[j].start })

	stack := []*tagFrame{{}}
	last := 0
	for _, m := range marks {
		top := stack[len(stack)-1]
		top.body.WriteString(s[last:m.start])
		last = m.end
		switch {
		case m.opener:
			stack = append(stack, &tagFrame{mark: m})
		case len(stack) > 1:
			stack = stack[:len(stack)-1]
			stack[len(stack)-1].body.WriteString(tag.render(top.mark.arg, top.body.String()))
		default:
			top.body.WriteString(s[m.start:m.end])
		}
	}
	stack[len(stack)-1].body.WriteString(s[last:])

	// незакрытые открывающие маркеры возвращаются в текст
	for len(stack) > 1 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent := &stack[len(stack)-1].body
		parent.WriteString(s[top.mark.start:top.mark.end])
		parent.WriteString(top.body.String())
	}
	return stack[0].body.String()
}
