package bbtemplar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConvertMarkup(t *testing.T) {
	const attrs = ` target="_blank" rel="noopener noreferrer"`
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "plain text", "plain text"},
		{"escape", `a < b && c > "d"`, `a &lt; b &amp;&amp; c &gt; "d"`},
		{"newlines", "a\nb\r\nc", "a<br>b<br>c"},
		{"bold", "[b]x[/b]", `<span style="font-weight: bold;">x</span>`},
		{"case insensitive", "[B]x[/b] [I]y[/I]", `<span style="font-weight: bold;">x</span> <span style="font-style: italic;">y</span>`},
		{"underline strike", "[u]x[/u][s]y[/s]", `<span style="text-decoration: underline;">x</span><span style="text-decoration: line-through;">y</span>`},
		{"multiline body", "[b]a\nb[/b]", `<span style="font-weight: bold;">a<br>b</span>`},
		{"nested same", "[b]a[b]b[/b]c[/b]", `<span style="font-weight: bold;">a<span style="font-weight: bold;">b</span>c</span>`},
		{"nested mixed", "[b][i]x[/i][/b]", `<span style="font-weight: bold;"><span style="font-style: italic;">x</span></span>`},
		{"unmatched", "[b]x [/i]", "[b]x [/i]"},
		{"stray closer", "[/b][b]x[/b]", `[/b]<span style="font-weight: bold;">x</span>`},
		{"color", "[color=#ff0000]r[/color] [color=blue]b[/color]", `<span style="color: #ff0000;">r</span> <span style="color: blue;">b</span>`},
		{"color unsafe arg", "[color=red;x:y]r[/color]", "[color=red;x:y]r[/color]"},
		{"size", "[size=14]t[/size]", `<span style="font-size: 14px;">t</span>`},
		{"spoiler", `[spoiler="Logs"]l[/spoiler][spoiler]m[/spoiler]`, `<details class="spoiler"><summary>Logs</summary>l</details><details class="spoiler"><summary>Spoiler</summary>m</details>`},
		{"code", "[code=go]a [b]x[/b] < b[/code]", `<pre><code class="language-go">a &#91;b]x&#91;/b] &lt; b</code></pre>`},
		{"code plain", "[code]x[/code]", `<pre><code>x</code></pre>`},
		{"quote", "[quote]q[/quote] [quote=Ann]r[/quote]", `<blockquote class="quote">q</blockquote> <blockquote class="quote"><cite>Ann</cite>r</blockquote>`},
		{"url with target", "[url=http://x/42]download[/url]", `<a href="http://x/42"` + attrs + `>download</a>`},
		{"url empty target", "[url=]label[/url]", `<a>label</a>`},
		{"url plain", "[url]https://example.com/a?b=1&c=2[/url]", `<a href="https://example.com/a?b=1&amp;c=2"` + attrs + `>https://example.com/a?b=1&amp;c=2</a>`},
		{"url quote in href", `[url=http://x/"y]l[/url]`, `<a href="http://x/%22y"` + attrs + `>l</a>`},
		{"autolink", "see https://example.com/x.", `see <a href="https://example.com/x"` + attrs + `>https://example.com/x</a>.`},
		{"autolink before escaped gt", "http://a.b/c>", `<a href="http://a.b/c"` + attrs + `>http://a.b/c</a>&gt;`},
		{"no double wrap", "[url=http://x/1]http://x/1[/url]", `<a href="http://x/1"` + attrs + `>http://x/1</a>`},
		{"autolink beside tag", "[url=http://a/]A[/url] http://b/", `<a href="http://a/"` + attrs + `>A</a> <a href="http://b/"` + attrs + `>http://b/</a>`},
		{"bare scheme", "http:// nothing", "http:// nothing"},
		{"url in spoiler title", `[spoiler="see http://x/log"]body[/spoiler]`, `<details class="spoiler"><summary>see http://x/log</summary>body</details>`},
		{"url as quote author", "[quote=http://x/a]q[/quote]", `<blockquote class="quote"><cite>http://x/a</cite>q</blockquote>`},
		{"autolink balanced paren", "https://en.wikipedia.org/wiki/Go_(language)", `<a href="https://en.wikipedia.org/wiki/Go_(language)"` + attrs + `>https://en.wikipedia.org/wiki/Go_(language)</a>`},
		{"autolink in parens", "(see http://x/a).", `(see <a href="http://x/a"` + attrs + `>http://x/a</a>).`},
		{"unclosed outer", "[b]a[b]b[/b]", `[b]a<span style="font-weight: bold;">b</span>`},
		{"unclosed inner", "[b]a[i]b[/b]", `<span style="font-weight: bold;">a[i]b</span>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertMarkup(tt.in))
		})
	}
}

func TestConvertMarkup_PlainTextIsEscapeWithBreaks(t *testing.T) {
	in := "Release <notes> & changes\nline two"
	want := htmlEscaper.Replace("Release <notes> & changes") + "<br>" + "line two"
	assert.Equal(t, want, ConvertMarkup(in))
}

func TestConvertMarkup_LargeInput(t *testing.T) {
	const n = 50000
	pairs := strings.Repeat("[b]x[/b] ", n)
	stray := strings.Repeat("[/b]", n)

	start := time.Now()
	out := ConvertMarkup(pairs + stray)
	elapsed := time.Since(start)

	assert.Equal(t, n, strings.Count(out, `<span style="font-weight: bold;">x</span>`))
	assert.True(t, strings.HasSuffix(out, stray))
	assert.Less(t, elapsed, 2*time.Second, "конвертация должна быть линейной")
}

func BenchmarkConvertMarkup(b *testing.B) {
	in := strings.Repeat("[b]bold[/b] [i]it[/i] see http://x/a\n", 2000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ConvertMarkup(in)
	}
}
