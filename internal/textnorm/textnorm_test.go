package textnorm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFixUnicodeEscapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single escaped tags", "\\u003cp\\u003eHello\\u003c/p\\u003e", "<p>Hello</p>"},
		{"double escaped tags", `\\u003cb\\u003eBold\\u003c/b\\u003e`, "<b>Bold</b>"},
		{"upper case hex", "\\u003Cbr\\u003E", "<br>"},
		{"ampersand and quotes", "Tom \\u0026 Jerry \\u0022live\\u0022 \\u0027now\\u0027", `Tom & Jerry "live" 'now'`},
		{"escaped slash", `<a href=\"https:\/\/example.org\">x<\/a>`, `<a href="https://example.org">x</a>`},
		{"double encoded entity", "a &amp;amp;lt; b", "a &lt; b"},
		{"plain text untouched", "Nothing to fix here", "Nothing to fix here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FixUnicodeEscapes(tt.in))
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	n := New()

	t.Run("removes disallowed tags but keeps text", func(t *testing.T) {
		got := n.SanitizeHTML(`<div><p>Hello <span style="color:red">world</span></p><script>alert(1)</script></div>`)
		assert.Equal(t, "<p>Hello world</p>", got)
	})

	t.Run("keeps inline formatting", func(t *testing.T) {
		got := n.SanitizeHTML(`<p><strong>Bold</strong> and <em>italic</em></p>`)
		assert.Equal(t, "<p><strong>Bold</strong> and <em>italic</em></p>", got)
	})

	t.Run("drops empty paragraphs", func(t *testing.T) {
		got := n.SanitizeHTML("<p>One</p><p> </p><p>&nbsp;</p><p>Two</p>")
		assert.Equal(t, "<p>One</p><p>Two</p>", got)
	})

	t.Run("collapses redundant breaks", func(t *testing.T) {
		got := n.SanitizeHTML("<p><br>Line<br/><br><br /><br>Next<br></p>")
		assert.Equal(t, "<p>Line<br><br>Next</p>", got)
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		got := n.SanitizeHTML("<p>  lots   of\n\n  space </p>")
		assert.Equal(t, "<p>lots of space</p>", got)
	})

	t.Run("keeps links", func(t *testing.T) {
		got := n.SanitizeHTML(`<p><a href="https://example.org" onclick="x()">site</a></p>`)
		assert.Contains(t, got, `href="https://example.org"`)
		assert.NotContains(t, got, "onclick")
	})
}

func TestDescription(t *testing.T) {
	n := New()

	t.Run("prefers rich text", func(t *testing.T) {
		got := n.Description("<p>Rich</p>", "Plain")
		assert.Equal(t, "<p>Rich</p>", got)
	})

	t.Run("falls back to plain text with line breaks", func(t *testing.T) {
		got := n.Description("  ", "First line\nsecond line\n\nNew paragraph")
		assert.Equal(t, "<p>First line<br>second line</p><p>New paragraph</p>", got)
	})

	t.Run("repairs escapes before sanitizing", func(t *testing.T) {
		got := n.Description("\\u003cp\\u003eFixed\\u003c/p\\u003e", "")
		assert.Equal(t, "<p>Fixed</p>", got)
	})

	t.Run("empty stays empty", func(t *testing.T) {
		assert.Empty(t, n.Description("", ""))
	})
}

func TestHTMLToText(t *testing.T) {
	got := HTMLToText("<p>Hello&nbsp;<b>World</b></p><p>Second<br>line</p><p></p><p></p><p>Tom &amp; Jerry</p>")
	assert.Equal(t, "Hello World\n\nSecond\nline\n\nTom & Jerry", got)
}

func TestTeaser(t *testing.T) {
	assert.Equal(t, "Short text", Teaser("  Short text ", "<p>Long</p>"))
	assert.Equal(t, "Long body", Teaser("", "<p>Long <i>body</i></p>"))
}

func TestTextToHTMLEscapes(t *testing.T) {
	assert.Equal(t, "<p>a &lt; b</p>", TextToHTML("a < b"))
	assert.Empty(t, TextToHTML("   "))
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("ä", 300)
	got := Truncate(long, 255)
	assert.Equal(t, 255, utf8.RuneCountInString(got))

	assert.Equal(t, "short", Truncate("short", 255))
	assert.Equal(t, "a b", Clean("  a \n b  ", 255))
}
