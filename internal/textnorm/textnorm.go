// Package textnorm cleans up text coming from event feeds: it repairs
// escaped markup, sanitizes HTML to a small allow-list, and converts
// between HTML and plain text.
package textnorm

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy = bluemonday.StrictPolicy()

	blockEndRe      = regexp.MustCompile(`(?i)</(p|div|li|h[1-6]|blockquote|tr)\s*>`)
	breakRe         = regexp.MustCompile(`(?i)<br\s*/?>`)
	spacesRe        = regexp.MustCompile(`[ \t\x{00A0}]+`)
	manyNewlinesRe  = regexp.MustCompile(`\n{3,}`)
	blankLineRe     = regexp.MustCompile(`\n[ \t]*\n`)
	escapedCharRe   = regexp.MustCompile(`\\+u00(3[cCeE]|26|22|27)`)
	escapedSlashRe  = regexp.MustCompile(`\\+/`)
	escapedQuoteRe  = regexp.MustCompile(`\\+"`)
	doubleEntityRe  = regexp.MustCompile(`&amp;(lt|gt|amp|quot|apos|nbsp|#0?39|#34);`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	leadingBreakRe  = regexp.MustCompile(`<p>(\s*<br>)+\s*`)
	trailingBreakRe = regexp.MustCompile(`(\s*<br>)+\s*</p>`)
	breakRunRe      = regexp.MustCompile(`(<br>\s*){3,}`)
	emptyParaRe     = regexp.MustCompile(`<p>[\s\x{00A0}]*(&nbsp;)*[\s\x{00A0}]*</p>`)
	blockSpaceRe    = regexp.MustCompile(`\s*(</?p>|<br>|</?ul>|</?ol>|</?li>)\s*`)
)

var escapedChars = map[string]string{
	"3c": "<",
	"3e": ">",
	"26": "&",
	"22": `"`,
	"27": "'",
}

// Normalizer holds the HTML allow-list. It is safe for concurrent use.
type Normalizer struct {
	policy *bluemonday.Policy
}

// New returns a Normalizer that keeps structural and inline formatting
// tags plus links.
func New() *Normalizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "b", "em", "i", "u", "ul", "ol", "li", "h2", "h3", "h4", "blockquote")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return &Normalizer{policy: p}
}

// FixUnicodeEscapes repairs markup that went through more than one round
// of JSON or HTML encoding, such as `<p>` or `&amp;lt;`.
func FixUnicodeEscapes(s string) string {
	s = escapedCharRe.ReplaceAllStringFunc(s, func(m string) string {
		code := strings.ToLower(m[len(m)-2:])
		return escapedChars[code]
	})
	s = escapedSlashRe.ReplaceAllString(s, "/")
	s = escapedQuoteRe.ReplaceAllString(s, `"`)
	for doubleEntityRe.MatchString(s) {
		s = doubleEntityRe.ReplaceAllString(s, "&$1;")
	}
	return s
}

// SanitizeHTML strips everything outside the allow-list, then collapses
// redundant breaks and whitespace and drops empty paragraphs.
func (n *Normalizer) SanitizeHTML(s string) string {
	s = n.policy.Sanitize(s)
	s = breakRe.ReplaceAllString(s, "<br>")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = blockSpaceRe.ReplaceAllString(s, "$1")
	s = leadingBreakRe.ReplaceAllString(s, "<p>")
	s = trailingBreakRe.ReplaceAllString(s, "</p>")
	s = breakRunRe.ReplaceAllString(s, "<br><br>")
	s = emptyParaRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Description builds the sanitized HTML body. Rich HTML wins; plain text
// is converted to paragraphs and line breaks first.
func (n *Normalizer) Description(rich, plain string) string {
	body := rich
	if strings.TrimSpace(body) == "" {
		body = TextToHTML(FixUnicodeEscapes(plain))
	}
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return n.SanitizeHTML(FixUnicodeEscapes(body))
}

// Teaser returns the short plain-text summary, deriving it from the rich
// body when no short text is given.
func Teaser(short, rich string) string {
	if s := strings.TrimSpace(short); s != "" {
		return HTMLToText(FixUnicodeEscapes(s))
	}
	return HTMLToText(FixUnicodeEscapes(rich))
}

// HTMLToText converts markup to plain text. Block ends and <br> become
// newlines, entities are decoded, and runs of blank lines are collapsed.
func HTMLToText(s string) string {
	if s == "" {
		return ""
	}
	s = breakRe.ReplaceAllString(s, "\n")
	s = blockEndRe.ReplaceAllString(s, "\n\n")
	s = stripPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spacesRe.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = manyNewlinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// TextToHTML wraps blank-line separated blocks in <p> and turns single
// newlines into <br>.
func TextToHTML(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, para := range blankLineRe.Split(s, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(strings.TrimSpace(line))
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}

// Truncate shortens s to at most limit characters.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}

// Clean trims s, collapses internal whitespace and truncates it.
func Clean(s string, limit int) string {
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	return Truncate(s, limit)
}
