// Package text splits article content into paragraphs, sentences and
// keyword candidates.
package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var paragraphBreak = regexp.MustCompile(`\n[ \t\f\v]*\n\s*`)

// Paragraphs splits content on blank lines. A single line break stays inside
// its paragraph. Segments are trimmed and empty ones dropped.
func Paragraphs(content string) []string {
	content = normalizeNewlines(content)
	parts := paragraphBreak.Split(content, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Sentences splits content after '.', '!' or '?' when followed by
// whitespace. The terminal punctuation stays with its sentence and a
// trailing fragment without punctuation is kept.
func Sentences(content string) []string {
	content = normalizeNewlines(content)
	var out []string
	start := 0
	for i, r := range content {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next, _ := utf8.DecodeRuneInString(content[i+1:])
		if next == utf8.RuneError || !unicode.IsSpace(next) {
			continue
		}
		if s := strings.TrimSpace(content[start : i+1]); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(content[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// Len counts characters, not bytes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
