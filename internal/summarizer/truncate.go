package summarizer

import (
	"strings"
	"unicode"
)

const ellipsis = "..."

// shortEllipsis marks truncation when n leaves no room for ellipsis.
const shortEllipsis = "…"

// truncate shortens s to at most n characters. When it has to cut, it backs
// off to the last word boundary and appends an ellipsis that counts toward n.
// Limits of 3 or less end in a single "…" instead.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	if n <= len(ellipsis) {
		return string(runes[:n-1]) + shortEllipsis
	}
	cut := runes[:n-len(ellipsis)]
	if i := lastSpace(cut); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + ellipsis
}

func lastSpace(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if unicode.IsSpace(r[i]) {
			return i
		}
	}
	return -1
}
