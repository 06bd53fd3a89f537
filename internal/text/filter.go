package text

import (
	"strings"
	"unicode"
)

// MinTokenLen is the shortest letter run treated as a word.
const MinTokenLen = 3

// Tokenize returns the lowercase maximal runs of letters in s that are at
// least MinTokenLen characters long, in order of appearance.
func Tokenize(s string) []string {
	return tokenize(s, MinTokenLen)
}

func tokenize(s string, minLen int) []string {
	var (
		tokens []string
		b      strings.Builder
		n      int
	)
	flush := func() {
		if n >= minLen {
			tokens = append(tokens, b.String())
		}
		b.Reset()
		n = 0
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
			n++
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// Filter turns text into keyword candidates: tokens of at least MinLen
// letters that are not stop words.
type Filter struct {
	stop   StopWords
	minLen int
}

// NewFilter builds a Filter over stop. A nil set means DefaultStopWords.
func NewFilter(stop StopWords) *Filter {
	if stop == nil {
		stop = DefaultStopWords()
	}
	return &Filter{stop: stop, minLen: MinTokenLen}
}

// Tokenize splits s into lowercase tokens without removing stop words.
func (f *Filter) Tokenize(s string) []string {
	return tokenize(s, f.minLen)
}

// IsStopWord reports whether token is excluded from keywords.
func (f *Filter) IsStopWord(token string) bool {
	return f.stop.Contains(token)
}

// Terms returns the tokens of s with stop words removed.
func (f *Filter) Terms(s string) []string {
	tokens := f.Tokenize(s)
	out := tokens[:0]
	for _, t := range tokens {
		if !f.IsStopWord(t) {
			out = append(out, t)
		}
	}
	return out
}
