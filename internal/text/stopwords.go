package text

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed stopwords.txt
var defaultStopWords string

// StopWords is a set of lowercase words excluded from keyword consideration.
type StopWords map[string]struct{}

// DefaultStopWords returns a fresh copy of the built-in stop-word list.
func DefaultStopWords() StopWords {
	sw, err := ParseStopWords(strings.NewReader(defaultStopWords))
	if err != nil {
		// The embedded list is read from memory; scanning it cannot fail.
		panic(fmt.Sprintf("parsing embedded stop words: %v", err))
	}
	return sw
}

// ParseStopWords reads whitespace-separated words. Blank lines and lines
// starting with '#' are skipped.
func ParseStopWords(r io.Reader) (StopWords, error) {
	sw := StopWords{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, w := range strings.Fields(line) {
			sw[strings.ToLower(w)] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading stop words: %w", err)
	}
	return sw, nil
}

// LoadStopWords reads a stop-word file from disk.
func LoadStopWords(path string) (StopWords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stop words %s: %w", path, err)
	}
	defer f.Close()
	return ParseStopWords(f)
}

// Contains reports whether word, lowercased, is in the set.
func (s StopWords) Contains(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}

// With returns a new set holding s plus words.
func (s StopWords) With(words ...string) StopWords {
	out := make(StopWords, len(s)+len(words))
	for w := range s {
		out[w] = struct{}{}
	}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out[w] = struct{}{}
		}
	}
	return out
}

// Union returns a new set holding the words of s and other.
func (s StopWords) Union(other StopWords) StopWords {
	out := s.With()
	for w := range other {
		out[w] = struct{}{}
	}
	return out
}
