package model

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrInvalidArticle is returned by Validate for articles the summarizers cannot accept.
var ErrInvalidArticle = errors.New("invalid article")

// Article is a blog post as produced by the fetch layer. Content is plain
// text with paragraphs separated by blank lines.
type Article struct {
	Title     string
	URL       string
	Content   string
	Source    string
	Published time.Time
	Author    string
	Tags      []string
}

// Summary is the digest entry derived from exactly one Article.
type Summary struct {
	Title     string
	URL       string
	Source    string
	Published time.Time
	Text      string
	Keywords  []string
}

// Validate reports whether the article carries the fields every summarizer relies on.
func (a Article) Validate() error {
	if strings.TrimSpace(a.URL) == "" {
		return fmt.Errorf("%w: empty url (title %q)", ErrInvalidArticle, a.Title)
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: empty title (url %s)", ErrInvalidArticle, a.URL)
	}
	if !utf8.ValidString(a.Content) {
		return fmt.Errorf("%w: content of %s is not valid UTF-8", ErrInvalidArticle, a.URL)
	}
	return nil
}

// Hash returns the dedup key of the article.
func (a Article) Hash() string {
	return URLHash(a.URL)
}

// URLHash is the hex SHA-256 of a URL.
func URLHash(url string) string {
	h := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", h[:])
}

// NewSummary copies the identifying fields of a into a Summary.
func NewSummary(a Article, text string, keywords []string) Summary {
	if keywords == nil {
		keywords = []string{}
	}
	return Summary{
		Title:     a.Title,
		URL:       a.URL,
		Source:    a.Source,
		Published: a.Published,
		Text:      text,
		Keywords:  keywords,
	}
}
