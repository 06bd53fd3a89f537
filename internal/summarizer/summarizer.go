// Package summarizer produces extractive summaries and keyword rankings for
// batches of articles. Nothing here performs I/O; every call is a pure
// function of its input and options.
package summarizer

import (
	"errors"
	"fmt"

	"github.com/matheuskafuri/engdigest/internal/model"
	"github.com/matheuskafuri/engdigest/internal/text"
)

// ErrMalformedArticle marks input the summarizers refuse to process.
var ErrMalformedArticle = errors.New("malformed article")

const (
	DefaultMaxSentences    = 3
	DefaultMaxLength       = 500
	DefaultMaxKeywords     = 5
	DefaultMinParagraphLen = 20
)

// Options tunes the summarizers. Zero values are replaced by the defaults.
type Options struct {
	MaxSentences int
	MaxLength    int
	MaxKeywords  int
	// MinParagraphLen is the length a paragraph must exceed to be used as
	// the summary body.
	MinParagraphLen int
	StopWords       text.StopWords
}

func (o Options) withDefaults() Options {
	if o.MaxSentences <= 0 {
		o.MaxSentences = DefaultMaxSentences
	}
	if o.MaxLength <= 0 {
		o.MaxLength = DefaultMaxLength
	}
	if o.MaxKeywords <= 0 {
		o.MaxKeywords = DefaultMaxKeywords
	}
	if o.MinParagraphLen <= 0 {
		o.MinParagraphLen = DefaultMinParagraphLen
	}
	if o.StopWords == nil {
		o.StopWords = text.DefaultStopWords()
	}
	return o
}

// Strategy turns a batch of articles into one Summary per article, in input order.
type Strategy interface {
	Summarize(articles []model.Article) ([]model.Summary, error)
}

// New returns the strategy implementing m.
func New(m Method, opts Options) (Strategy, error) {
	switch m {
	case FirstParagraph:
		return NewFrequency(opts), nil
	case TFIDF:
		return NewTFIDF(opts), nil
	case TextRank:
		return NewTextRank(opts), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, m)
}

// ValidateBatch checks every article and rejects URLs that appear twice.
func ValidateBatch(articles []model.Article) error {
	seen := make(map[string]int, len(articles))
	for i, a := range articles {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%w: article %d: %w", ErrMalformedArticle, i, err)
		}
		if j, ok := seen[a.URL]; ok {
			return fmt.Errorf("%w: article %d repeats url %s of article %d", ErrMalformedArticle, i, a.URL, j)
		}
		seen[a.URL] = i
	}
	return nil
}
