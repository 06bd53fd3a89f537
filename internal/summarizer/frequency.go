package summarizer

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matheuskafuri/engdigest/internal/model"
	"github.com/matheuskafuri/engdigest/internal/text"
)

// FrequencySummarizer uses the first informative paragraph as the summary
// and ranks keywords by raw frequency within the article.
type FrequencySummarizer struct {
	opts   Options
	filter *text.Filter
}

func NewFrequency(opts Options) *FrequencySummarizer {
	opts = opts.withDefaults()
	return &FrequencySummarizer{opts: opts, filter: text.NewFilter(opts.StopWords)}
}

// Summarize summarizes each article independently. Articles are processed
// in parallel; the output keeps input order.
func (s *FrequencySummarizer) Summarize(articles []model.Article) ([]model.Summary, error) {
	if err := ValidateBatch(articles); err != nil {
		return nil, err
	}
	out := make([]model.Summary, len(articles))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range articles {
		g.Go(func() error {
			out[i] = s.summarize(articles[i])
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// SummarizeOne summarizes a single article.
func (s *FrequencySummarizer) SummarizeOne(a model.Article) (model.Summary, error) {
	if err := a.Validate(); err != nil {
		return model.Summary{}, fmt.Errorf("%w: %w", ErrMalformedArticle, err)
	}
	return s.summarize(a), nil
}

func (s *FrequencySummarizer) summarize(a model.Article) model.Summary {
	return model.NewSummary(a, s.Text(a.Content), s.Keywords(a.Content))
}

// Text returns the summary body for content: the first paragraph longer than
// MinParagraphLen, otherwise the first MaxSentences sentences, capped at
// MaxLength characters.
func (s *FrequencySummarizer) Text(content string) string {
	return truncate(s.body(content), s.opts.MaxLength)
}

func (s *FrequencySummarizer) body(content string) string {
	for _, p := range text.Paragraphs(content) {
		if text.Len(p) > s.opts.MinParagraphLen {
			return p
		}
	}
	sentences := text.Sentences(content)
	if len(sentences) > s.opts.MaxSentences {
		sentences = sentences[:s.opts.MaxSentences]
	}
	return strings.Join(sentences, " ")
}

// Keywords ranks the non-stop-word tokens of content by count. Equal counts
// keep first-occurrence order.
func (s *FrequencySummarizer) Keywords(content string) []string {
	counts := map[string]int{}
	var order []string
	for _, t := range s.filter.Terms(content) {
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return head(order, s.opts.MaxKeywords)
}

func head(terms []string, n int) []string {
	if len(terms) > n {
		terms = terms[:n]
	}
	out := make([]string, len(terms))
	copy(out, terms)
	return out
}
