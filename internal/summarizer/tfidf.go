package summarizer

import (
	"math"
	"sort"

	"github.com/matheuskafuri/engdigest/internal/model"
	"github.com/matheuskafuri/engdigest/internal/text"
)

// TermScore is the TF-IDF weight of a term in one document.
type TermScore struct {
	Term  string
	Score float64
}

// Ranker scores terms against the corpus they were submitted with. No
// statistics survive between calls.
type Ranker struct {
	filter *text.Filter
}

func NewRanker(stop text.StopWords) *Ranker {
	return &Ranker{filter: text.NewFilter(stop)}
}

// Scores returns, per article URL, every term of that article ordered by
// descending TF-IDF score. Equal scores keep first-occurrence order. An
// empty corpus yields an empty map.
func (r *Ranker) Scores(articles []model.Article) (map[string][]TermScore, error) {
	if err := ValidateBatch(articles); err != nil {
		return nil, err
	}

	docs := make([][]string, len(articles))
	df := map[string]int{}
	for i, a := range articles {
		docs[i] = r.filter.Terms(a.Content)
		seen := map[string]bool{}
		for _, t := range docs[i] {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	n := float64(len(articles))
	out := make(map[string][]TermScore, len(articles))
	for i, a := range articles {
		counts := map[string]int{}
		var order []string
		for _, t := range docs[i] {
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}

		total := len(docs[i])
		scored := make([]TermScore, 0, len(order))
		for _, t := range order {
			d := df[t]
			if d == 0 {
				continue
			}
			tf := 0.0
			if total > 0 {
				tf = float64(counts[t]) / float64(total)
			}
			scored = append(scored, TermScore{Term: t, Score: tf * math.Log(n/float64(d))})
		}
		sort.SliceStable(scored, func(x, y int) bool {
			return scored[x].Score > scored[y].Score
		})
		out[a.URL] = scored
	}
	return out, nil
}

// ExtractKeywordsBatch returns the top maxKeywords terms per article URL.
// One malformed article fails the whole batch.
func (r *Ranker) ExtractKeywordsBatch(articles []model.Article, maxKeywords int) (map[string][]string, error) {
	scores, err := r.Scores(articles)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(scores))
	for url, terms := range scores {
		n := min(len(terms), max(maxKeywords, 0))
		kw := make([]string, n)
		for i := range kw {
			kw[i] = terms[i].Term
		}
		out[url] = kw
	}
	return out, nil
}

// TFIDFSummarizer pairs the first-paragraph summary text with keywords
// ranked against the whole batch.
type TFIDFSummarizer struct {
	opts   Options
	text   *FrequencySummarizer
	ranker *Ranker
}

func NewTFIDF(opts Options) *TFIDFSummarizer {
	opts = opts.withDefaults()
	return &TFIDFSummarizer{
		opts:   opts,
		text:   NewFrequency(opts),
		ranker: NewRanker(opts.StopWords),
	}
}

func (s *TFIDFSummarizer) Summarize(articles []model.Article) ([]model.Summary, error) {
	keywords, err := s.ranker.ExtractKeywordsBatch(articles, s.opts.MaxKeywords)
	if err != nil {
		return nil, err
	}
	out := make([]model.Summary, len(articles))
	for i, a := range articles {
		out[i] = model.NewSummary(a, s.text.Text(a.Content), keywords[a.URL])
	}
	return out, nil
}
