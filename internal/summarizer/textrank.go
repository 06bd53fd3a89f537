package summarizer

import (
	"math"
	"sort"
	"strings"

	"github.com/matheuskafuri/engdigest/internal/model"
	"github.com/matheuskafuri/engdigest/internal/text"
)

const (
	textRankDamping      = 0.85
	textRankIterations   = 100
	textRankTolerance    = 1e-6
	textRankMinSentWords = 5
)

// TextRankSummarizer picks the most central sentences of an article using
// PageRank over a word-overlap similarity graph.
type TextRankSummarizer struct {
	opts   Options
	freq   *FrequencySummarizer
	filter *text.Filter
}

func NewTextRank(opts Options) *TextRankSummarizer {
	opts = opts.withDefaults()
	return &TextRankSummarizer{
		opts:   opts,
		freq:   NewFrequency(opts),
		filter: text.NewFilter(opts.StopWords),
	}
}

func (s *TextRankSummarizer) Summarize(articles []model.Article) ([]model.Summary, error) {
	if err := ValidateBatch(articles); err != nil {
		return nil, err
	}
	out := make([]model.Summary, len(articles))
	for i, a := range articles {
		out[i] = model.NewSummary(a, s.Text(a.Content), s.freq.Keywords(a.Content))
	}
	return out, nil
}

// Text returns the top-ranked sentences in document order. Content without
// any sentence of at least five words falls back to the first-paragraph rule.
func (s *TextRankSummarizer) Text(content string) string {
	var sentences []string
	for _, sent := range text.Sentences(content) {
		if len(strings.Fields(sent)) >= textRankMinSentWords {
			sentences = append(sentences, sent)
		}
	}
	if len(sentences) == 0 {
		return s.freq.Text(content)
	}
	if len(sentences) <= s.opts.MaxSentences {
		return truncate(strings.Join(sentences, " "), s.opts.MaxLength)
	}

	tokens := make([][]string, len(sentences))
	for i, sent := range sentences {
		tokens[i] = s.filter.Terms(sent)
	}
	scores := pageRank(similarityMatrix(tokens))

	idx := make([]int, len(sentences))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	top := idx[:s.opts.MaxSentences]
	sort.Ints(top)

	picked := make([]string, len(top))
	for i, j := range top {
		picked[i] = sentences[j]
	}
	return truncate(strings.Join(picked, " "), s.opts.MaxLength)
}

func similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	shared := 0
	counted := map[string]bool{}
	for _, t := range b {
		if set[t] && !counted[t] {
			counted[t] = true
			shared++
		}
	}
	return float64(shared) / math.Sqrt(float64(len(a)*len(b)))
}

func similarityMatrix(tokens [][]string) [][]float64 {
	n := len(tokens)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			if i != j {
				m[i][j] = similarity(tokens[i], tokens[j])
			}
		}
	}
	return m
}

func pageRank(m [][]float64) []float64 {
	n := len(m)
	if n == 0 {
		return nil
	}
	norm := make([][]float64, n)
	for i, row := range m {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		if sum == 0 {
			sum = 1
		}
		norm[i] = make([]float64, n)
		for j, v := range row {
			norm[i][j] = v / sum
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / float64(n)
	}
	next := make([]float64, n)
	for iter := 0; iter < textRankIterations; iter++ {
		delta := 0.0
		for j := 0; j < n; j++ {
			in := 0.0
			for i := 0; i < n; i++ {
				in += norm[i][j] * scores[i]
			}
			next[j] = (1-textRankDamping)/float64(n) + textRankDamping*in
			delta = math.Max(delta, math.Abs(next[j]-scores[j]))
		}
		scores, next = next, scores
		if delta < textRankTolerance {
			break
		}
	}
	return scores
}
