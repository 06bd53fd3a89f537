package summarizer

import (
	"math"
	"reflect"
	"testing"

	"github.com/matheuskafuri/engdigest/internal/model"
)

func scoreOf(t *testing.T, scores []TermScore, term string) float64 {
	t.Helper()
	for _, s := range scores {
		if s.Term == term {
			return s.Score
		}
	}
	t.Fatalf("term %q not scored", term)
	return 0
}

func TestEmptyCorpus(t *testing.T) {
	got, err := NewRanker(nil).ExtractKeywordsBatch(nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil map, got %#v", got)
	}
}

func TestSingleDocumentDegeneracy(t *testing.T) {
	a := article("https://a.com", "Zebra apple zebra mango apple kiwi zebra.")
	r := NewRanker(nil)

	scores, err := r.Scores([]model.Article{a})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range scores[a.URL] {
		if s.Score != 0 {
			t.Errorf("%s: expected score 0, got %v", s.Term, s.Score)
		}
	}

	kw, err := r.ExtractKeywordsBatch([]model.Article{a}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"zebra", "apple", "mango", "kiwi"}; !reflect.DeepEqual(kw[a.URL], want) {
		t.Errorf("expected %v, got %v", want, kw[a.URL])
	}
}

func TestRareTermOutscoresUbiquitousTerm(t *testing.T) {
	corpus := []model.Article{
		article("https://a.com", "Bedrock learning models."),
		article("https://b.com", "Learning systems scale."),
		article("https://c.com", "Learning pipelines run."),
	}
	scores, err := NewRanker(nil).Scores(corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bedrock := scoreOf(t, scores["https://a.com"], "bedrock")
	for _, a := range corpus {
		if learning := scoreOf(t, scores[a.URL], "learning"); bedrock <= learning {
			t.Errorf("%s: bedrock %v should outscore learning %v", a.URL, bedrock, learning)
		}
	}
}

func TestTermInEveryDocumentScoresZero(t *testing.T) {
	corpus := []model.Article{
		article("https://a.com", "Kubernetes kubernetes kubernetes kubernetes operators."),
		article("https://b.com", "Kubernetes schedulers."),
	}
	scores, err := NewRanker(nil).Scores(corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range corpus {
		if s := scoreOf(t, scores[a.URL], "kubernetes"); s != 0 {
			t.Errorf("%s: expected 0, got %v", a.URL, s)
		}
	}

	kw, err := NewRanker(nil).ExtractKeywordsBatch(corpus, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := kw["https://a.com"]; !reflect.DeepEqual(got, []string{"operators"}) {
		t.Errorf("a.com: got %v", got)
	}
	if got := kw["https://b.com"]; !reflect.DeepEqual(got, []string{"schedulers"}) {
		t.Errorf("b.com: got %v", got)
	}
}

func TestTFIDFValues(t *testing.T) {
	corpus := []model.Article{
		article("https://a.com", "cache cache shard"),
		article("https://b.com", "shard replica"),
	}
	scores, err := NewRanker(nil).Scores(corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := 2.0 / 3.0 * math.Ln2
	if got := scoreOf(t, scores["https://a.com"], "cache"); math.Abs(got-want) > 1e-12 {
		t.Errorf("cache: expected %v, got %v", want, got)
	}
	if got := scoreOf(t, scores["https://a.com"], "shard"); got != 0 {
		t.Errorf("shard: expected 0, got %v", got)
	}
	if top := scores["https://a.com"][0].Term; top != "cache" {
		t.Errorf("expected cache ranked first, got %q", top)
	}
}

func TestZeroTokenDocument(t *testing.T) {
	corpus := []model.Article{
		article("https://a.com", "the and of 42"),
		article("https://b.com", "Raft elections."),
	}
	kw, err := NewRanker(nil).ExtractKeywordsBatch(corpus, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kw["https://a.com"]) != 0 {
		t.Errorf("expected no keywords, got %v", kw["https://a.com"])
	}
	if want := []string{"raft", "elections"}; !reflect.DeepEqual(kw["https://b.com"], want) {
		t.Errorf("expected %v, got %v", want, kw["https://b.com"])
	}
}

func TestRankerDeterminism(t *testing.T) {
	corpus := []model.Article{
		article("https://a.com", "Vector search indexes scale. Search latency matters for indexes."),
		article("https://b.com", "Queue workers retry jobs. Workers back off on failure."),
		article("https://c.com", "Search queue latency dashboards."),
	}
	r := NewRanker(nil)
	first, err := r.ExtractKeywordsBatch(corpus, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := r.ExtractKeywordsBatch(corpus, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, first, again)
		}
	}
}

func TestTFIDFSummarizerUsesBatchKeywords(t *testing.T) {
	corpus := []model.Article{
		article("https://a.com", "Bedrock learning models ship today for every customer.\n\nLearning continues."),
		article("https://b.com", "Learning systems scale."),
	}
	out, err := NewTFIDF(Options{MaxKeywords: 2}).Summarize(corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(out))
	}
	if want := "Bedrock learning models ship today for every customer."; out[0].Text != want {
		t.Errorf("expected %q, got %q", want, out[0].Text)
	}
	if want := []string{"bedrock", "models"}; !reflect.DeepEqual(out[0].Keywords, want) {
		t.Errorf("a.com: expected %v, got %v", want, out[0].Keywords)
	}
	if want := []string{"systems", "scale"}; !reflect.DeepEqual(out[1].Keywords, want) {
		t.Errorf("b.com: expected %v, got %v", want, out[1].Keywords)
	}
}
