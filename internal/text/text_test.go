package text

import (
	"reflect"
	"strings"
	"testing"
)

func TestParagraphs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", " \n\n \t ", []string{}},
		{"single", "One paragraph.", []string{"One paragraph."}},
		{"two", "First.\n\nSecond.", []string{"First.", "Second."}},
		{"single newline stays", "Line one\nline two", []string{"Line one\nline two"}},
		{"blank line with spaces", "A\n   \nB", []string{"A", "B"}},
		{"many blank lines", "A\n\n\n\nB", []string{"A", "B"}},
		{"crlf", "A\r\n\r\nB", []string{"A", "B"}},
		{"trimmed", "  A  \n\n  B  ", []string{"A", "B"}},
	}
	for _, tt := range tests {
		got := Paragraphs(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: Paragraphs(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
		}
	}
}

func TestSentences(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"Hello world. How are you? Fine!", []string{"Hello world.", "How are you?", "Fine!"}},
		{"Short.\n\nTiny.\n\nOK.", []string{"Short.", "Tiny.", "OK."}},
		{"Version 1.2 shipped. Next", []string{"Version 1.2 shipped.", "Next"}},
		{"No terminal punctuation", []string{"No terminal punctuation"}},
		{"Wait... what?", []string{"Wait...", "what?"}},
		{"Ends with dot.", []string{"Ends with dot."}},
	}
	for _, tt := range tests {
		got := Sentences(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Sentences(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"Amazon Bedrock now supports reinforcement fine-tuning.", []string{"amazon", "bedrock", "now", "supports", "reinforcement", "fine", "tuning"}},
		{"AI is ok", nil},
		{"go1234 rust2go", []string{"rust"}},
		{"Café NAÏVE", []string{"café", "naïve"}},
		{"!!! 123 ...", nil},
	}
	for _, tt := range tests {
		got := Tokenize(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFilterTerms(t *testing.T) {
	f := NewFilter(nil)
	got := f.Terms("The system will scale with these clusters")
	want := []string{"system", "scale", "clusters"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms = %q, want %q", got, want)
	}
	if !f.IsStopWord("THE") {
		t.Error("expected stop word match to be case-insensitive")
	}
	if f.IsStopWord("kubernetes") {
		t.Error("kubernetes should not be a stop word")
	}
}

func TestDefaultStopWordsSize(t *testing.T) {
	sw := DefaultStopWords()
	if len(sw) < 70 {
		t.Errorf("expected at least 70 default stop words, got %d", len(sw))
	}
	for _, w := range []string{"the", "and", "would", "which", "using"} {
		if !sw.Contains(w) {
			t.Errorf("expected %q in default stop words", w)
		}
	}
}

func TestDefaultStopWordsIsCopy(t *testing.T) {
	a := DefaultStopWords()
	a["kubernetes"] = struct{}{}
	if DefaultStopWords().Contains("kubernetes") {
		t.Error("mutating one copy must not affect another")
	}
}

func TestParseStopWords(t *testing.T) {
	sw, err := ParseStopWords(strings.NewReader("# comment\nFoo bar\n\n  baz  \n"))
	if err != nil {
		t.Fatalf("ParseStopWords: %v", err)
	}
	if len(sw) != 3 || !sw.Contains("foo") || !sw.Contains("bar") || !sw.Contains("baz") {
		t.Errorf("unexpected set: %v", sw)
	}
	if sw.Contains("comment") {
		t.Error("comment lines must be skipped")
	}
}

func TestStopWordsWith(t *testing.T) {
	base := StopWords{"the": {}}
	ext := base.With("Engineering", " ")
	if !ext.Contains("engineering") || !ext.Contains("the") {
		t.Errorf("unexpected extended set: %v", ext)
	}
	if len(ext) != 2 {
		t.Errorf("expected 2 words, got %d", len(ext))
	}
	if base.Contains("engineering") {
		t.Error("With must not modify the receiver")
	}
}
