package summarizer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMethod is returned when a method name is not recognised.
var ErrUnknownMethod = errors.New("unknown summary method")

// Method selects one summarization strategy. It is decoded once when the
// configuration is loaded.
type Method int

const (
	FirstParagraph Method = iota
	TFIDF
	TextRank
)

var methodNames = [...]string{
	FirstParagraph: "first_paragraph",
	TFIDF:          "tfidf",
	TextRank:       "textrank",
}

// Methods lists every supported method in declaration order.
func Methods() []Method {
	return []Method{FirstParagraph, TFIDF, TextRank}
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// ParseMethod maps a configuration value to a Method. Matching ignores case
// and surrounding space.
func ParseMethod(s string) (Method, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range methodNames {
		if n == name {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q (valid: %s)", ErrUnknownMethod, s, strings.Join(methodNames[:], ", "))
}

func (m Method) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(methodNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(b []byte) error {
	parsed, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
