package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned for output types that have no renderer.
var ErrUnknownFormat = errors.New("unknown output format")

// Format is the digest document type.
type Format int

const (
	Markdown Format = iota
	HTML
	Text
	RSS
)

var formatNames = [...]string{
	Markdown: "markdown",
	HTML:     "html",
	Text:     "text",
	RSS:      "rss",
}

var formatExt = [...]string{
	Markdown: "md",
	HTML:     "html",
	Text:     "txt",
	RSS:      "xml",
}

func (f Format) valid() bool { return f >= 0 && int(f) < len(formatNames) }

func (f Format) String() string {
	if !f.valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Extension is the file extension of saved digests, without the dot.
func (f Format) Extension() string {
	if !f.valid() {
		return ""
	}
	return formatExt[f]
}

// ParseFormat accepts a format name or its common aliases ("md", "txt", "xml").
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "md":
		return Markdown, nil
	case "txt", "plain":
		return Text, nil
	case "xml":
		return RSS, nil
	}
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q (valid: %s)", ErrUnknownFormat, s, strings.Join(formatNames[:], ", "))
}

func (f Format) MarshalText() ([]byte, error) {
	if !f.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
	}
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	parsed, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
