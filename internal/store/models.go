package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an operation targets a URL that is not stored.
var ErrNotFound = errors.New("article not found")

// Record is an archived article with its summary and reading state.
type Record struct {
	URL        string
	URLHash    string
	Title      string
	Source     string
	Author     string
	Content    string
	Summary    string
	Keywords   []string
	Published  time.Time
	CreatedAt  time.Time
	IsRead     bool
	IsFavorite bool
}

// Query filters Search results. Zero values mean "no filter".
type Query struct {
	Text      string
	Source    string
	Unread    bool
	Favorites bool
	Since     time.Time
	Limit     int
}

type Stats struct {
	Total     int
	Read      int
	Favorites int
	Sources   int
	SizeBytes int64
}

// Run describes one pipeline execution.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Method     string
	Fetched    int
	New        int
	Summarized int
	OutputPath string
}
