package tui

import "github.com/matheuskafuri/engdigest/internal/store"

type recordsLoadedMsg struct {
	records []store.Record
}

type errMsg struct {
	err error
}

type flag int

const (
	flagRead flag = iota
	flagFavorite
)

type flagUpdatedMsg struct {
	url   string
	flag  flag
	value bool
}
