package store

import (
	"strconv"
	"strings"
)

type dialect struct {
	driver   string
	numbered bool
	boolType string
	timeType string
}

var (
	sqliteDialect   = dialect{driver: "sqlite", boolType: "INTEGER", timeType: "DATETIME"}
	postgresDialect = dialect{driver: "postgres", numbered: true, boolType: "BOOLEAN", timeType: "TIMESTAMPTZ"}
)

// rebind rewrites '?' placeholders as $1, $2, ... for drivers that need it.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) schema() string {
	r := strings.NewReplacer("{bool}", d.boolType, "{time}", d.timeType, "{false}", d.falseLiteral())
	return r.Replace(`
		CREATE TABLE IF NOT EXISTS articles (
			url_hash    TEXT PRIMARY KEY,
			url         TEXT NOT NULL,
			title       TEXT NOT NULL,
			source      TEXT NOT NULL DEFAULT '',
			author      TEXT NOT NULL DEFAULT '',
			content     TEXT NOT NULL DEFAULT '',
			summary     TEXT NOT NULL DEFAULT '',
			keywords    TEXT NOT NULL DEFAULT '',
			published   {time} NOT NULL,
			created_at  {time} NOT NULL,
			is_read     {bool} NOT NULL DEFAULT {false},
			is_favorite {bool} NOT NULL DEFAULT {false}
		);
		CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published DESC);
		CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source);
		CREATE INDEX IF NOT EXISTS idx_articles_is_read ON articles(is_read);
		CREATE INDEX IF NOT EXISTS idx_articles_is_favorite ON articles(is_favorite);

		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  {time} NOT NULL,
			finished_at {time} NOT NULL,
			method      TEXT NOT NULL DEFAULT '',
			fetched     INTEGER NOT NULL DEFAULT 0,
			new_count   INTEGER NOT NULL DEFAULT 0,
			summarized  INTEGER NOT NULL DEFAULT 0,
			output_path TEXT NOT NULL DEFAULT ''
		);
	`)
}

func (d dialect) falseLiteral() string {
	if d.boolType == "BOOLEAN" {
		return "FALSE"
	}
	return "0"
}
