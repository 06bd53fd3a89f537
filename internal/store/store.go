// Package store archives summarized articles for deduplication, search and
// reading state. It runs on an embedded SQLite file or on PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/matheuskafuri/engdigest/internal/model"
)

type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
	dialect dialect
	path    string
}

// Open connects to driver "sqlite" (target is a file path) or "postgres"
// (target is a DSN). An empty driver means sqlite.
func Open(driver, target string) (*Store, error) {
	switch driver {
	case "", "sqlite":
		return OpenSQLite(target)
	case "postgres":
		return OpenPostgres(target)
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}

func OpenSQLite(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB, dialect: sqliteDialect, path: dbPath}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func OpenPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	s := &Store{readDB: db, writeDB: db, dialect: postgresDialect}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if _, err := s.writeDB.Exec(s.dialect.schema()); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil && s.writeDB != s.readDB {
		errs = append(errs, s.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func (s *Store) q(query string) string { return s.dialect.rebind(query) }

// dbTime normalizes timestamps so stored values compare consistently.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// Exists reports whether url has been archived before.
func (s *Store) Exists(ctx context.Context, url string) (bool, error) {
	var one int
	err := s.readDB.QueryRowContext(ctx, s.q("SELECT 1 FROM articles WHERE url_hash = ?"), model.URLHash(url)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", url, err)
	}
	return true, nil
}

// Dedup drops articles already archived and repeated URLs within the batch,
// keeping the first occurrence.
func (s *Store) Dedup(ctx context.Context, articles []model.Article) ([]model.Article, error) {
	seen := make(map[string]bool, len(articles))
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		exists, err := s.Exists(ctx, a.URL)
		if err != nil {
			return nil, err
		}
		if !exists {
			out = append(out, a)
		}
	}
	return out, nil
}

// SaveSummaries upserts articles together with the summary of the same URL.
// Reading state of existing rows is preserved.
func (s *Store) SaveSummaries(ctx context.Context, articles []model.Article, summaries []model.Summary) error {
	byURL := make(map[string]model.Summary, len(summaries))
	for _, sum := range summaries {
		byURL[sum.URL] = sum
	}

	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.q(`
		INSERT INTO articles (url_hash, url, title, source, author, content, summary, keywords, published, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url_hash) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			summary = excluded.summary,
			keywords = excluded.keywords
	`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := dbTime(time.Now())
	for _, a := range articles {
		sum := byURL[a.URL]
		_, err := stmt.ExecContext(ctx, a.Hash(), a.URL, a.Title, a.Source, a.Author, a.Content,
			sum.Text, strings.Join(sum.Keywords, ","), dbTime(a.Published), now)
		if err != nil {
			return fmt.Errorf("saving article %s: %w", a.URL, err)
		}
	}

	return tx.Commit()
}

func (s *Store) Search(ctx context.Context, opts Query) ([]Record, error) {
	var (
		where []string
		args  []any
	)

	if opts.Text != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(summary) LIKE ? OR LOWER(keywords) LIKE ? OR LOWER(content) LIKE ?)")
		term := "%" + strings.ToLower(opts.Text) + "%"
		args = append(args, term, term, term, term)
	}
	if opts.Source != "" {
		where = append(where, "source = ?")
		args = append(args, opts.Source)
	}
	if opts.Unread {
		where = append(where, "is_read = ?")
		args = append(args, false)
	}
	if opts.Favorites {
		where = append(where, "is_favorite = ?")
		args = append(args, true)
	}
	if !opts.Since.IsZero() {
		where = append(where, "published >= ?")
		args = append(args, dbTime(opts.Since))
	}

	query := "SELECT url, url_hash, title, source, author, content, summary, keywords, published, created_at, is_read, is_favorite FROM articles"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY published DESC, url ASC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := s.readDB.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r        Record
			keywords string
		)
		if err := rows.Scan(&r.URL, &r.URLHash, &r.Title, &r.Source, &r.Author, &r.Content, &r.Summary,
			&keywords, &r.Published, &r.CreatedAt, &r.IsRead, &r.IsFavorite); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		if keywords != "" {
			r.Keywords = strings.Split(keywords, ",")
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) MarkRead(ctx context.Context, url string, read bool) error {
	return s.setFlag(ctx, "is_read", url, read)
}

func (s *Store) MarkFavorite(ctx context.Context, url string, favorite bool) error {
	return s.setFlag(ctx, "is_favorite", url, favorite)
}

func (s *Store) setFlag(ctx context.Context, column, url string, value bool) error {
	res, err := s.writeDB.ExecContext(ctx, s.q("UPDATE articles SET "+column+" = ? WHERE url_hash = ?"), value, model.URLHash(url)) //nolint:gosec
	if err != nil {
		return fmt.Errorf("updating %s for %s: %w", column, url, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	return nil
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.readDB.QueryRowContext(ctx, s.q(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN is_read = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_favorite = ? THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT source)
		FROM articles
	`), true, true).Scan(&st.Total, &st.Read, &st.Favorites, &st.Sources)
	if err != nil {
		return st, fmt.Errorf("counting articles: %w", err)
	}

	if s.path != "" {
		if info, err := os.Stat(s.path); err == nil {
			st.SizeBytes = info.Size()
		}
		return st, nil
	}
	if err := s.readDB.QueryRowContext(ctx, "SELECT pg_total_relation_size('articles')").Scan(&st.SizeBytes); err != nil {
		return st, fmt.Errorf("reading table size: %w", err)
	}
	return st, nil
}

// Prune deletes articles published before now-olderThan. Favorites are kept.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := dbTime(time.Now().Add(-olderThan))
	res, err := s.writeDB.ExecContext(ctx, s.q("DELETE FROM articles WHERE published < ? AND is_favorite = ?"), cutoff, false)
	if err != nil {
		return 0, fmt.Errorf("pruning articles: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 && s.dialect.driver == "sqlite" {
		if _, err := s.writeDB.ExecContext(ctx, "VACUUM"); err != nil {
			return n, fmt.Errorf("vacuum: %w", err)
		}
	}
	return n, nil
}

func (s *Store) RecordRun(ctx context.Context, r Run) error {
	_, err := s.writeDB.ExecContext(ctx, s.q(`
		INSERT INTO runs (id, started_at, finished_at, method, fetched, new_count, summarized, output_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), r.ID, dbTime(r.StartedAt), dbTime(r.FinishedAt), r.Method, r.Fetched, r.New, r.Summarized, r.OutputPath)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	return nil
}

// LastRun returns the most recent run, or ErrNotFound.
func (s *Store) LastRun(ctx context.Context) (Run, error) {
	var r Run
	err := s.readDB.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, method, fetched, new_count, summarized, output_path
		FROM runs ORDER BY started_at DESC LIMIT 1
	`).Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Method, &r.Fetched, &r.New, &r.Summarized, &r.OutputPath)
	if err == sql.ErrNoRows {
		return r, ErrNotFound
	}
	if err != nil {
		return r, fmt.Errorf("reading last run: %w", err)
	}
	return r, nil
}
