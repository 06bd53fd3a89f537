// Package pipeline runs one digest: fetch, filter, dedup, summarize, store,
// render, save and deliver.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/matheuskafuri/engdigest/internal/config"
	"github.com/matheuskafuri/engdigest/internal/deliver"
	"github.com/matheuskafuri/engdigest/internal/feed"
	"github.com/matheuskafuri/engdigest/internal/filter"
	"github.com/matheuskafuri/engdigest/internal/model"
	"github.com/matheuskafuri/engdigest/internal/render"
	"github.com/matheuskafuri/engdigest/internal/site"
	"github.com/matheuskafuri/engdigest/internal/store"
	"github.com/matheuskafuri/engdigest/internal/summarizer"
)

type Fetcher interface {
	FetchAll(ctx context.Context, blogs []config.Blog) feed.FetchResult
}

// Archive is the part of the store a run needs.
type Archive interface {
	Dedup(ctx context.Context, articles []model.Article) ([]model.Article, error)
	SaveSummaries(ctx context.Context, articles []model.Article, summaries []model.Summary) error
	RecordRun(ctx context.Context, r store.Run) error
}

type Options struct {
	// DryRun renders without saving, storing or delivering.
	DryRun bool
	// NoDedup summarizes articles even when they are already archived.
	NoDedup bool
}

type Option func(*Runner)

func WithFetcher(f Fetcher) Option { return func(r *Runner) { r.fetcher = f } }

func WithDeliverers(d ...deliver.Deliverer) Option {
	return func(r *Runner) { r.deliverers = d }
}

type Runner struct {
	cfg        *config.Config
	archive    Archive
	fetcher    Fetcher
	strategy   summarizer.Strategy
	renderer   render.Renderer
	plain      render.Renderer
	deliverers []deliver.Deliverer
	logger     *slog.Logger
	opts       Options
}

// Result summarizes a run.
type Result struct {
	RunID          string
	Fetched        int
	Rejected       int
	Filtered       int
	New            int
	Summarized     int
	OutputPath     string
	Content        string
	FetchErrors    []error
	DeliveryErrors []error
	Warnings       []string
}

// New prepares a runner. The summarization strategy and renderer are chosen
// once here from cfg. archive may be nil, which disables dedup and storage.
func New(cfg *config.Config, archive Archive, logger *slog.Logger, opts Options, options ...Option) (*Runner, error) {
	sumOpts, err := cfg.Summary.Options()
	if err != nil {
		return nil, fmt.Errorf("summary options: %w", err)
	}
	strategy, err := summarizer.New(cfg.Summary.Method, sumOpts)
	if err != nil {
		return nil, err
	}
	renderOpts := render.Options{Title: cfg.Output.Title, SiteURL: cfg.Output.SiteURL}
	renderer, err := render.New(cfg.Output.Type, renderOpts)
	if err != nil {
		return nil, err
	}
	plain := renderer
	if cfg.Output.Type == render.HTML || cfg.Output.Type == render.RSS {
		if plain, err = render.New(render.Text, renderOpts); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runner{
		cfg:        cfg,
		archive:    archive,
		fetcher:    feed.New(feed.OptionsFromConfig(cfg.Fetch)),
		strategy:   strategy,
		renderer:   renderer,
		plain:      plain,
		deliverers: deliver.FromConfig(cfg.Output),
		logger:     logger,
		opts:       opts,
	}
	for _, o := range options {
		o(r)
	}
	return r, nil
}

func (r *Runner) Run(ctx context.Context, now time.Time) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	log := r.logger.With("run_id", res.RunID)
	started := time.Now()

	blogs := r.cfg.EnabledBlogs()
	log.Info("fetching", "blogs", len(blogs), "method", r.cfg.Summary.Method.String())
	fetched := r.fetcher.FetchAll(ctx, blogs)
	res.Fetched = len(fetched.Articles)
	res.FetchErrors = fetched.Errors
	for _, err := range fetched.Errors {
		log.Warn("fetch failed", "err", err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	valid, warnings := wellFormed(fetched.Articles)
	res.Rejected = len(fetched.Articles) - len(valid)
	for _, w := range warnings {
		log.Warn("skipping article", "reason", w)
	}
	res.Warnings = append(res.Warnings, warnings...)

	articles := filter.Apply(valid, filter.OptionsFromConfig(r.cfg.Fetch), now)
	res.Filtered = len(articles)
	log.Debug("filtered", "kept", len(articles), "of", len(valid))

	if r.archive != nil && !r.opts.NoDedup {
		fresh, err := r.archive.Dedup(ctx, articles)
		if err != nil {
			return res, fmt.Errorf("dedup: %w", err)
		}
		articles = fresh
	}
	res.New = len(articles)

	summaries, err := r.strategy.Summarize(articles)
	if err != nil {
		return res, fmt.Errorf("summarize: %w", err)
	}
	res.Summarized = len(summaries)
	log.Info("summarized", "articles", len(summaries))

	content, err := r.renderer.Render(summaries, now)
	if err != nil {
		return res, err
	}
	res.Content = content

	if r.opts.DryRun {
		log.Info("dry run, nothing saved")
		return res, nil
	}

	if r.archive != nil {
		if err := r.archive.SaveSummaries(ctx, articles, summaries); err != nil {
			return res, fmt.Errorf("store: %w", err)
		}
	}

	path, err := render.Save(r.cfg.Output.Path, content, r.renderer.Extension(), now)
	if err != nil {
		return res, err
	}
	res.OutputPath = path
	log.Info("digest saved", "path", path)

	if _, err := site.BuildIndex(r.cfg.Output.Path, r.cfg.Output.Title); err != nil {
		log.Warn("index not rebuilt", "err", err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("index: %v", err))
	}

	if len(r.deliverers) > 0 {
		d := deliver.Digest{
			Title:  fmt.Sprintf("%s – %s", r.title(), now.Format("2006-01-02")),
			Body:   content,
			Path:   path,
			Format: r.cfg.Output.Type,
		}
		if r.plain != r.renderer {
			if d.Plain, err = r.plain.Render(summaries, now); err != nil {
				return res, err
			}
		}
		res.DeliveryErrors = deliver.All(ctx, log, r.deliverers, d)
	}

	if r.archive != nil {
		run := store.Run{
			ID:         res.RunID,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Method:     r.cfg.Summary.Method.String(),
			Fetched:    res.Fetched,
			New:        res.New,
			Summarized: res.Summarized,
			OutputPath: path,
		}
		if err := r.archive.RecordRun(ctx, run); err != nil {
			log.Warn("run not recorded", "err", err)
		}
	}
	return res, nil
}

func (r *Runner) title() string {
	if r.cfg.Output.Title == "" {
		return render.DefaultTitle
	}
	return r.cfg.Output.Title
}

// wellFormed drops malformed articles and repeated URLs, keeping the first
// occurrence, and describes each dropped article.
func wellFormed(articles []model.Article) ([]model.Article, []string) {
	var (
		out      = make([]model.Article, 0, len(articles))
		warnings []string
		seen     = make(map[string]bool, len(articles))
	)
	for _, a := range articles {
		if err := a.Validate(); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s %q: %v", a.Source, a.URL, err))
			continue
		}
		if seen[a.URL] {
			warnings = append(warnings, fmt.Sprintf("%s %q: duplicate url", a.Source, a.URL))
			continue
		}
		seen[a.URL] = true
		out = append(out, a)
	}
	return out, warnings
}
