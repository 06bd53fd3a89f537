package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/matheuskafuri/engdigest/internal/config"
	"github.com/matheuskafuri/engdigest/internal/model"
)

type Fetcher interface {
	Fetch(ctx context.Context, blog config.Blog) ([]model.Article, error)
}

type RSSFetcher struct {
	parser  *gofeed.Parser
	limiter *Limiter
	now     func() time.Time
}

func NewRSSFetcher(client *http.Client, userAgent string, limiter *Limiter) *RSSFetcher {
	p := gofeed.NewParser()
	p.Client = client
	p.UserAgent = userAgent
	return &RSSFetcher{parser: p, limiter: limiter, now: time.Now}
}

func (f *RSSFetcher) Fetch(ctx context.Context, blog config.Blog) ([]model.Article, error) {
	if err := f.limiter.Wait(ctx, blog.URL, 0); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", blog.Name, err)
	}
	parsed, err := f.parser.ParseURLWithContext(blog.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", blog.Name, err)
	}

	now := f.now()
	articles := make([]model.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		pub := now
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}

		content := item.Content
		if strings.TrimSpace(content) == "" {
			content = item.Description
		}

		articles = append(articles, model.Article{
			Title:     strings.TrimSpace(item.Title),
			URL:       strings.TrimSpace(item.Link),
			Content:   htmlToText(content),
			Source:    blog.Name,
			Published: pub,
			Author:    itemAuthor(item),
			Tags:      item.Categories,
		})
	}
	return articles, nil
}

func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, p := range item.Authors {
		if p != nil && p.Name != "" {
			return p.Name
		}
	}
	return ""
}

type Options struct {
	Timeout       time.Duration
	Concurrency   int
	RatePerSecond float64
	UserAgent     string
	FullContent   bool
	HTMLFallback  bool
	Client        *http.Client
}

func OptionsFromConfig(c config.FetchConfig) Options {
	return Options{
		Timeout:       c.TimeoutDuration(),
		Concurrency:   c.Concurrency,
		RatePerSecond: c.RatePerSecond,
		UserAgent:     c.UserAgent,
		FullContent:   c.FullContent,
		HTMLFallback:  c.HTMLFallback,
	}
}

type FetchResult struct {
	Articles []model.Article
	Errors   []error
}

// Service fetches every configured blog with the fetcher its type calls for.
type Service struct {
	rss      Fetcher
	html     Fetcher
	enricher *Enricher
	opts     Options
}

func New(opts Options) *Service {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "engdigest/1.0"
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	limiter := NewLimiter(opts.RatePerSecond, 1)
	s := &Service{
		rss:  NewRSSFetcher(client, opts.UserAgent, limiter),
		html: NewHTMLFetcher(client, opts.UserAgent, NewRobotsChecker(client, opts.UserAgent), limiter),
		opts: opts,
	}
	if opts.FullContent {
		s.enricher = NewEnricher(client, opts.UserAgent, limiter)
	}
	return s
}

// FetchAll fetches blogs concurrently. A failing blog contributes an error
// and no articles; articles keep blog order, then feed order.
func (s *Service) FetchAll(ctx context.Context, blogs []config.Blog) FetchResult {
	perBlog := make([][]model.Article, len(blogs))
	errs := make([]error, len(blogs))

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, b := range blogs {
		g.Go(func() error {
			perBlog[i], errs[i] = s.fetchBlog(ctx, b)
			return nil
		})
	}
	_ = g.Wait()

	var result FetchResult
	for i := range blogs {
		if errs[i] != nil {
			result.Errors = append(result.Errors, errs[i])
			continue
		}
		result.Articles = append(result.Articles, perBlog[i]...)
	}
	return result
}

func (s *Service) fetchBlog(ctx context.Context, b config.Blog) ([]model.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var (
		articles []model.Article
		err      error
	)
	if strings.EqualFold(b.Type, "html") {
		articles, err = s.html.Fetch(ctx, b)
	} else {
		articles, err = s.rss.Fetch(ctx, b)
		if err != nil && s.opts.HTMLFallback {
			var htmlErr error
			articles, htmlErr = s.html.Fetch(ctx, b)
			if htmlErr != nil {
				return nil, errors.Join(err, htmlErr)
			}
			err = nil
		}
	}
	if err != nil {
		return nil, err
	}

	if s.enricher != nil {
		for i := range articles {
			articles[i] = s.enricher.Enrich(ctx, articles[i])
		}
	}
	return articles, nil
}

// FetchAll is shorthand for New(opts).FetchAll.
func FetchAll(ctx context.Context, blogs []config.Blog, opts Options) FetchResult {
	return New(opts).FetchAll(ctx, blogs)
}
