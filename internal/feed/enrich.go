package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	gocache "github.com/patrickmn/go-cache"

	"github.com/matheuskafuri/engdigest/internal/model"
	"github.com/matheuskafuri/engdigest/internal/text"
)

// MinContentLen is the content length below which an article is enriched
// from its page.
const MinContentLen = 200

// Enricher replaces thin feed content with the readable text of the article page.
type Enricher struct {
	client    *http.Client
	userAgent string
	limiter   *Limiter
	cache     *gocache.Cache
}

func NewEnricher(client *http.Client, userAgent string, limiter *Limiter) *Enricher {
	return &Enricher{
		client:    client,
		userAgent: userAgent,
		limiter:   limiter,
		cache:     gocache.New(6*time.Hour, time.Hour),
	}
}

// Enrich returns a with Content replaced when the page yields longer text.
// Failures leave the article unchanged.
func (e *Enricher) Enrich(ctx context.Context, a model.Article) model.Article {
	if text.Len(a.Content) >= MinContentLen {
		return a
	}
	content, err := e.pageText(ctx, a.URL)
	if err != nil || text.Len(content) <= text.Len(a.Content) {
		return a
	}
	a.Content = content
	return a
}

func (e *Enricher) pageText(ctx context.Context, pageURL string) (string, error) {
	if v, ok := e.cache.Get(pageURL); ok {
		return v.(string), nil
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	if err := e.limiter.Wait(ctx, pageURL, 0); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", e.userAgent)
	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, u)
	if err != nil {
		return "", err
	}
	content := normalizeParagraphs(strings.TrimSpace(article.TextContent))
	e.cache.Set(pageURL, content, gocache.DefaultExpiration)
	return content, nil
}
