package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/matheuskafuri/engdigest/internal/config"
	"github.com/matheuskafuri/engdigest/internal/model"
)

// MaxHTMLArticles caps how many posts are taken from a scraped index page.
const MaxHTMLArticles = 10

// ErrDisallowed is returned when robots.txt forbids fetching a page.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// HTMLFetcher scrapes a blog index page for posts.
type HTMLFetcher struct {
	client    *http.Client
	userAgent string
	robots    *RobotsChecker
	limiter   *Limiter
	now       func() time.Time
}

func NewHTMLFetcher(client *http.Client, userAgent string, robots *RobotsChecker, limiter *Limiter) *HTMLFetcher {
	return &HTMLFetcher{client: client, userAgent: userAgent, robots: robots, limiter: limiter, now: time.Now}
}

func (f *HTMLFetcher) Fetch(ctx context.Context, blog config.Blog) ([]model.Article, error) {
	allowed, delay, err := f.robots.CanFetch(ctx, blog.URL)
	if err != nil {
		return nil, fmt.Errorf("scraping %s: %w", blog.Name, err)
	}
	if !allowed {
		return nil, fmt.Errorf("scraping %s: %w", blog.Name, ErrDisallowed)
	}
	if err := f.limiter.Wait(ctx, blog.URL, delay); err != nil {
		return nil, fmt.Errorf("scraping %s: %w", blog.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, blog.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("scraping %s: %w", blog.Name, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraping %s: %w", blog.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scraping %s: unexpected status %d", blog.Name, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scraping %s: %w", blog.Name, err)
	}
	base, err := url.Parse(blog.URL)
	if err != nil {
		return nil, fmt.Errorf("scraping %s: %w", blog.Name, err)
	}

	nodes := findAll(doc, isElement(atom.Article))
	if len(nodes) == 0 {
		nodes = findAll(doc, hasClass("post", "entry"))
	}

	now := f.now()
	var articles []model.Article
	for _, n := range nodes {
		if len(articles) == MaxHTMLArticles {
			break
		}
		a, ok := parsePost(n, base, now)
		if !ok {
			continue
		}
		a.Source = blog.Name
		articles = append(articles, a)
	}
	return articles, nil
}

// parsePost extracts a post from an index-page element. Elements without a
// heading or link are skipped.
func parsePost(n *html.Node, base *url.URL, now time.Time) (model.Article, bool) {
	heading := find(n, isElement(atom.H1, atom.H2, atom.H3))
	if heading == nil {
		heading = find(n, hasClass("title", "headline"))
	}
	if heading == nil {
		return model.Article{}, false
	}
	title := nodeText(heading)

	link := find(heading, isElement(atom.A))
	if link == nil {
		link = find(n, isElement(atom.A))
	}
	if title == "" || link == nil || attr(link, "href") == "" {
		return model.Article{}, false
	}
	ref, err := url.Parse(strings.TrimSpace(attr(link, "href")))
	if err != nil {
		return model.Article{}, false
	}

	a := model.Article{
		Title:     title,
		URL:       base.ResolveReference(ref).String(),
		Published: postDate(n, now),
		Content:   postContent(n),
	}
	if author := find(n, hasClass("author", "byline")); author != nil {
		a.Author = nodeText(author)
	}
	return a, true
}

func postDate(n *html.Node, now time.Time) time.Time {
	var candidates []string
	if t := find(n, isElement(atom.Time)); t != nil {
		candidates = append(candidates, attr(t, "datetime"), nodeText(t))
	}
	if d := find(n, hasClass("date", "published")); d != nil {
		candidates = append(candidates, nodeText(d))
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if t, err := dateparse.ParseAny(c); err == nil {
			return t
		}
	}
	return now
}

func postContent(n *html.Node) string {
	paras := findAll(n, isElement(atom.P))
	if len(paras) == 0 {
		return htmlNodeText(n)
	}
	parts := make([]string, 0, len(paras))
	for _, p := range paras {
		if t := nodeText(p); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

func htmlNodeText(n *html.Node) string {
	var b strings.Builder
	writeText(&b, n)
	return normalizeParagraphs(b.String())
}
