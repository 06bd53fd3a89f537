package render

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/engdigest/internal/model"
)

const defaultSiteURL = "https://github.com/matheuskafuri/engdigest"

type RSSRenderer struct {
	opts Options
}

func (r *RSSRenderer) Extension() string { return RSS.Extension() }

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	AtomLink      atomLink  `xml:"atom:link"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Generator     string    `xml:"generator"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        rssGUID  `xml:"guid"`
	Categories  []string `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

func (r *RSSRenderer) Render(summaries []model.Summary, now time.Time) (string, error) {
	site := strings.TrimRight(r.opts.SiteURL, "/")
	if site == "" {
		site = defaultSiteURL
	}
	doc := rssDoc{
		Version: "2.0",
		AtomNS:  "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         r.opts.title(),
			Link:          site,
			Description:   "Daily digest of engineering blog posts",
			Language:      "en-us",
			AtomLink:      atomLink{Href: site + "/rss.xml", Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: now.UTC().Format(time.RFC1123Z),
			Generator:     "engdigest",
		},
	}
	for _, s := range summaries {
		item := rssItem{
			Title:       s.Title,
			Link:        s.URL,
			Description: s.Text,
			GUID:        rssGUID{IsPermaLink: true, Value: s.URL},
			Categories:  s.Keywords,
		}
		if !s.Published.IsZero() {
			item.PubDate = s.Published.UTC().Format(time.RFC1123Z)
		}
		doc.Channel.Items = append(doc.Channel.Items, item)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("rendering rss: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}
