// Package filter narrows fetched articles down to the ones worth summarizing.
package filter

import (
	"cmp"
	"slices"
	"time"

	"github.com/matheuskafuri/engdigest/internal/config"
	"github.com/matheuskafuri/engdigest/internal/model"
)

// Options bound a digest. Zero values mean unlimited.
type Options struct {
	LookbackHours   int
	MaxPostsPerBlog int
	MaxTotalPosts   int
}

func OptionsFromConfig(c config.FetchConfig) Options {
	return Options{
		LookbackHours:   c.LookbackHours,
		MaxPostsPerBlog: c.MaxPostsPerBlog,
		MaxTotalPosts:   c.MaxTotalPosts,
	}
}

// Apply drops articles older than the lookback window and returns the rest
// newest first, capped per source and overall. The input is not modified.
func Apply(articles []model.Article, opts Options, now time.Time) []model.Article {
	out := make([]model.Article, 0, len(articles))
	cutoff := now.Add(-time.Duration(opts.LookbackHours) * time.Hour)
	for _, a := range articles {
		if opts.LookbackHours > 0 && a.Published.Before(cutoff) {
			continue
		}
		out = append(out, a)
	}

	slices.SortStableFunc(out, func(a, b model.Article) int {
		return cmp.Compare(b.Published.UnixNano(), a.Published.UnixNano())
	})

	if opts.MaxPostsPerBlog > 0 {
		perSource := map[string]int{}
		kept := out[:0]
		for _, a := range out {
			if perSource[a.Source] >= opts.MaxPostsPerBlog {
				continue
			}
			perSource[a.Source]++
			kept = append(kept, a)
		}
		out = kept
	}

	if opts.MaxTotalPosts > 0 && len(out) > opts.MaxTotalPosts {
		out = out[:opts.MaxTotalPosts]
	}
	return out
}
