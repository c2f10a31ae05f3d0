package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mmcdole/gofeed"
)

var _ Source = (*RSSSource)(nil)

// RSSSource ingests articles directly from RSS/Atom feeds. It is used when
// no scanner database is configured; sector classification is left empty
// since only the scanner provides it.
type RSSSource struct {
	feedURLs   []string
	httpClient *http.Client
	userAgent  string
}

func NewRSSSource(feedURLs []string, httpClient *http.Client, userAgent string) *RSSSource {
	return &RSSSource{
		feedURLs:   feedURLs,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (s *RSSSource) Name() string {
	return "rss"
}

// Fetch pulls the configured feeds and returns up to limit items. A feed
// that fails to parse is skipped; only all feeds failing makes the source
// unavailable.
func (s *RSSSource) Fetch(ctx context.Context, limit int) ([]RawArticle, error) {
	if len(s.feedURLs) == 0 {
		return nil, fmt.Errorf("%w: no feed URLs configured", ErrSourceUnavailable)
	}

	parser := gofeed.NewParser()
	parser.Client = s.httpClient
	parser.UserAgent = s.userAgent

	var articles []RawArticle
	failures := 0

	for _, url := range s.feedURLs {
		feed, err := parser.ParseURLWithContext(url, ctx)
		if err != nil {
			slog.Warn("Failed to fetch feed, skipping", "url", url, "error", err)
			failures++
			continue
		}

		for _, item := range feed.Items {
			if len(articles) >= limit {
				break
			}
			articles = append(articles, s.itemToRaw(feed, item))
		}
	}

	if failures == len(s.feedURLs) {
		return nil, fmt.Errorf("%w: all %d feeds failed", ErrSourceUnavailable, failures)
	}

	return articles, nil
}

func (s *RSSSource) itemToRaw(feed *gofeed.Feed, item *gofeed.Item) RawArticle {
	raw := RawArticle{
		ArticleID:     GenerateID(item.Link, item.Title),
		Title:         item.Title,
		Link:          item.Link,
		Summary:       item.Description,
		SourceName:    feed.Title,
		PublishedAt:   item.PublishedParsed,
		Subcategories: item.Categories,
	}

	if item.Image != nil {
		raw.ImageURL = item.Image.URL
	}

	return raw
}
