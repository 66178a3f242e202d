package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSSource serves headlines from any RSS or Atom feed.
type RSSSource struct {
	name   string
	url    string
	parser *gofeed.Parser
}

// NewRSSSource creates a feed-backed headlines provider.
func NewRSSSource(name, feedURL string, timeout time.Duration) *RSSSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: timeout}
	return &RSSSource{name: name, url: feedURL, parser: parser}
}

func (r *RSSSource) Name() string { return r.name }

func (r *RSSSource) TopHeadlines(ctx context.Context, q Query) ([]RawArticle, error) {
	feed, err := r.parser.ParseURLWithContext(r.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch feed %s: %v", ErrUpstream, r.name, err)
	}

	items := feed.Items
	if q.PageSize > 0 && len(items) > q.PageSize {
		items = items[:q.PageSize]
	}

	sourceName := feed.Title
	if sourceName == "" {
		sourceName = r.name
	}

	articles := make([]RawArticle, 0, len(items))
	for _, item := range items {
		a := RawArticle{
			SourceName:  sourceName,
			Title:       item.Title,
			Description: item.Description,
			URL:         item.Link,
			Content:     item.Content,
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			a.PublishedAt = *item.UpdatedParsed
		}
		if item.Image != nil {
			a.ImageURL = item.Image.URL
		} else {
			for _, enc := range item.Enclosures {
				if enc != nil && enc.URL != "" {
					a.ImageURL = enc.URL
					break
				}
			}
		}
		articles = append(articles, a)
	}
	return articles, nil
}
