// Package sources defines the upstream provider interfaces and their
// implementations: NewsAPI and RSS/Atom feeds for headlines, Reddit for
// trending discussion titles.
package sources

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUpstream marks any failure to obtain usable data from a provider:
	// transport errors, timeouts, non-2xx responses, malformed bodies or
	// provider-level error statuses.
	ErrUpstream = errors.New("upstream unavailable")

	// ErrRateLimited is returned without contacting the provider when the
	// local request budget is exhausted.
	ErrRateLimited = errors.New("upstream rate limit exceeded")
)

// RawArticle is a headline as the provider returned it, before
// normalization. Zero values mean the provider omitted the field.
type RawArticle struct {
	SourceName  string
	Title       string
	Description string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	Content     string
}

// Query parameterizes a headlines request.
type Query struct {
	Country  string
	PageSize int
}

// HeadlinesProvider fetches raw top headlines.
type HeadlinesProvider interface {
	// Name returns the human-readable provider name.
	Name() string

	// TopHeadlines retrieves up to q.PageSize raw articles.
	TopHeadlines(ctx context.Context, q Query) ([]RawArticle, error)
}

// Post is a discussion forum item.
type Post struct {
	Title string
}

// ForumProvider fetches currently popular discussion posts.
type ForumProvider interface {
	Name() string
	HotPosts(ctx context.Context, limit int) ([]Post, error)
}
