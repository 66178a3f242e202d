// Package aggregator turns upstream provider data into the validated,
// tagged article and trend lists served to clients. It never returns an
// error: any upstream failure degrades to built-in sample data.
package aggregator

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/RobinCoderZhao/happening-now/internal/news"
	"github.com/RobinCoderZhao/happening-now/internal/news/sources"
	"github.com/RobinCoderZhao/happening-now/pkg/htmltext"
)

// StatusSuccess is the status value of every aggregated response.
const StatusSuccess = "success"

const (
	summaryChars = 200
	ellipsis     = "..."
)

// Config holds the aggregation settings.
type Config struct {
	Country  string
	PageSize int
	// Timeout bounds each upstream call.
	Timeout time.Duration
	// PlaceholderImage is used for articles without a cover image.
	PlaceholderImage string
	// ForumPosts is how many hot posts are requested from the forum.
	ForumPosts int
}

// HeadlinesResult is the /news payload.
type HeadlinesResult struct {
	Status       string         `json:"status"`
	Articles     []news.Article `json:"articles"`
	TotalResults int            `json:"totalResults"`
	Source       string         `json:"source"`
	Note         string         `json:"note,omitempty"`
}

// Fallback reports whether the result came from sample data.
func (r HeadlinesResult) Fallback() bool { return r.Source == news.FallbackSource }

// Service aggregates headlines and trends.
type Service struct {
	cfg       Config
	headlines sources.HeadlinesProvider
	forum     sources.ForumProvider
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
	intn      func(n int) int
}

// New creates an aggregation service. Either provider may be nil, in which
// case the corresponding endpoint always serves fallback data.
func New(cfg Config, headlines sources.HeadlinesProvider, forum sources.ForumProvider, metrics *Metrics) *Service {
	if cfg.Country == "" {
		cfg.Country = "us"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ForumPosts <= 0 {
		cfg.ForumPosts = 10
	}
	return &Service{
		cfg:       cfg,
		headlines: headlines,
		forum:     forum,
		metrics:   metrics,
		logger:    slog.Default(),
		now:       time.Now,
		intn:      rand.IntN,
	}
}

// GetHeadlines returns tagged, validated headlines from the upstream
// provider, or the fallback sample set when the provider fails.
func (s *Service) GetHeadlines(ctx context.Context) HeadlinesResult {
	raw, err := s.fetchHeadlines(ctx)
	if err != nil {
		s.logger.Warn("headlines provider failed, using mock data", "error", err)
		articles := news.FallbackArticles(s.now())
		s.metrics.observeServed("news", news.FallbackSource)
		return HeadlinesResult{
			Status:       StatusSuccess,
			Articles:     articles,
			TotalResults: len(articles),
			Source:       news.FallbackSource,
			Note:         news.FallbackNote,
		}
	}

	articles := s.normalize(raw)
	s.metrics.observeServed("news", s.headlines.Name())
	return HeadlinesResult{
		Status:       StatusSuccess,
		Articles:     articles,
		TotalResults: len(articles),
		Source:       s.headlines.Name(),
	}
}

func (s *Service) fetchHeadlines(ctx context.Context) (raw []sources.RawArticle, err error) {
	if s.headlines == nil {
		return nil, sources.ErrUpstream
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		s.metrics.observeUpstream(s.headlines.Name(), time.Since(start).Seconds(), err)
	}()

	return s.headlines.TopHeadlines(ctx, sources.Query{
		Country:  s.cfg.Country,
		PageSize: s.cfg.PageSize,
	})
}

// normalize maps raw provider items to Articles, dropping invalid titles.
// IDs keep the raw index so they stay stable when items are filtered out.
func (s *Service) normalize(raw []sources.RawArticle) []news.Article {
	articles := make([]news.Article, 0, len(raw))
	now := s.now()
	for i, r := range raw {
		title := htmltext.Inline(r.Title)
		if !news.ValidTitle(title) {
			continue
		}

		description := htmltext.PlainText(r.Description)
		summary := description
		if summary == "" {
			if content := htmltext.PlainText(r.Content); content != "" {
				summary = htmltext.Truncate(content, summaryChars) + ellipsis
			}
		}

		published := r.PublishedAt
		if published.IsZero() {
			published = now
		}
		published = published.UTC()

		articles = append(articles, news.Article{
			ID:          "news-" + strconv.Itoa(i),
			Title:       title,
			Summary:     summary,
			URL:         orDefault(r.URL, news.DefaultURL),
			Image:       orDefault(r.ImageURL, s.cfg.PlaceholderImage),
			Source:      orDefault(r.SourceName, news.UnknownSource),
			Timestamp:   published,
			PublishedAt: published,
			Tags:        news.Categorize(title + " " + description),
			Slug:        news.Slugify(title),
		})
	}
	return articles
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
