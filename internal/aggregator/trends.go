package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/RobinCoderZhao/happening-now/internal/news"
	"github.com/RobinCoderZhao/happening-now/internal/news/sources"
)

const (
	// forumTitles is how many leading posts contribute keywords.
	forumTitles    = 5
	maxForumTrends = 5

	minTrendCount  = 100
	trendCountSpan = 500
)

var errNoForum = fmt.Errorf("%w: no forum provider configured", sources.ErrUpstream)

// MockTrendsSource names the static trend entries in Sources.
const MockTrendsSource = "Google Trends (Mock)"

// TrendsResult is the /trends payload.
type TrendsResult struct {
	Status      string       `json:"status"`
	Trends      []news.Trend `json:"trends"`
	TotalTrends int          `json:"totalTrends"`
	Sources     []string     `json:"sources"`
	Note        string       `json:"note,omitempty"`
}

// GetTrends extracts trending keywords from forum titles and appends the
// static mock entries, so the list is never empty.
func (s *Service) GetTrends(ctx context.Context) TrendsResult {
	forumTrends, err := s.forumTrends(ctx)

	trends := append(forumTrends, news.MockGoogleTrends()...)
	result := TrendsResult{
		Status:      StatusSuccess,
		Trends:      trends,
		TotalTrends: len(trends),
	}

	if err != nil {
		s.logger.Warn("forum trends failed, using mock trends only", "error", err)
		result.Sources = []string{MockTrendsSource}
		result.Note = news.FallbackNote
		s.metrics.observeServed("trends", news.FallbackSource)
		return result
	}

	result.Sources = []string{s.forum.Name(), MockTrendsSource}
	s.metrics.observeServed("trends", s.forum.Name())
	return result
}

func (s *Service) forumTrends(ctx context.Context) (trends []news.Trend, err error) {
	if s.forum == nil {
		return nil, errNoForum
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	posts, err := s.forum.HotPosts(ctx, s.cfg.ForumPosts)
	s.metrics.observeUpstream(s.forum.Name(), time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}

	for i, post := range posts {
		if i >= forumTitles {
			break
		}
		if post.Title == "" {
			continue
		}
		for _, kw := range news.ExtractKeywords(post.Title) {
			trends = append(trends, news.Trend{
				Keyword: kw,
				Count:   minTrendCount + s.intn(trendCountSpan),
				Source:  s.forum.Name(),
			})
		}
	}

	if len(trends) > maxForumTrends {
		trends = trends[:maxForumTrends]
	}
	return trends, nil
}
