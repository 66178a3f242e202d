package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobinCoderZhao/happening-now/internal/news"
	"github.com/RobinCoderZhao/happening-now/internal/news/sources"
)

type fakeHeadlines struct {
	articles []sources.RawArticle
	err      error
	query    sources.Query
	calls    int
	block    bool
}

func (f *fakeHeadlines) Name() string { return "NewsAPI" }

func (f *fakeHeadlines) TopHeadlines(ctx context.Context, q sources.Query) ([]sources.RawArticle, error) {
	f.calls++
	f.query = q
	if f.block {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", sources.ErrUpstream, ctx.Err())
	}
	return f.articles, f.err
}

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(h sources.HeadlinesProvider, f sources.ForumProvider) *Service {
	s := New(Config{PlaceholderImage: "/placeholder.png"}, h, f, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestGetHeadlines_NormalizesAndTags(t *testing.T) {
	published := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	h := &fakeHeadlines{articles: []sources.RawArticle{
		{
			SourceName:  "Reuters",
			Title:       "Senate votes on new technology bill",
			Description: "Lawmakers debate <b>software</b> rules.",
			URL:         "https://example.com/senate",
			ImageURL:    "https://example.com/senate.jpg",
			PublishedAt: published,
		},
	}}
	res := newTestService(h, nil).GetHeadlines(context.Background())

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "NewsAPI", res.Source)
	assert.Empty(t, res.Note)
	assert.False(t, res.Fallback())
	require.Len(t, res.Articles, 1)
	assert.Equal(t, 1, res.TotalResults)

	a := res.Articles[0]
	assert.Equal(t, "news-0", a.ID)
	assert.Equal(t, "Lawmakers debate software rules.", a.Summary)
	assert.Equal(t, []string{"Tech", "Politics"}, a.Tags)
	assert.Equal(t, "senate-votes-on-new-technology-bill", a.Slug)
	assert.Equal(t, published, a.PublishedAt)
	assert.Equal(t, a.PublishedAt, a.Timestamp)

	assert.Equal(t, "us", h.query.Country)
	assert.Equal(t, 20, h.query.PageSize)
}

func TestGetHeadlines_FiltersInvalidTitles(t *testing.T) {
	h := &fakeHeadlines{articles: []sources.RawArticle{
		{Title: ""},
		{Title: "null"},
		{Title: "[Removed]"},
		{Title: "Quiet day at the harbor"},
		{Title: "Something [Removed] here"},
	}}
	res := newTestService(h, nil).GetHeadlines(context.Background())

	require.Len(t, res.Articles, 1)
	assert.Equal(t, "news-3", res.Articles[0].ID)
	assert.Equal(t, 1, res.TotalResults)
	for _, a := range res.Articles {
		assert.True(t, a.Valid())
	}
}

func TestGetHeadlines_TitlesOnlyDecodeEntities(t *testing.T) {
	h := &fakeHeadlines{articles: []sources.RawArticle{
		{Title: "Why a<b matters"},
		{Title: "Tom &amp; Jerry   return"},
		{Title: "Markets <i>rally</i>", Description: "Stocks <b>up</b>"},
	}}
	res := newTestService(h, nil).GetHeadlines(context.Background())

	require.Len(t, res.Articles, 3)
	assert.Equal(t, "Why a<b matters", res.Articles[0].Title)
	assert.Equal(t, "Tom & Jerry return", res.Articles[1].Title)
	assert.Equal(t, "Markets <i>rally</i>", res.Articles[2].Title)
	assert.Equal(t, "Stocks up", res.Articles[2].Summary)
}

func TestGetHeadlines_Defaults(t *testing.T) {
	h := &fakeHeadlines{articles: []sources.RawArticle{{Title: "Harbor reopens"}}}
	a := newTestService(h, nil).GetHeadlines(context.Background()).Articles[0]

	assert.Equal(t, news.UnknownSource, a.Source)
	assert.Equal(t, news.DefaultURL, a.URL)
	assert.Equal(t, "/placeholder.png", a.Image)
	assert.Equal(t, []string{news.GeneralTag}, a.Tags)
	assert.Empty(t, a.Summary)
	assert.Equal(t, fixedNow, a.PublishedAt)
}

func TestGetHeadlines_SummaryFromContent(t *testing.T) {
	content := strings.Repeat("x", 250)
	h := &fakeHeadlines{articles: []sources.RawArticle{{Title: "Long read", Content: content}}}
	a := newTestService(h, nil).GetHeadlines(context.Background()).Articles[0]

	assert.Equal(t, strings.Repeat("x", 200)+"...", a.Summary)
}

func TestGetHeadlines_FallbackOnError(t *testing.T) {
	h := &fakeHeadlines{err: fmt.Errorf("%w: NewsAPI error: 500 - boom", sources.ErrUpstream)}
	res := newTestService(h, nil).GetHeadlines(context.Background())

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, news.FallbackSource, res.Source)
	assert.Equal(t, news.FallbackNote, res.Note)
	assert.True(t, res.Fallback())
	assert.Len(t, res.Articles, 6)
	assert.Equal(t, 6, res.TotalResults)
}

func TestGetHeadlines_FallbackOnTimeout(t *testing.T) {
	h := &fakeHeadlines{block: true}
	s := newTestService(h, nil)
	s.cfg.Timeout = 20 * time.Millisecond

	start := time.Now()
	res := s.GetHeadlines(context.Background())
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, news.FallbackSource, res.Source)
}

func TestGetHeadlines_NilProvider(t *testing.T) {
	res := newTestService(nil, nil).GetHeadlines(context.Background())
	assert.Equal(t, news.FallbackSource, res.Source)
}

func TestGetHeadlines_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := &fakeHeadlines{err: errors.New("down")}
	s := New(Config{}, h, nil, NewMetrics(reg))

	s.GetHeadlines(context.Background())
	s.GetHeadlines(context.Background())

	m := s.metrics
	assert.Equal(t, 2.0, testutil.ToFloat64(m.failures.WithLabelValues("NewsAPI")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.served.WithLabelValues("news", news.FallbackSource)))
}
