package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobinCoderZhao/happening-now/internal/aggregator"
	"github.com/RobinCoderZhao/happening-now/internal/news"
	"github.com/RobinCoderZhao/happening-now/internal/news/sources"
	"github.com/RobinCoderZhao/happening-now/internal/subscriber"
)

func newTestServer(t *testing.T, upstream http.HandlerFunc) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)

	reg := prometheus.NewRegistry()
	headlines := sources.NewNewsAPISource(sources.NewsAPIConfig{BaseURL: up.URL, APIKey: "test", Timeout: 200 * time.Millisecond})
	forum := sources.NewRedditSource(up.URL, "news", 200*time.Millisecond)
	agg := aggregator.New(aggregator.Config{Timeout: 200 * time.Millisecond}, headlines, forum, aggregator.NewMetrics(reg))

	s := NewServer(agg, subscriber.NewService(nil, nil), Options{Registry: reg})
	s.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return srv, reg
}

func okUpstream(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/v2/top-headlines"):
		io.WriteString(w, `{"status":"ok","totalResults":2,"articles":[
			{"source":{"name":"Reuters"},"title":"New AI software ships","description":"Tech firms race.","url":"https://example.com/a","urlToImage":null,"publishedAt":"2026-05-01T10:00:00Z"},
			{"source":{"name":"AP"},"title":"[Removed]","description":"","url":"https://removed.com","publishedAt":"2026-05-01T10:00:00Z"}
		]}`)
	case strings.HasPrefix(r.URL.Path, "/r/news/hot.json"):
		io.WriteString(w, `{"data":{"children":[
			{"data":{"title":"Massive earthquake shakes coastal cities","score":10,"num_comments":3}}
		]}}`)
	default:
		http.NotFound(w, r)
	}
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestNews_Success(t *testing.T) {
	srv, _ := newTestServer(t, okUpstream)

	resp, err := http.Get(srv.URL + "/news")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	body := decode[aggregator.HeadlinesResult](t, resp)
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "NewsAPI", body.Source)
	require.Len(t, body.Articles, 1)
	assert.Equal(t, "news-0", body.Articles[0].ID)
	assert.Contains(t, body.Articles[0].Tags, "Tech")
}

func TestNews_UpstreamFailureFallsBack(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"500": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"timeout": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html>not json")
		},
	}
	for name, upstream := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := newTestServer(t, upstream)

			resp, err := http.Get(srv.URL + "/api/news")
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			body := decode[aggregator.HeadlinesResult](t, resp)
			assert.Equal(t, news.FallbackSource, body.Source)
			assert.Equal(t, news.FallbackNote, body.Note)
			assert.Len(t, body.Articles, 6)
		})
	}
}

func TestTrends(t *testing.T) {
	srv, _ := newTestServer(t, okUpstream)

	resp, err := http.Get(srv.URL + "/trends")
	require.NoError(t, err)
	body := decode[aggregator.TrendsResult](t, resp)

	assert.Equal(t, []string{"Reddit", aggregator.MockTrendsSource}, body.Sources)
	require.Len(t, body.Trends, 5)
	assert.Equal(t, "Massive", body.Trends[0].Keyword)
	assert.Equal(t, "AI Revolution", body.Trends[2].Keyword)
	for _, tr := range body.Trends {
		assert.GreaterOrEqual(t, tr.Count, 0)
	}
}

func TestTrends_ForumDown(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	resp, err := http.Get(srv.URL + "/trends")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[aggregator.TrendsResult](t, resp)
	assert.Equal(t, []string{aggregator.MockTrendsSource}, body.Sources)
	assert.Len(t, body.Trends, 3)
	assert.NotEmpty(t, body.Note)
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestSubscribe(t *testing.T) {
	srv, _ := newTestServer(t, okUpstream)

	resp := postJSON(t, srv.URL+"/subscribe", `{"email":"user@example.com"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	ok := decode[map[string]string](t, resp)
	assert.Equal(t, "Subscribed successfully!", ok["message"])
	assert.Equal(t, "user@example.com", ok["email"])
	_, err := time.Parse(time.RFC3339Nano, ok["timestamp"])
	assert.NoError(t, err)

	cases := []struct {
		body string
		want string
	}{
		{`{"email":"not-an-email"}`, "Invalid email format"},
		{`{}`, "Email is required"},
		{``, "Email is required"},
		{`{"email":`, "Invalid request body"},
	}
	for _, c := range cases {
		resp := postJSON(t, srv.URL+"/api/subscribe", c.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, c.body)
		assert.Equal(t, c.want, decode[map[string]string](t, resp)["error"], c.body)
	}
}

func TestMethodGuardAndPreflight(t *testing.T) {
	srv, _ := newTestServer(t, okUpstream)

	resp, err := http.Get(srv.URL + "/subscribe")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method not allowed", decode[map[string]string](t, resp)["error"])

	resp = postJSON(t, srv.URL+"/news", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()

	for _, path := range []string{"/news", "/trends", "/rss"} {
		resp, err = http.Head(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, "HEAD "+path)
	}

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/rss", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "GET, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))
	b, _ := io.ReadAll(resp.Body)
	assert.Empty(t, b)
}

func TestRSS(t *testing.T) {
	srv, _ := newTestServer(t, okUpstream)

	resp, err := http.Get(srv.URL + "/rss")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/rss+xml; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<![CDATA[Tech Giants Announce Revolutionary AI Partnership]]>")
	assert.Contains(t, string(raw), `<atom:link href="https://happening-now.vercel.app/api/rss" rel="self" type="application/rss+xml">`)

	feed, err := gofeed.NewParser().ParseString(string(raw))
	require.NoError(t, err)
	assert.Equal(t, "rss", feed.FeedType)
	assert.Equal(t, "Happening Now - Real-Time News Feed", feed.Title)
	assert.Equal(t, "en-us", feed.Language)
	require.Len(t, feed.Items, 5)

	first, last := feed.Items[0], feed.Items[4]
	assert.Equal(t, "climate-summit-2024-001", first.GUID)
	assert.Equal(t, "https://happening-now.vercel.app/news/climate-summit-agreement", first.Link)
	assert.Equal(t, []string{"Environment"}, first.Categories)
	require.NotNil(t, first.PublishedParsed)
	require.NotNil(t, last.PublishedParsed)
	assert.Equal(t, 4*time.Hour, first.PublishedParsed.Sub(*last.PublishedParsed))
}

func TestPlaceholder(t *testing.T) {
	srv, _ := newTestServer(t, okUpstream)

	resp, err := http.Get(srv.URL + "/placeholder.png?text=Tech+News")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, okUpstream)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])

	resp, err = http.Get(srv.URL + "/news")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `happening_http_requests_total{code="200",method="get",route="news"} 1`)
	assert.Contains(t, string(raw), `happening_responses_total{endpoint="news",source="NewsAPI"} 1`)
}

func TestEndpoint_RecoversPanics(t *testing.T) {
	s := NewServer(nil, nil, Options{})
	h := s.endpoint("boom", []string{http.MethodGet}, func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil).WithContext(context.Background()))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}
