package refresh

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobinCoderZhao/happening-now/internal/news"
	"github.com/RobinCoderZhao/happening-now/pkg/storage"
)

func TestSQLiteCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(storage.Config{DSN: storage.MemoryDSN})
	require.NoError(t, err)
	defer db.Close()

	cache, err := NewSQLiteCache(ctx, db)
	require.NoError(t, err)

	_, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ts := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, cache.Save(ctx, CacheEntry{Timestamp: ts, Articles: sampleArticles()[:1]}))
	require.NoError(t, cache.Save(ctx, CacheEntry{Timestamp: ts.Add(time.Minute), Articles: sampleArticles()}))

	entry, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, entry.Timestamp.Equal(ts.Add(time.Minute)))
	assert.Len(t, entry.Articles, 5)

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv WHERE key = ?`, CacheKey).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestCacheEntry_Fresh(t *testing.T) {
	now := time.Now()
	assert.True(t, CacheEntry{Timestamp: now.Add(-29 * time.Minute)}.Fresh(now, DefaultCacheTTL))
	assert.False(t, CacheEntry{Timestamp: now.Add(-31 * time.Minute)}.Fresh(now, DefaultCacheTTL))
	assert.False(t, CacheEntry{}.Fresh(now, DefaultCacheTTL))
}

func TestHTTPFetcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/news", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":   "success",
			"articles": sampleArticles(),
		})
	})
	mux.HandleFunc("/trends", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"trends": []news.Trend{{Keyword: "Elections", Count: 300, Source: "Reddit"}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL+"/", nil)
	articles, err := f.FetchArticles(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 5)

	trends, err := f.FetchTrends(context.Background())
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, "Elections", trends[0].Keyword)
}

func TestHTTPFetcher_Errors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/news", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/trends", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"quota exceeded"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, nil)
	_, err := f.FetchArticles(context.Background())
	assert.EqualError(t, err, "HTTP error! status: 502")

	_, err = f.FetchTrends(context.Background())
	assert.EqualError(t, err, "quota exceeded")
}

func TestConnectivity_NotifiesOnTransitions(t *testing.T) {
	conn := NewConnectivity(true)
	var got []bool
	unsub := conn.Subscribe(func(online bool) { got = append(got, online) })

	conn.Set(true)
	conn.Set(false)
	conn.Set(false)
	conn.Set(true)
	unsub()
	conn.Set(false)

	assert.Equal(t, []bool{false, true}, got)
	assert.False(t, conn.Online())
}

func TestConnectivity_Probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	conn := NewConnectivity(true)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		conn.Probe(ctx, srv.Client(), srv.URL, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool { return !conn.Online() }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
