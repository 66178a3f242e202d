package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/RobinCoderZhao/happening-now/internal/aggregator"
	"github.com/RobinCoderZhao/happening-now/internal/api"
	"github.com/RobinCoderZhao/happening-now/internal/news/sources"
	"github.com/RobinCoderZhao/happening-now/internal/refresh"
	"github.com/RobinCoderZhao/happening-now/internal/subscriber"
	"github.com/RobinCoderZhao/happening-now/pkg/notify"
	"github.com/RobinCoderZhao/happening-now/pkg/storage"
)

// openDB opens the configured database, or returns nil when none is set.
func openDB(cfg AppConfig) (*storage.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, nil
	}
	return storage.Open(cfg.Database)
}

func headlinesProvider(cfg AppConfig) sources.HeadlinesProvider {
	if cfg.News.Provider == "rss" {
		return sources.NewRSSSource(cfg.RSSProvider.Name, cfg.RSSProvider.URL, cfg.News.Timeout)
	}
	return sources.NewNewsAPISource(sources.NewsAPIConfig{
		BaseURL:           cfg.NewsAPI.BaseURL,
		APIKey:            cfg.NewsAPI.APIKey,
		Timeout:           cfg.News.Timeout,
		RequestsPerMinute: cfg.NewsAPI.RequestsPerMinute,
	})
}

func newDispatcher(cfg AppConfig) *notify.Dispatcher {
	d := notify.NewDispatcher()
	if cfg.SMTP.Enabled() {
		d.Register(notify.NewEmailNotifier(cfg.SMTP))
	}
	return d
}

// newHTTPServer wires the aggregation service and API. The returned
// cleanup closes the database.
func newHTTPServer(ctx context.Context, cfg AppConfig, logger *slog.Logger) (*http.Server, func(), error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if db != nil {
			db.Close()
		}
	}

	var recorder subscriber.Recorder = subscriber.LogRecorder{Logger: logger}
	if db != nil {
		store, err := subscriber.NewStore(ctx, db)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		recorder = store
	}
	if cfg.Webhook.URL != "" {
		recorder = subscriber.MultiRecorder{recorder, subscriber.NewWebhookRecorder(cfg.Webhook)}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.News.Provider == "newsapi" && cfg.NewsAPI.APIKey == "" {
		logger.Warn("NEWS_API_KEY not set, /news will serve fallback data")
	}

	agg := aggregator.New(aggregator.Config{
		Country:          cfg.News.Country,
		PageSize:         cfg.News.PageSize,
		Timeout:          cfg.News.Timeout,
		PlaceholderImage: cfg.Site.PlaceholderURL,
		ForumPosts:       cfg.Forum.Posts,
	},
		headlinesProvider(cfg),
		sources.NewRedditSource(cfg.Forum.BaseURL, cfg.Forum.Subreddit, cfg.News.Timeout),
		aggregator.NewMetrics(reg),
	)

	server := api.NewServer(agg, subscriber.NewService(recorder, newDispatcher(cfg)), api.Options{
		SiteURL:  cfg.Site.URL,
		Registry: reg,
	})

	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, cleanup, nil
}

// newController builds a refresh controller against serverURL. With a
// database configured the cache survives between runs.
func newController(ctx context.Context, cfg AppConfig, serverURL string, conn refresh.ConnectivityNotifier) (*refresh.Controller, func(), error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if db != nil {
			db.Close()
		}
	}

	var cache refresh.Cache = refresh.NewMemoryCache()
	if db != nil {
		c, err := refresh.NewSQLiteCache(ctx, db)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open cache: %w", err)
		}
		cache = c
	}

	ctrl := refresh.NewController(refresh.Config{
		CacheTTL:         cfg.Refresh.CacheTTL,
		Interval:         cfg.Refresh.Interval,
		Timeout:          cfg.Refresh.Timeout,
		PlaceholderImage: serverURL + cfg.Site.PlaceholderURL,
	}, refresh.NewHTTPFetcher(serverURL, &http.Client{Timeout: cfg.Refresh.Timeout}), cache, conn)
	return ctrl, cleanup, nil
}
