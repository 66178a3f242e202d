package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/RobinCoderZhao/happening-now/internal/news/sources"
	"github.com/RobinCoderZhao/happening-now/internal/subscriber"
	"github.com/RobinCoderZhao/happening-now/pkg/config"
	"github.com/RobinCoderZhao/happening-now/pkg/notify"
	"github.com/RobinCoderZhao/happening-now/pkg/storage"
)

// AppConfig is the configuration for the happening binary.
type AppConfig struct {
	Server      ServerConfig             `yaml:"server"`
	News        NewsConfig               `yaml:"news"`
	NewsAPI     NewsAPIConfig            `yaml:"newsapi"`
	Forum       ForumConfig              `yaml:"forum"`
	RSSProvider RSSProviderConfig        `yaml:"rss_provider"`
	Site        SiteConfig               `yaml:"site"`
	Database    storage.Config           `yaml:"database"`
	SMTP        notify.EmailConfig       `yaml:"smtp"`
	Webhook     subscriber.WebhookConfig `yaml:"webhook"`
	Refresh     RefreshConfig            `yaml:"refresh"`
	Log         LogConfig                `yaml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"HAPPENING_ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// NewsConfig selects and tunes the headlines provider.
type NewsConfig struct {
	Provider string        `yaml:"provider" env:"NEWS_PROVIDER"` // "newsapi" or "rss"
	Country  string        `yaml:"country" env:"NEWS_COUNTRY"`
	PageSize int           `yaml:"page_size"`
	Timeout  time.Duration `yaml:"timeout"`
}

// NewsAPIConfig holds newsapi.org credentials and limits.
type NewsAPIConfig struct {
	BaseURL           string `yaml:"base_url"`
	APIKey            string `yaml:"api_key" env:"NEWS_API_KEY"`
	RequestsPerMinute int    `yaml:"requests_per_minute" env:"NEWS_API_RPM"`
}

// ForumConfig points at the discussion forum used for trends.
type ForumConfig struct {
	BaseURL   string `yaml:"base_url"`
	Subreddit string `yaml:"subreddit" env:"FORUM_SUBREDDIT"`
	Posts     int    `yaml:"posts"`
}

// RSSProviderConfig configures the feed used when news.provider is "rss".
type RSSProviderConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url" env:"RSS_PROVIDER_URL"`
}

// SiteConfig describes the public site.
type SiteConfig struct {
	URL            string `yaml:"url" env:"SITE_URL"`
	PlaceholderURL string `yaml:"placeholder_url"`
}

// RefreshConfig drives the client refresh controller used by the CLI.
type RefreshConfig struct {
	ServerURL string        `yaml:"server_url" env:"HAPPENING_SERVER"`
	Interval  time.Duration `yaml:"interval" env:"REFRESH_INTERVAL"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"REFRESH_CACHE_TTL"`
	Timeout   time.Duration `yaml:"timeout"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"LOG_FORMAT"` // text or json
}

// DefaultConfig returns an AppConfig with sensible defaults.
func DefaultConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		News: NewsConfig{
			Provider: "newsapi",
			Country:  "us",
			PageSize: 20,
			Timeout:  10 * time.Second,
		},
		NewsAPI: NewsAPIConfig{
			BaseURL:           sources.DefaultNewsAPIBaseURL,
			RequestsPerMinute: 60,
		},
		Forum: ForumConfig{
			BaseURL:   sources.DefaultRedditBaseURL,
			Subreddit: "news",
			Posts:     10,
		},
		RSSProvider: RSSProviderConfig{Name: "RSS"},
		Site: SiteConfig{
			URL:            "https://happening-now.vercel.app",
			PlaceholderURL: "/placeholder.png",
		},
		Refresh: RefreshConfig{
			ServerURL: "http://localhost:8080",
			Interval:  10 * time.Minute,
			CacheTTL:  30 * time.Minute,
			Timeout:   30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (AppConfig, error) {
	cfg := DefaultConfig()
	if err := config.LoadOrDefault(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c AppConfig) validate() error {
	switch c.News.Provider {
	case "newsapi":
	case "rss":
		if c.RSSProvider.URL == "" {
			return fmt.Errorf("rss_provider.url is required when news.provider is rss")
		}
	default:
		return fmt.Errorf("unknown news.provider %q", c.News.Provider)
	}
	return nil
}

// newLogger builds the process logger from the log section.
func newLogger(w io.Writer, cfg LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
