// Package refresh keeps a client's article and trend state in sync with
// the aggregation service: it decides when to fetch, caches the last good
// result and exposes the derived views a presenter needs.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RobinCoderZhao/happening-now/internal/news"
)

// Defaults for Config.
const (
	DefaultCacheTTL = 30 * time.Minute
	DefaultInterval = 10 * time.Minute
	DefaultTimeout  = 30 * time.Second
)

// Config holds the controller settings.
type Config struct {
	// CacheTTL is how long a cached result makes a non-forced refresh a no-op.
	CacheTTL time.Duration
	// Interval is the period of the background refresh ticker.
	Interval time.Duration
	// Timeout bounds a whole refresh.
	Timeout time.Duration
	// PlaceholderImage is the image base URL for local sample articles.
	PlaceholderImage string
}

// State is a point-in-time copy of the controller state.
type State struct {
	Articles      []news.Article
	Trends        []news.Trend
	Loading       bool
	Error         string
	LastUpdated   time.Time
	AvailableTags []string
	Online        bool
}

// Controller owns the article and trend state for one client session.
// All methods are safe for concurrent use.
type Controller struct {
	cfg     Config
	fetcher Fetcher
	cache   Cache
	conn    ConnectivityNotifier
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.RWMutex
	state  State
	loaded bool

	inFlight atomic.Bool

	lifeMu      sync.Mutex
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// NewController creates a controller. A nil cache uses a MemoryCache; a
// nil conn means the client is always online.
func NewController(cfg Config, fetcher Fetcher, cache Cache, conn ConnectivityNotifier) *Controller {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	c := &Controller{
		cfg:     cfg,
		fetcher: fetcher,
		cache:   cache,
		conn:    conn,
		logger:  slog.Default(),
		now:     time.Now,
	}
	c.state.AvailableTags = AvailableTags(nil)
	c.state.Online = conn == nil || conn.Online()
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.Articles = append([]news.Article(nil), c.state.Articles...)
	s.Trends = append([]news.Trend(nil), c.state.Trends...)
	s.AvailableTags = append([]string(nil), c.state.AvailableTags...)
	return s
}

// FilteredArticles returns the current articles carrying tag.
func (c *Controller) FilteredArticles(tag string) []news.Article {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return FilterArticles(c.state.Articles, tag)
}

// SetOnline updates the connectivity flag. It never triggers a fetch.
func (c *Controller) SetOnline(online bool) {
	c.mu.Lock()
	c.state.Online = online
	c.mu.Unlock()
}

// Refresh fetches articles and trends unless a fresh cache entry exists
// and force is false. A call made while another refresh is running
// returns immediately. Failures are recorded in State.Error.
func (c *Controller) Refresh(ctx context.Context, force bool) {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.logger.Debug("refresh already in flight, skipping")
		return
	}
	defer c.inFlight.Store(false)
	defer func() {
		if r := recover(); r != nil {
			c.failArticles(fmt.Errorf("refresh panicked: %v", r))
		}
	}()

	if !force && c.cacheFresh(ctx) {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	c.mu.Lock()
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error { return c.refreshArticles(ctx) })
	g.Go(func() error { return recovered(func() error { return c.refreshTrends(ctx) }) })
	if err := g.Wait(); err != nil {
		c.logger.Warn("refresh failed", "error", err)
	}
}

func (c *Controller) cacheFresh(ctx context.Context) bool {
	entry, ok, err := c.cache.Load(ctx)
	if err != nil {
		c.logger.Warn("cache read failed", "error", err)
		return false
	}
	return ok && entry.Fresh(c.now(), c.cfg.CacheTTL)
}

func (c *Controller) refreshArticles(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("articles panicked: %v", r)
		}
		if err != nil {
			c.failArticles(err)
		}
	}()

	articles, err := c.fetcher.FetchArticles(ctx)
	if err != nil {
		return err
	}
	articles = sanitize(articles)
	now := c.now()

	c.mu.Lock()
	c.state.Articles = articles
	c.state.AvailableTags = AvailableTags(articles)
	c.state.LastUpdated = now
	c.state.Loading = false
	c.loaded = true
	c.mu.Unlock()

	if err := c.cache.Save(ctx, CacheEntry{Timestamp: now, Articles: articles}); err != nil {
		c.logger.Warn("cache write failed", "error", err)
	}
	return nil
}

// failArticles records err and keeps existing articles. Without any
// loaded articles the local samples are shown instead.
func (c *Controller) failArticles(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Error = err.Error()
	c.state.Loading = false
	if !c.loaded {
		c.state.Articles = news.ClientFallbackArticles(c.now(), c.cfg.PlaceholderImage)
		c.state.AvailableTags = AvailableTags(c.state.Articles)
		c.state.LastUpdated = c.now()
		c.loaded = true
	}
}

func (c *Controller) refreshTrends(ctx context.Context) error {
	trends, err := c.fetcher.FetchTrends(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Warn("trends fetch failed", "error", err)
		if len(c.state.Trends) == 0 {
			c.state.Trends = news.FallbackTrends()
		}
		return nil
	}
	c.state.Trends = trends
	return nil
}

// Start hydrates state from a fresh cache entry, subscribes to
// connectivity changes and runs the refresh loop until Stop or ctx is
// done. Calling Start on a running controller does nothing.
func (c *Controller) Start(ctx context.Context) {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.Hydrate(ctx)
	if c.conn != nil {
		c.unsubscribe = c.conn.Subscribe(c.SetOnline)
		c.SetOnline(c.conn.Online())
	}

	c.wg.Add(1)
	go c.loop(ctx)
	c.logger.Info("refresh controller started", "interval", c.cfg.Interval, "cache_ttl", c.cfg.CacheTTL)
}

// Stop ends the refresh loop and waits for it to exit.
func (c *Controller) Stop() {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.cancel == nil {
		return
	}
	c.cancel()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.wg.Wait()
	c.cancel = nil
	c.logger.Info("refresh controller stopped")
}

func (c *Controller) loop(ctx context.Context) {
	defer c.wg.Done()

	c.Refresh(ctx, false)

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.Snapshot().Online {
				c.Refresh(ctx, false)
			}
		}
	}
}

// Hydrate loads state from the cache when its entry is still fresh.
func (c *Controller) Hydrate(ctx context.Context) {
	entry, ok, err := c.cache.Load(ctx)
	if err != nil {
		c.logger.Warn("cache read failed", "error", err)
		return
	}
	if !ok || !entry.Fresh(c.now(), c.cfg.CacheTTL) {
		return
	}
	articles := sanitize(entry.Articles)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Articles = articles
	c.state.AvailableTags = AvailableTags(articles)
	c.state.LastUpdated = entry.Timestamp
	c.loaded = true
}

// sanitize drops untitled articles and tags untagged ones.
func sanitize(articles []news.Article) []news.Article {
	out := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		if !news.ValidTitle(a.Title) {
			continue
		}
		if len(a.Tags) == 0 {
			a.Tags = news.Categorize(a.Title + " " + a.Summary)
		}
		out = append(out, a)
	}
	return out
}

func recovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
