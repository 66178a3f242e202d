package refresh

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ConnectivityNotifier reports online/offline transitions.
type ConnectivityNotifier interface {
	Online() bool
	// Subscribe registers fn for transitions and returns its unsubscribe func.
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// Connectivity is a ConnectivityNotifier driven by Set or by Probe.
type Connectivity struct {
	mu        sync.Mutex
	online    bool
	listeners map[int]func(bool)
	nextID    int
	logger    *slog.Logger
}

// NewConnectivity creates a notifier with the given initial state.
func NewConnectivity(online bool) *Connectivity {
	return &Connectivity{
		online:    online,
		listeners: make(map[int]func(bool)),
		logger:    slog.Default(),
	}
}

func (c *Connectivity) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

func (c *Connectivity) Subscribe(fn func(online bool)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Set records the connectivity state. Listeners run only on transitions.
func (c *Connectivity) Set(online bool) {
	c.mu.Lock()
	if c.online == online {
		c.mu.Unlock()
		return
	}
	c.online = online
	fns := make([]func(bool), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	c.logger.Info("connectivity changed", "online", online)
	for _, fn := range fns {
		fn(online)
	}
}

// Probe polls url every interval until ctx is done, marking the state
// online whenever the server answers with a 2xx.
func (c *Connectivity) Probe(ctx context.Context, client *http.Client, url string, interval time.Duration) {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	check := func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			c.Set(false)
			return
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() == nil {
				c.Set(false)
			}
			return
		}
		resp.Body.Close()
		c.Set(resp.StatusCode >= 200 && resp.StatusCode < 300)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
