// Package api provides the HTTP server for Happening Now: the aggregated
// news and trends endpoints, subscriptions, the RSS feed and operational
// routes.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RobinCoderZhao/happening-now/internal/aggregator"
	"github.com/RobinCoderZhao/happening-now/internal/subscriber"
	"github.com/RobinCoderZhao/happening-now/pkg/placeholder"
)

// DefaultSiteURL is the public base URL used in the RSS feed.
const DefaultSiteURL = "https://happening-now.vercel.app"

// Options configures optional Server collaborators.
type Options struct {
	// SiteURL is the public base URL written into the RSS feed.
	SiteURL string
	// Registry receives the HTTP collectors and backs /metrics.
	Registry *prometheus.Registry
	// Placeholder renders /placeholder.png.
	Placeholder *placeholder.Renderer
}

// Server holds the dependencies for the API.
type Server struct {
	aggregator  *aggregator.Service
	subscribers *subscriber.Service
	placeholder *placeholder.Renderer
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	siteURL     string
	logger      *slog.Logger
	now         func() time.Time
}

// NewServer creates a new API Server instance.
func NewServer(agg *aggregator.Service, subs *subscriber.Service, opts Options) *Server {
	if opts.SiteURL == "" {
		opts.SiteURL = DefaultSiteURL
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Placeholder == nil {
		opts.Placeholder = placeholder.NewRenderer()
	}
	if subs == nil {
		subs = subscriber.NewService(nil, nil)
	}
	return &Server{
		aggregator:  agg,
		subscribers: subs,
		placeholder: opts.Placeholder,
		registry:    opts.Registry,
		requests: promauto.With(opts.Registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "happening",
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		siteURL: strings.TrimRight(opts.SiteURL, "/"),
		logger:  slog.Default(),
		now:     time.Now,
	}
}

// Routes returns the configured http.Handler (ServeMux) for the API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Public data routes, also served under /api as the site deploys them.
	for _, prefix := range []string{"", "/api"} {
		mux.Handle(prefix+"/news", s.endpoint("news", []string{http.MethodGet}, s.handleNews()))
		mux.Handle(prefix+"/trends", s.endpoint("trends", []string{http.MethodGet}, s.handleTrends()))
		mux.Handle(prefix+"/subscribe", s.endpoint("subscribe", []string{http.MethodPost}, s.handleSubscribe()))
		mux.Handle(prefix+"/rss", s.endpoint("rss", []string{http.MethodGet}, s.handleRSS()))
	}

	mux.Handle("/placeholder.png", s.endpoint("placeholder", []string{http.MethodGet}, s.handlePlaceholder()))
	mux.Handle("/healthz", s.endpoint("healthz", []string{http.MethodGet}, s.handleHealth()))
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	return mux
}

// endpoint wraps a handler with CORS headers, an OPTIONS short-circuit,
// a method guard, panic recovery and request counting.
func (s *Server) endpoint(route string, methods []string, h http.HandlerFunc) http.Handler {
	allowed := strings.Join(append(append([]string(nil), methods...), http.MethodOptions), ", ")
	counter := s.requests.MustCurryWith(prometheus.Labels{"route": route})

	guarded := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", allowed)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if !allowMethod(methods, r.Method) {
			respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panic", "route", route, "panic", fmt.Sprint(rec))
				respondError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		h(w, r)
	})
	return promhttp.InstrumentHandlerCounter(counter, guarded)
}

func allowMethod(methods []string, method string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// --- Helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
