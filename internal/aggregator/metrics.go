package aggregator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records how often responses are served from live upstream data
// versus fallback data.
type Metrics struct {
	served   *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics registers the aggregator collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		served: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "happening",
				Name:      "responses_total",
				Help:      "Aggregated responses by endpoint and data source",
			},
			[]string{"endpoint", "source"},
		),
		failures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "happening",
				Name:      "upstream_failures_total",
				Help:      "Upstream provider calls that fell back to static data",
			},
			[]string{"provider"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "happening",
				Name:      "upstream_duration_seconds",
				Help:      "Duration of upstream provider calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
	}
}

func (m *Metrics) observeServed(endpoint, source string) {
	if m == nil {
		return
	}
	m.served.WithLabelValues(endpoint, source).Inc()
}

func (m *Metrics) observeUpstream(provider string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(provider).Observe(seconds)
	if err != nil {
		m.failures.WithLabelValues(provider).Inc()
	}
}
