package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/felixgeelhaar/gloss/internal/domain"
)

// metrics holds the daemon's Prometheus collectors. Each server carries its
// own registry so tests can build servers without collector name collisions.
type metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	analyses *prometheus.CounterVec
	provider *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gloss_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gloss_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gloss_analyses_total",
				Help: "Total number of analyses by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		provider: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gloss_provider_calls_total",
				Help: "Total number of content provider calls by outcome",
			},
			[]string{"provider", "outcome"},
		),
	}

	m.registry.MustRegister(m.requests, m.duration, m.analyses, m.provider)

	return m
}

// handler serves the /metrics endpoint
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// middleware observes every request's count and duration
func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		path := routeLabel(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)
		m.requests.WithLabelValues(r.Method, path, status).Inc()
		m.duration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

// routeLabel maps a request path onto a bounded label set. Unknown paths
// collapse into one bucket so scrapes cannot blow up label cardinality.
func routeLabel(path string) string {
	switch path {
	case "/explain", "/fix", "/practice", "/healthz", "/v1/providers", "/metrics":
		return path
	}
	return "other"
}

// observeEvent feeds the analysis counters from lifecycle events. It is
// subscribed to the tutor service's dispatcher at startup.
func (m *metrics) observeEvent(event domain.Event) {
	switch e := event.(type) {
	case domain.AnalysisCompletedEvent:
		m.analyses.WithLabelValues(string(e.Action), "ok").Inc()
		if e.Provider != "" {
			m.provider.WithLabelValues(e.Provider, "ok").Inc()
		}
	case domain.AnalysisFailedEvent:
		m.analyses.WithLabelValues(string(e.Action), "error").Inc()
		if e.Provider != "" {
			m.provider.WithLabelValues(e.Provider, "error").Inc()
		}
	}
}
