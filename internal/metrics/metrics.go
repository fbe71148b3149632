// Package metrics exposes Prometheus instruments for the HTTP API and the
// stored collections.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the instruments. Each instance owns its own registry so
// tests can create as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec

	// Records holds one gauge per tracked storage key.
	Records map[string]prometheus.GaugeFunc
}

// New creates and registers all instruments.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "local_crud",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "local_crud",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		Records: make(map[string]prometheus.GaugeFunc),
	}
	m.Registry.MustRegister(m.Requests, m.Duration)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// TrackRecords exports local_crud_records{key="<key>"}, read from count
// at scrape time. Call it once per key while wiring, before serving.
func (m *Metrics) TrackRecords(key string, count func() int) {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "local_crud",
		Name:        "records",
		Help:        "Records currently held per storage key.",
		ConstLabels: prometheus.Labels{"key": key},
	}, func() float64 { return float64(count()) })
	m.Registry.MustRegister(g)
	m.Records[key] = g
}

// Middleware counts requests and observes latency. The route label is the
// ServeMux pattern that matched, so ids never end up in label values.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.Duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
