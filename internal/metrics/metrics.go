// Package metrics exposes Prometheus collectors for problem loads and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "problem_dashboard"

// Recorder owns a registry and the application collectors
type Recorder struct {
	registry *prometheus.Registry

	loads        *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	loadRows     prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates a recorder with its own registry, including Go runtime and process collectors
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "problem_loads_total",
			Help:      "Problem list loads by origin (csv, sample, error).",
		}, []string{"origin"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "problem_load_duration_seconds",
			Help:      "Time to fetch and parse a problem list.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"origin"}),
		loadRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "problem_load_rows",
			Help:      "Rows per loaded problem list.",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 8),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.loads,
		r.loadDuration,
		r.loadRows,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// ObserveLoad records one problem list load
func (r *Recorder) ObserveLoad(_, _, origin string, rows int, elapsed time.Duration) {
	r.loads.WithLabelValues(origin).Inc()
	r.loadDuration.WithLabelValues(origin).Observe(elapsed.Seconds())
	if origin != "error" {
		r.loadRows.Observe(float64(rows))
	}
}

// ObserveHTTP records one served request
func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
