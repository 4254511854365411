// Package metrics exposes Prometheus metrics for the profile API.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the API metrics and helpers to wire them into handlers.
type Collector struct {
	gatherer prometheus.Gatherer

	Requests  *prometheus.CounterVec
	Durations *prometheus.HistogramVec
	Segments  prometheus.Gauge
	Saves     *prometheus.CounterVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice on the same registry reuses the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gsweb_http_requests_total",
		Help: "Total number of handled API requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "code"}))
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gsweb_http_request_duration_seconds",
		Help:    "API request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
	}, []string{"route", "method"}))
	if err != nil {
		return nil, err
	}

	segments, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gsweb_txprofile_segments",
		Help: "Number of TX profiles in the stored table.",
	}))
	if err != nil {
		return nil, err
	}

	saves, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gsweb_txprofile_saves_total",
		Help: "Profile table replacements, labeled by result.",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:  gatherer,
		Requests:  requests,
		Durations: durations,
		Segments:  segments,
		Saves:     saves,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Instrument wraps next so every request is counted and timed under route.
func (c *Collector) Instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	if c == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		c.Requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		c.Durations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	}
}

// SetSegments records the size of the stored table.
func (c *Collector) SetSegments(n int) {
	if c == nil {
		return
	}
	c.Segments.Set(float64(n))
}

// ObserveSave counts a save attempt.
func (c *Collector) ObserveSave(err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.Saves.WithLabelValues(result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			var zero C
			return zero, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		var zero C
		return zero, err
	}
	return c, nil
}
