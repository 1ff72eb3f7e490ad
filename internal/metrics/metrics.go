// Package metrics exposes service counters in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "timetablesvc"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	probeResults  *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	shortAttempts *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		probeResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "probe_results_total",
			Help:      "Probe outcomes by probe title.",
		}, []string{"probe", "outcome"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "probe_duration_seconds",
			Help:      "Time from request to classification per probe.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"probe"}),
		shortAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "short",
			Name:      "allocation_attempts_total",
			Help:      "Short code allocation attempts by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Served requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
	}
	m.registry.MustRegister(
		m.probeResults,
		m.probeDuration,
		m.shortAttempts,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveProbe implements probe.Recorder.
func (m *Metrics) ObserveProbe(title string, healthy bool, took time.Duration) {
	outcome := "healthy"
	if !healthy {
		outcome = "unhealthy"
	}
	m.probeResults.WithLabelValues(title, outcome).Inc()
	m.probeDuration.WithLabelValues(title).Observe(took.Seconds())
}

// ObserveAttempt implements shortener.Recorder.
func (m *Metrics) ObserveAttempt(outcome string) {
	m.shortAttempts.WithLabelValues(outcome).Inc()
}

// ObserveRequest is called by the request logging middleware.
func (m *Metrics) ObserveRequest(route, method string, code int) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
