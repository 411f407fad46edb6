// Package observability holds the Prometheus metrics of the service.
package observability

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bandobast/bandobast-backend/internal/monitor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the service metrics. It implements monitor.Metrics and
// middleware.RequestObserver.
type Collector struct {
	gatherer prometheus.Gatherer

	PositionReports  *prometheus.CounterVec
	ZoneEvents       *prometheus.CounterVec
	ObserverFailures *prometheus.CounterVec
	ZonesRegistered  prometheus.Gauge

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
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

	reports, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bandobast_position_reports_total",
		Help: "Position reports received, labeled by whether they were applied or dropped as stale.",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}
	events, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bandobast_zone_events_total",
		Help: "Zone transition events dispatched, labeled by kind.",
	}, []string{"kind"}))
	if err != nil {
		return nil, err
	}
	failures, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bandobast_observer_failures_total",
		Help: "Zone event deliveries that failed, labeled by observer.",
	}, []string{"observer"}))
	if err != nil {
		return nil, err
	}
	zonesGauge, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bandobast_zones_registered",
		Help: "Current number of zones in the registry.",
	}))
	if err != nil {
		return nil, err
	}
	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bandobast_http_requests_total",
		Help: "HTTP requests handled, labeled by method, route pattern and status code.",
	}, []string{"method", "route", "code"}))
	if err != nil {
		return nil, err
	}
	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bandobast_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"}))
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		PositionReports:  reports,
		ZoneEvents:       events,
		ObserverFailures: failures,
		ZonesRegistered:  zonesGauge,
		HTTPRequests:     requests,
		HTTPDurations:    durations,
	}, nil
}

func (c *Collector) PositionReported(applied bool) {
	if c == nil {
		return
	}
	result := "stale"
	if applied {
		result = "applied"
	}
	c.PositionReports.WithLabelValues(result).Inc()
}

func (c *Collector) ZoneEvent(kind monitor.EventKind) {
	if c == nil {
		return
	}
	c.ZoneEvents.WithLabelValues(string(kind)).Inc()
}

func (c *Collector) ObserverFailed(observer string) {
	if c == nil {
		return
	}
	c.ObserverFailures.WithLabelValues(observer).Inc()
}

// SetZoneCount matches the zones.Registry OnChange hook.
func (c *Collector) SetZoneCount(n int) {
	if c == nil {
		return
	}
	c.ZonesRegistered.Set(float64(n))
}

func (c *Collector) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.HTTPDurations.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			return c, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		return c, err
	}
	return c, nil
}
