package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the engine's prometheus metrics on a private registry,
// so the default registry's process collectors never leak into tests.
type Collector struct {
	reg *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec   // path, method, code
	HTTPDuration   *prometheus.HistogramVec // path
	RoutesComputed *prometheus.CounterVec   // mode
	RouteDuration  prometheus.Histogram
	SnapFailures   prometheus.Counter
	Reroutes       prometheus.Counter
	ActiveJourneys prometheus.Gauge
	AlertsEmitted  *prometheus.CounterVec // type
	VisitsRecorded prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "safetrace_http_requests_total",
			Help: "Total HTTP requests by route pattern, method and status code.",
		}, []string{"path", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "safetrace_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"path"}),
		RoutesComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "safetrace_routes_computed_total",
			Help: "Total routes computed per weighting mode.",
		}, []string{"mode"}),
		RouteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "safetrace_route_duration_seconds",
			Help:    "Duration of shortest path computations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		SnapFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safetrace_snap_failures_total",
			Help: "Total coordinate snaps that found no road node in range.",
		}),
		Reroutes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safetrace_reroutes_total",
			Help: "Total reroutes installed.",
		}),
		ActiveJourneys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "safetrace_active_journeys",
			Help: "Number of journeys currently being tracked.",
		}),
		AlertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "safetrace_alerts_emitted_total",
			Help: "Total safety alerts emitted by kind.",
		}, []string{"type"}),
		VisitsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safetrace_crowd_visits_total",
			Help: "Total crowd visits recorded.",
		}),
	}

	reg.MustRegister(
		c.HTTPRequests, c.HTTPDuration,
		c.RoutesComputed, c.RouteDuration, c.SnapFailures,
		c.Reroutes, c.ActiveJourneys, c.AlertsEmitted,
		c.VisitsRecorded,
	)
	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
