package runtime

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// serverMetrics holds the per-route collectors the runtime maintains on top
// of whatever the connector registers itself. Metrics collection is
// independent of tracing: a broken trace exporter never affects these.
type serverMetrics struct {
	requestsTotal   *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newServerMetrics(registerer prometheus.Registerer) (*serverMetrics, error) {
	m := &serverMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ndc",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of requests handled, per route.",
			},
			[]string{"route"},
		),
		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ndc",
				Subsystem: "http",
				Name:      "failures_total",
				Help:      "Total number of error responses, per route and error kind.",
			},
			[]string{"route", "kind"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ndc",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request latency, per route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	for _, collector := range []prometheus.Collector{m.requestsTotal, m.failuresTotal, m.requestDuration} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observe records one completed request.
func (m *serverMetrics) observe(route string, errorKind string, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(route).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
	if errorKind != "" {
		m.failuresTotal.WithLabelValues(route, errorKind).Inc()
	}
}
