package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus collectors of the pipeline.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	tableVersion    prometheus.Gauge
	tablePublished  prometheus.Gauge

	registry *prometheus.Registry
}

func newMetrics(registry *prometheus.Registry) (*metrics, error) {
	m := &metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method and status code",
			},
			[]string{"method", "status_code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests being served",
			},
		),
		tableVersion: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "route_table_version",
				Help: "Version number of the route table serving new requests",
			},
		),
		tablePublished: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "route_table_published_timestamp_seconds",
				Help: "Unix time the serving route table was published",
			},
		),
		registry: registry,
	}

	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration, m.inFlight, m.tableVersion, m.tablePublished} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		mw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(mw, r)

		m.requestsTotal.WithLabelValues(r.Method, strconv.Itoa(mw.Status())).Inc()
		m.requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
