// Package metrics exports ledger and HTTP metrics to Prometheus.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "loyalty"

// Ledger counts committed ledger events and the points they moved.
type Ledger struct {
	events *prometheus.CounterVec
	points *prometheus.CounterVec
}

func NewLedger(reg prometheus.Registerer) (*Ledger, error) {
	m := &Ledger{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_events_total",
			Help:      "Committed ledger events by kind.",
		}, []string{"kind"}),
		points: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_points_total",
			Help:      "Points moved by committed ledger events, by kind.",
		}, []string{"kind"}),
	}
	if err := register(reg, m.events, m.points); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Ledger) Observe(kind string, points int64) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
	if points > 0 {
		m.points.WithLabelValues(kind).Add(float64(points))
	}
}

// HTTP tracks request latency per route.
type HTTP struct {
	duration *prometheus.HistogramVec
}

func NewHTTP(reg prometheus.Registerer) (*HTTP, error) {
	m := &HTTP{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if err := register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *HTTP) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.duration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func register(reg prometheus.Registerer, collectors ...prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			return fmt.Errorf("register metric: %w", err)
		}
	}
	return nil
}
