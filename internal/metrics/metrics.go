package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	Submissions      *prometheus.CounterVec
	Dispatches       *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	RateLimited      *prometheus.CounterVec
	RateLimitEntries prometheus.Gauge
	SweptEntries     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on /metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact submissions by final outcome (sent, bot, too_fast, invalid, rate_limited, error)",
		}, []string{"outcome"}),
		Dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_dispatch_total",
			Help: "Email dispatches by kind (owner, confirmation) and result",
		}, []string{"kind", "result"}),
		DispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contact_dispatch_duration_seconds",
			Help:    "Time spent dispatching an email including the fallback retry",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_rate_limited_total",
			Help: "Submissions rejected by the rate limiter, by window",
		}, []string{"window"}),
		RateLimitEntries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "contact_rate_limit_entries",
			Help: "Number of keys currently tracked by the rate limiter",
		}),
		SweptEntries: factory.NewCounter(prometheus.CounterOpts{
			Name: "contact_rate_limit_swept_total",
			Help: "Expired rate limit entries removed by the sweeper",
		}),
	}
}
