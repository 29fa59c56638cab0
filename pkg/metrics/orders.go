package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order-flow counters and timings.
type OrderMetrics struct {
	created  *prometheus.CounterVec
	rejected *prometheus.CounterVec
	canceled *prometheus.CounterVec
	returns  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, by channel.",
	}, []string{"channel"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Order creation rejections, by error code.",
	}, []string{"code"})
	canceled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_canceled_total",
		Help: "Orders canceled.",
	}, []string{"channel"})
	returns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_returns_processed_total",
		Help: "Order returns processed.",
	}, []string{"restocked"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_create_duration_seconds",
		Help:    "Duration of the order creation transaction in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
	reg.MustRegister(created, rejected, canceled, returns, duration)
	return &OrderMetrics{
		created:  created,
		rejected: rejected,
		canceled: canceled,
		returns:  returns,
		duration: duration,
	}
}

// IncCreated increments the created counter for the channel.
func (m *OrderMetrics) IncCreated(channel string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncRejected increments the rejection counter for the error code.
func (m *OrderMetrics) IncRejected(code string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(code)).Inc()
}

// IncCanceled increments the canceled counter for the channel.
func (m *OrderMetrics) IncCanceled(channel string) {
	if m == nil || m.canceled == nil {
		return
	}
	m.canceled.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncReturnProcessed increments the processed-returns counter.
func (m *OrderMetrics) IncReturnProcessed(restocked bool) {
	if m == nil || m.returns == nil {
		return
	}
	label := "no"
	if restocked {
		label = "yes"
	}
	m.returns.WithLabelValues(label).Inc()
}

// ObserveCreateDuration records the creation transaction duration.
func (m *OrderMetrics) ObserveCreateDuration(channel string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(channel)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
