// Package metrics exposes Prometheus collectors for checks and notifications.
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "titulos_monitor"

// Check results
const (
	ResultAvailable   = "available"
	ResultUnavailable = "unavailable"
	ResultError       = "error"
)

// Metrics groups the monitor's collectors
type Metrics struct {
	available         prometheus.Gauge
	consecutiveErrors prometheus.Gauge
	checks            *prometheus.CounterVec
	checkDuration     prometheus.Histogram
	notifications     *prometheus.CounterVec
	escalations       prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		available: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "target_available",
			Help:      "Target page reachability: 1 = available, 0 = unavailable, -1 = unknown",
		}),
		consecutiveErrors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consecutive_errors",
			Help:      "Failed checks since the last success or escalation alert",
		}),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Completed checks by result",
		}, []string{"result"}),
		checkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Time spent per check including browser startup and settle delay",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 45, 60},
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification delivery attempts by channel and outcome",
		}, []string{"channel", "outcome"}),
		escalations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalations_total",
			Help:      "Operator alerts raised after consecutive check failures",
		}),
	}
	m.available.Set(-1)

	reg.MustRegister(
		m.available,
		m.consecutiveErrors,
		m.checks,
		m.checkDuration,
		m.notifications,
		m.escalations,
	)
	return m
}

// ObserveCheck records a finished check
func (m *Metrics) ObserveCheck(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(result).Inc()
	m.checkDuration.Observe(duration.Seconds())
}

// SetAvailable records the current classification
func (m *Metrics) SetAvailable(available bool) {
	if m == nil {
		return
	}
	if available {
		m.available.Set(1)
	} else {
		m.available.Set(0)
	}
}

// SetConsecutiveErrors records the error counter
func (m *Metrics) SetConsecutiveErrors(n int) {
	if m == nil {
		return
	}
	m.consecutiveErrors.Set(float64(n))
}

// IncEscalations counts an operator alert
func (m *Metrics) IncEscalations() {
	if m == nil {
		return
	}
	m.escalations.Inc()
}

// ObserveNotification records one delivery attempt
func (m *Metrics) ObserveNotification(channel string, err error) {
	if m == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.notifications.WithLabelValues(channel, outcome).Inc()
}
