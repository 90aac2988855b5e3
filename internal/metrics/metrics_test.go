package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Checks(t *testing.T) {
	m := New(prometheus.NewRegistry())

	if got := testutil.ToFloat64(m.available); got != -1 {
		t.Errorf("initial target_available = %v, want -1", got)
	}

	m.ObserveCheck(ResultAvailable, 3*time.Second)
	m.ObserveCheck(ResultError, time.Second)
	m.ObserveCheck(ResultError, time.Second)
	m.SetAvailable(true)

	if got := testutil.ToFloat64(m.checks.WithLabelValues(ResultError)); got != 2 {
		t.Errorf("checks_total{result=error} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.checks.WithLabelValues(ResultAvailable)); got != 1 {
		t.Errorf("checks_total{result=available} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.available); got != 1 {
		t.Errorf("target_available = %v, want 1", got)
	}

	m.SetAvailable(false)
	if got := testutil.ToFloat64(m.available); got != 0 {
		t.Errorf("target_available = %v, want 0", got)
	}
}

func TestMetrics_ErrorsAndNotifications(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetConsecutiveErrors(4)
	m.IncEscalations()
	m.ObserveNotification("private", nil)
	m.ObserveNotification("broadcast", errors.New("down"))

	if got := testutil.ToFloat64(m.consecutiveErrors); got != 4 {
		t.Errorf("consecutive_errors = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.escalations); got != 1 {
		t.Errorf("escalations_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.notifications.WithLabelValues("private", "sent")); got != 1 {
		t.Errorf("notifications_total{private,sent} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.notifications.WithLabelValues("broadcast", "failed")); got != 1 {
		t.Errorf("notifications_total{broadcast,failed} = %v, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveCheck(ResultAvailable, time.Second)
	m.SetAvailable(true)
	m.SetConsecutiveErrors(1)
	m.IncEscalations()
	m.ObserveNotification("private", nil)
}

func TestMetrics_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveCheck(ResultUnavailable, time.Second)
	m.ObserveNotification("broadcast", nil)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	want := map[string]bool{
		"titulos_monitor_target_available":       false,
		"titulos_monitor_checks_total":           false,
		"titulos_monitor_check_duration_seconds": false,
		"titulos_monitor_notifications_total":    false,
	}
	for _, f := range families {
		if _, ok := want[f.GetName()]; ok {
			want[f.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("metric %s not registered", name)
		}
	}
}
