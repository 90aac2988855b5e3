package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/titulos-monitor/titulos-monitor/internal/checker"
	"github.com/titulos-monitor/titulos-monitor/internal/logger"
	"github.com/titulos-monitor/titulos-monitor/internal/metrics"
	"github.com/titulos-monitor/titulos-monitor/internal/notifier"
	"github.com/titulos-monitor/titulos-monitor/internal/telegram"
)

// Options configures a Monitor
type Options struct {
	// TargetURL is linked from the availability message
	TargetURL string
	// Interval is quoted in the startup message
	Interval time.Duration
	// Metrics may be nil
	Metrics *metrics.Metrics
}

// Monitor runs checks and turns their outcomes into notifications
type Monitor struct {
	checker  checker.Checker
	notifier notifier.Notifier
	metrics  *metrics.Metrics
	opts     Options
	now      func() time.Time

	mu      sync.Mutex
	tracker Tracker
}

// New creates a Monitor starting in StateUnknown
func New(c checker.Checker, n notifier.Notifier, opts Options) *Monitor {
	return &Monitor{
		checker:  c,
		notifier: n,
		metrics:  opts.Metrics,
		opts:     opts,
		now:      time.Now,
	}
}

// Snapshot returns a copy of the current tracker
func (m *Monitor) Snapshot() Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracker
}

// RunOnce performs one check cycle. Check and delivery failures are logged, never returned.
func (m *Monitor) RunOnce(ctx context.Context) {
	m.mu.Lock()
	m.tracker = m.tracker.Begin()
	attempt := m.tracker.Attempts
	m.mu.Unlock()

	fields := logger.Fields{
		"attempt":  attempt,
		"check_id": uuid.NewString(),
	}
	logger.Info("Checking availability", fields)

	start := time.Now()
	available, err := m.checker.Check(ctx)
	elapsed := time.Since(start)
	at := m.now()

	var notes []Notification
	m.mu.Lock()
	if err != nil {
		m.tracker, notes = m.tracker.Fail(err, at)
	} else {
		m.tracker, notes = m.tracker.Succeed(available, at)
	}
	current := m.tracker
	m.mu.Unlock()

	fields["duration"] = elapsed.Round(time.Millisecond).String()
	fields["state"] = current.State.String()

	if err != nil {
		m.metrics.ObserveCheck(metrics.ResultError, elapsed)
		fields["consecutive_errors"] = current.ConsecutiveErrors
		logger.Error("Check failed", fields, err)
	} else {
		m.metrics.SetAvailable(available)
		if available {
			m.metrics.ObserveCheck(metrics.ResultAvailable, elapsed)
			logger.Info("Appointments available", fields)
		} else {
			m.metrics.ObserveCheck(metrics.ResultUnavailable, elapsed)
			logger.Info("No appointments available", fields)
		}
	}
	m.metrics.SetConsecutiveErrors(current.ConsecutiveErrors)

	for _, note := range notes {
		if note.Kind == KindErrorAlert {
			m.metrics.IncEscalations()
		}
		m.deliver(ctx, m.render(note, err, at))
	}
}

// NotifyStopped sends the shutdown message to the private channel
func (m *Monitor) NotifyStopped(ctx context.Context) {
	total := m.Snapshot().Attempts
	m.deliver(ctx, notifier.Message{
		Channel: notifier.ChannelPrivate,
		Text:    telegram.FormatStopped(total),
	})
}

// deliver makes one attempt and swallows failures
func (m *Monitor) deliver(ctx context.Context, msg notifier.Message) {
	err := m.notifier.Notify(ctx, msg)
	m.metrics.ObserveNotification(msg.Channel.String(), err)
	if err != nil {
		logger.Warn("Notification not delivered", logger.Fields{
			"channel": msg.Channel.String(),
			"error":   err.Error(),
		})
		return
	}
	logger.Info("Notification sent", logger.Fields{"channel": msg.Channel.String()})
}

func (m *Monitor) render(note Notification, checkErr error, at time.Time) notifier.Message {
	var text string
	switch note.Kind {
	case KindAvailable:
		text = telegram.FormatAvailable(m.opts.TargetURL, at)
	case KindStartedUnavailable:
		text = telegram.FormatMonitorStarted(m.opts.Interval)
	case KindUnavailable:
		text = telegram.FormatUnavailable(at)
	case KindErrorAlert:
		text = telegram.FormatErrorAlert(note.Failures, checkErr)
	default:
		text = fmt.Sprintf("Evento desconocido: %s", note.Kind)
	}
	return notifier.Message{Channel: note.Channel, Text: text}
}
