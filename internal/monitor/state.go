package monitor

import (
	"time"

	"github.com/titulos-monitor/titulos-monitor/internal/notifier"
)

// EscalationThreshold is the number of consecutive failed checks that raises an operator alert
const EscalationThreshold = 5

// State is the last known availability classification
type State int

const (
	StateUnknown State = iota
	StateAvailable
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAvailable:
		return "available"
	case StateUnavailable:
		return "unavailable"
	default:
		return "invalid"
	}
}

// Kind identifies which message a notification carries
type Kind int

const (
	// KindAvailable announces that the page is reachable
	KindAvailable Kind = iota
	// KindStartedUnavailable tells the operator the monitor started while the page is blocked
	KindStartedUnavailable
	// KindUnavailable announces that the page stopped being reachable
	KindUnavailable
	// KindErrorAlert tells the operator that checks keep failing
	KindErrorAlert
)

func (k Kind) String() string {
	switch k {
	case KindAvailable:
		return "available"
	case KindStartedUnavailable:
		return "started_unavailable"
	case KindUnavailable:
		return "unavailable"
	case KindErrorAlert:
		return "error_alert"
	default:
		return "invalid"
	}
}

// Notification is a message the monitor owes to a channel
type Notification struct {
	Kind    Kind
	Channel notifier.Channel
	// Failures is the length of the failure run, set for KindErrorAlert
	Failures int
}

// Decide maps the previous state and the current check outcome to the next state and
// the notifications that transition requires. Repeating an outcome never notifies.
func Decide(previous State, available bool) (State, []Notification) {
	if available {
		if previous == StateAvailable {
			return StateAvailable, nil
		}
		return StateAvailable, []Notification{
			{Kind: KindAvailable, Channel: notifier.ChannelBroadcast},
		}
	}

	switch previous {
	case StateUnknown:
		return StateUnavailable, []Notification{
			{Kind: KindStartedUnavailable, Channel: notifier.ChannelPrivate},
		}
	case StateAvailable:
		return StateUnavailable, []Notification{
			{Kind: KindUnavailable, Channel: notifier.ChannelBroadcast},
		}
	default:
		return StateUnavailable, nil
	}
}

// Tracker is the monitor's in-memory state. Methods return updated copies.
type Tracker struct {
	State             State     `json:"state"`
	ConsecutiveErrors int       `json:"consecutive_errors"`
	Attempts          int       `json:"attempts"`
	LastCheck         time.Time `json:"last_check,omitempty"`
	LastError         string    `json:"last_error,omitempty"`
}

// Begin counts a started check
func (t Tracker) Begin() Tracker {
	t.Attempts++
	return t
}

// Succeed applies a completed check: the error run ends and the state may transition
func (t Tracker) Succeed(available bool, at time.Time) (Tracker, []Notification) {
	var notes []Notification
	t.State, notes = Decide(t.State, available)
	t.ConsecutiveErrors = 0
	t.LastCheck = at
	t.LastError = ""
	return t, notes
}

// Fail applies a failed check. The state is left untouched. Reaching the escalation
// threshold yields one operator alert and resets the counter to zero.
func (t Tracker) Fail(err error, at time.Time) (Tracker, []Notification) {
	t.ConsecutiveErrors++
	t.LastCheck = at
	if err != nil {
		t.LastError = err.Error()
	}

	if t.ConsecutiveErrors < EscalationThreshold {
		return t, nil
	}

	alert := Notification{
		Kind:     KindErrorAlert,
		Channel:  notifier.ChannelPrivate,
		Failures: t.ConsecutiveErrors,
	}
	t.ConsecutiveErrors = 0
	return t, []Notification{alert}
}
