package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/titulos-monitor/titulos-monitor/internal/notifier"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		previous  State
		available bool
		wantState State
		wantKind  *Kind
		wantChan  notifier.Channel
	}{
		{"unknown to available", StateUnknown, true, StateAvailable, kindPtr(KindAvailable), notifier.ChannelBroadcast},
		{"unknown to unavailable", StateUnknown, false, StateUnavailable, kindPtr(KindStartedUnavailable), notifier.ChannelPrivate},
		{"available stays available", StateAvailable, true, StateAvailable, nil, 0},
		{"available to unavailable", StateAvailable, false, StateUnavailable, kindPtr(KindUnavailable), notifier.ChannelBroadcast},
		{"unavailable to available", StateUnavailable, true, StateAvailable, kindPtr(KindAvailable), notifier.ChannelBroadcast},
		{"unavailable stays unavailable", StateUnavailable, false, StateUnavailable, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, notes := Decide(tt.previous, tt.available)
			if state != tt.wantState {
				t.Errorf("Decide() state = %v, want %v", state, tt.wantState)
			}
			if tt.wantKind == nil {
				if len(notes) != 0 {
					t.Errorf("Decide() notifications = %v, want none", notes)
				}
				return
			}
			if len(notes) != 1 {
				t.Fatalf("Decide() notifications = %v, want exactly one", notes)
			}
			if notes[0].Kind != *tt.wantKind {
				t.Errorf("Decide() kind = %v, want %v", notes[0].Kind, *tt.wantKind)
			}
			if notes[0].Channel != tt.wantChan {
				t.Errorf("Decide() channel = %v, want %v", notes[0].Channel, tt.wantChan)
			}
		})
	}
}

func kindPtr(k Kind) *Kind { return &k }

func TestDecide_TransitionOnly(t *testing.T) {
	outcomes := []bool{true, true, false, false, false, true, false, true, true}

	state := StateUnknown
	previous := false
	for i, available := range outcomes {
		var notes []Notification
		state, notes = Decide(state, available)

		broadcast := 0
		for _, n := range notes {
			if n.Channel == notifier.ChannelBroadcast {
				broadcast++
			}
		}

		changed := i > 0 && available != previous
		wantBroadcast := changed || (i == 0 && available)
		if (broadcast == 1) != wantBroadcast {
			t.Errorf("cycle %d (available=%v): broadcast notifications = %d, want %v", i, available, broadcast, wantBroadcast)
		}
		if len(notes) > 1 {
			t.Errorf("cycle %d: %d notifications, want at most one", i, len(notes))
		}
		previous = available
	}
}

func TestDecide_FirstCycleAlwaysNotifies(t *testing.T) {
	for _, available := range []bool{true, false} {
		_, notes := Decide(StateUnknown, available)
		if len(notes) != 1 {
			t.Fatalf("first cycle available=%v: %d notifications, want 1", available, len(notes))
		}
		if notes[0].Kind == KindUnavailable {
			t.Errorf("first cycle available=%v sent the became-unavailable message", available)
		}
	}
}

func TestTracker_FailFailSuccess(t *testing.T) {
	var tr Tracker
	now := time.Now()
	var notes []Notification

	tr, notes = tr.Fail(errors.New("timeout"), now)
	if tr.ConsecutiveErrors != 1 || len(notes) != 0 {
		t.Fatalf("after 1st failure: counter = %d, notes = %v; want 1, none", tr.ConsecutiveErrors, notes)
	}
	tr, notes = tr.Fail(errors.New("timeout"), now)
	if tr.ConsecutiveErrors != 2 || len(notes) != 0 {
		t.Fatalf("after 2nd failure: counter = %d, notes = %v; want 2, none", tr.ConsecutiveErrors, notes)
	}
	if tr.State != StateUnknown {
		t.Errorf("failures changed state to %v", tr.State)
	}
	if tr.LastError != "timeout" {
		t.Errorf("LastError = %q, want timeout", tr.LastError)
	}

	tr, _ = tr.Succeed(false, now)
	if tr.ConsecutiveErrors != 0 {
		t.Errorf("after success: counter = %d, want 0", tr.ConsecutiveErrors)
	}
	if tr.LastError != "" {
		t.Errorf("after success: LastError = %q, want empty", tr.LastError)
	}
}

func TestTracker_Escalation(t *testing.T) {
	var tr Tracker
	now := time.Now()
	alerts := 0

	for i := 1; i <= EscalationThreshold; i++ {
		var notes []Notification
		tr, notes = tr.Fail(errors.New("boom"), now)
		for _, n := range notes {
			if n.Kind != KindErrorAlert || n.Channel != notifier.ChannelPrivate {
				t.Errorf("failure %d produced %v, want a private error alert", i, n)
			}
			if n.Failures != EscalationThreshold {
				t.Errorf("alert Failures = %d, want %d", n.Failures, EscalationThreshold)
			}
			alerts++
		}
		if i < EscalationThreshold && alerts != 0 {
			t.Fatalf("alert fired early at failure %d", i)
		}
	}

	if alerts != 1 {
		t.Errorf("alerts = %d, want exactly 1", alerts)
	}
	if tr.ConsecutiveErrors != 0 {
		t.Errorf("counter after alert = %d, want 0", tr.ConsecutiveErrors)
	}

	// A following run starts counting from zero
	for i := 1; i < EscalationThreshold; i++ {
		var notes []Notification
		tr, notes = tr.Fail(errors.New("boom"), now)
		if len(notes) != 0 {
			t.Fatalf("second run alerted after %d failures", i)
		}
		if tr.ConsecutiveErrors != i {
			t.Errorf("second run counter = %d, want %d", tr.ConsecutiveErrors, i)
		}
	}
}

func TestTracker_ScenarioAvailableThenUnavailable(t *testing.T) {
	var tr Tracker
	now := time.Now()

	steps := []struct {
		available bool
		want      []Kind
	}{
		{true, []Kind{KindAvailable}},
		{true, nil},
		{false, []Kind{KindUnavailable}},
	}

	for i, step := range steps {
		var notes []Notification
		tr, notes = tr.Succeed(step.available, now)
		if len(notes) != len(step.want) {
			t.Fatalf("step %d: notifications = %v, want %v", i, notes, step.want)
		}
		for j, n := range notes {
			if n.Kind != step.want[j] {
				t.Errorf("step %d: kind = %v, want %v", i, n.Kind, step.want[j])
			}
			if n.Channel != notifier.ChannelBroadcast {
				t.Errorf("step %d: channel = %v, want broadcast", i, n.Channel)
			}
		}
	}
}

func TestTracker_Begin(t *testing.T) {
	tr := Tracker{}.Begin().Begin().Begin()
	if tr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", tr.Attempts)
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateUnknown:     "unknown",
		StateAvailable:   "available",
		StateUnavailable: "unavailable",
		State(42):        "invalid",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
