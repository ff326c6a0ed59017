package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
)

func TestNewTrackerIsIdle(t *testing.T) {
	tr := NewTracker()
	if tr.Status != Idle {
		t.Errorf("status = %s, want idle", tr.Status)
	}
	if tr.InFlight() != 0 {
		t.Errorf("inflight = %d, want 0", tr.InFlight())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{Idle, Loading, true},
		{Idle, Failed, true},
		{Idle, Succeeded, false},
		{Loading, Succeeded, true},
		{Loading, Failed, true},
		{Loading, Idle, false},
		{Succeeded, Loading, true},
		{Succeeded, Succeeded, false},
		{Failed, Loading, true},
		{Failed, Failed, true},
		{Failed, Idle, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTrackerTriad(t *testing.T) {
	tr := NewTracker()
	tr.Error = "old"

	tr = tr.Begin()
	if tr.Status != Loading || tr.Error != "" {
		t.Fatalf("after Begin: status=%s error=%q, want loading and cleared error", tr.Status, tr.Error)
	}

	tr = tr.Fail("boom", false)
	if tr.Status != Failed || tr.Error != "boom" {
		t.Fatalf("after Fail: status=%s error=%q", tr.Status, tr.Error)
	}

	tr = tr.Begin().Succeed()
	if tr.Status != Succeeded || tr.Error != "" {
		t.Fatalf("after Succeed: status=%s error=%q", tr.Status, tr.Error)
	}
}

// TestTrackerOverlappingOperations verifies status stays loading until the
// last of two overlapping operations settles.
func TestTrackerOverlappingOperations(t *testing.T) {
	tr := NewTracker().Begin().Begin()

	tr = tr.Succeed()
	if tr.Status != Loading {
		t.Fatalf("status = %s after first settle, want loading", tr.Status)
	}

	tr = tr.Fail("second failed", false)
	if tr.Status != Failed {
		t.Fatalf("status = %s after last settle, want failed", tr.Status)
	}
	if tr.InFlight() != 0 {
		t.Errorf("inflight = %d, want 0", tr.InFlight())
	}
}

func TestTrackerLocalFailureDoesNotSettle(t *testing.T) {
	tr := NewTracker().Begin()

	tr = tr.Fail("No email found for reset", true)
	if tr.Status != Loading {
		t.Errorf("status = %s, want loading while an operation is in flight", tr.Status)
	}
	if tr.InFlight() != 1 {
		t.Errorf("inflight = %d, want 1", tr.InFlight())
	}

	idle := NewTracker().Fail("Passwords do not match", true)
	if idle.Status != Failed || idle.Error != "Passwords do not match" {
		t.Errorf("local failure from idle: status=%s error=%q", idle.Status, idle.Error)
	}
}

func TestMessage(t *testing.T) {
	wrapped := fmt.Errorf("reset: %w", Local("Passwords do not match"))

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"local", Local("No email found for reset"), "No email found for reset"},
		{"wrapped local", wrapped, "Passwords do not match"},
		{"plain error", errors.New("dial tcp: refused"), "Login failed"},
		{"empty local", Local(""), "Login failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err, "Login failed"); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
	if !IsLocal(wrapped) {
		t.Error("IsLocal(wrapped) = false, want true")
	}
}

type action struct {
	phase string
	value int
	msg   string
}

func TestRunDispatchesPhases(t *testing.T) {
	var got []action
	dispatch := func(a action) { got = append(got, a) }

	op := Op[int, action]{
		Name:      "test/ok",
		Call:      func(context.Context) (int, error) { return 42, nil },
		Pending:   action{phase: "pending"},
		Fulfilled: func(v int) action { return action{phase: "fulfilled", value: v} },
		Rejected:  func(msg string) action { return action{phase: "rejected", msg: msg} },
		Fallback:  "Test failed",
	}

	v, err := Run(context.Background(), zap.NewNop(), dispatch, op)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v != 42 {
		t.Errorf("value = %d, want 42", v)
	}
	if len(got) != 2 || got[0].phase != "pending" || got[1].phase != "fulfilled" || got[1].value != 42 {
		t.Errorf("dispatched = %+v, want pending then fulfilled(42)", got)
	}
}

func TestRunRejectsWithFallback(t *testing.T) {
	var got []action
	dispatch := func(a action) { got = append(got, a) }

	op := Op[int, action]{
		Name:      "test/fail",
		Call:      func(context.Context) (int, error) { return 0, errors.New("connection reset") },
		Pending:   action{phase: "pending"},
		Fulfilled: func(v int) action { return action{phase: "fulfilled", value: v} },
		Rejected:  func(msg string) action { return action{phase: "rejected", msg: msg} },
		Fallback:  "Test failed",
	}

	if _, err := Run(context.Background(), zap.NewNop(), dispatch, op); err == nil {
		t.Fatal("Run() expected error")
	}
	if len(got) != 2 || got[1].phase != "rejected" || got[1].msg != "Test failed" {
		t.Errorf("dispatched = %+v, want pending then rejected(Test failed)", got)
	}
}
