package engine

import (
	"testing"
	"time"
)

// TestResolveMaxRepeat covers the override/global/default precedence.
func TestResolveMaxRepeat(t *testing.T) {
	cases := []struct {
		name     string
		global   int
		override int
		want     int
	}{
		{"override wins", 50, 200, 200},
		{"global when no override", 50, 0, 50},
		{"default when nothing set", 0, 0, DefaultMaxRepeat},
		{"negative override ignored", 50, -1, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveMaxRepeat(tc.global, tc.override); got != tc.want {
				t.Errorf("ResolveMaxRepeat(%d, %d) = %d, want %d", tc.global, tc.override, got, tc.want)
			}
		})
	}
}

// TestResolveTimeout covers the same precedence for the wall clock.
func TestResolveTimeout(t *testing.T) {
	cases := []struct {
		name     string
		global   time.Duration
		override time.Duration
		want     time.Duration
	}{
		{"override wins", 10 * time.Second, time.Minute, time.Minute},
		{"global when no override", 10 * time.Second, 0, 10 * time.Second},
		{"default when nothing set", 0, 0, DefaultTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveTimeout(tc.global, tc.override); got != tc.want {
				t.Errorf("ResolveTimeout(%v, %v) = %v, want %v", tc.global, tc.override, got, tc.want)
			}
		})
	}
}

// TestStateTransitions spot-checks the legality table.
func TestStateTransitions(t *testing.T) {
	cases := []struct {
		from, to State
		ok       bool
	}{
		{StateIdle, StateRunning, true},
		{StateIdle, StatePaused, false},
		{StateRunning, StatePaused, true},
		{StatePaused, StateRunning, true},
		{StatePaused, StateStopped, true},
		{StateRunning, StateCompleted, true},
		{StatePaused, StateCompleted, false},
		{StateCompleted, StateRunning, true},
		{StateStopped, StateRunning, true},
		{StateError, StateRunning, true},
		{StateIdle, StateStopped, false},
	}
	for _, tc := range cases {
		if got := legal(tc.from, tc.to); got != tc.ok {
			t.Errorf("legal(%v, %v) = %t, want %t", tc.from, tc.to, got, tc.ok)
		}
	}
}

// TestMachineIllegalTransitionIsNoOp verifies a rejected transition
// leaves the state untouched.
func TestMachineIllegalTransitionIsNoOp(t *testing.T) {
	var m machine
	if m.transition(StatePaused, "") {
		t.Error("pause from idle should be rejected")
	}
	if st, _ := m.current(); st != StateIdle {
		t.Errorf("state = %v, want Idle", st)
	}
}

// TestMachineErrorReasonCleared verifies the reason is set only with
// the error state and cleared on the next transition away from it.
func TestMachineErrorReasonCleared(t *testing.T) {
	var m machine
	m.transition(StateRunning, "")
	m.transition(StateError, "timeout")
	if _, reason := m.current(); reason != "timeout" {
		t.Errorf("reason = %q, want timeout", reason)
	}
	m.transition(StateRunning, "")
	if _, reason := m.current(); reason != "" {
		t.Errorf("reason = %q, want empty after leaving error", reason)
	}
}
