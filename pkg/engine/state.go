package engine

import "sync"

// State is the execution lifecycle state of an engine instance.
// Exactly one State value exists per engine at a time; it is the single
// source of truth read by the coordinator and any inspecting caller.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateStopped
	StateCompleted
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends an execution instance. A terminal
// state is also a fresh starting point: the engine accepts a new submit
// from any terminal state without an explicit reset.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateCompleted || s == StateError
}

// machine guards the shared execution state. The submitting goroutine
// and the worker both read and write it, always under the mutex —
// never through unsynchronized memory.
type machine struct {
	mu     sync.Mutex
	state  State
	reason string // error reason, set only with StateError
}

func (m *machine) current() (State, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.reason
}

// legal reports whether from -> to is a permitted transition.
func legal(from, to State) bool {
	switch to {
	case StateRunning:
		return from == StateIdle || from == StatePaused || from.Terminal()
	case StatePaused:
		return from == StateRunning
	case StateStopped:
		return from == StateRunning || from == StatePaused
	case StateCompleted:
		return from == StateRunning
	case StateError:
		return from == StateRunning || from == StatePaused
	case StateIdle:
		return from.Terminal()
	default:
		return false
	}
}

// transition moves the machine to the target state if the move is
// legal, returning whether it happened. Illegal requests (for example
// pause while idle) are silent no-ops.
func (m *machine) transition(to State, reason string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !legal(m.state, to) {
		return false
	}
	m.state = to
	if to == StateError {
		m.reason = reason
	} else {
		m.reason = ""
	}
	return true
}
