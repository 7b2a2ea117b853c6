// Package input defines the Sink capability the engine drives and its
// implementations: the robotgo-backed system sink and a recording sink
// for dry-run mode and tests.
package input

// Button identifies a mouse button.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// Sink is the capability that performs OS-level key/mouse injection.
// The engine composes positioned actions itself (MoveMouse before
// Click/Scroll when a step carries coordinates), so implementations
// stay a thin one-call-per-method wrapper.
//
// Every call may fail; a failure aborts the current execution. Calls
// are made from whichever goroutine is executing the macro and are
// never issued concurrently, so implementations need no locking of
// their own.
type Sink interface {
	PressKey(key string) error
	ReleaseKey(key string) error
	TypeSequence(text string) error
	MoveMouse(x, y int) error
	Click(button Button) error
	Scroll(amount int) error
}
