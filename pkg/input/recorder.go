package input

import (
	"fmt"
	"io"
	"sync"
)

// Recorder is a Sink that records every call instead of injecting
// input. It backs dry-run mode, the MCP server's safe default, and
// tests. Safe for concurrent Calls() reads while a run is in flight.
type Recorder struct {
	mu    sync.Mutex
	calls []string

	// Out, when set, echoes each call as it is recorded.
	Out io.Writer

	// FailOn, when non-empty, makes the named method (e.g. "press")
	// return Err — used to exercise runtime failure paths.
	FailOn string
	Err    error
}

func (r *Recorder) record(method, detail string) error {
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf("%s %s", method, detail))
	r.mu.Unlock()
	if r.Out != nil {
		fmt.Fprintf(r.Out, "[dry-run] %s %s\n", method, detail)
	}
	if r.FailOn == method {
		if r.Err != nil {
			return r.Err
		}
		return fmt.Errorf("injected %s failure", method)
	}
	return nil
}

// Calls returns a copy of the recorded call log, in order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *Recorder) PressKey(key string) error    { return r.record("press", key) }
func (r *Recorder) ReleaseKey(key string) error  { return r.record("release", key) }
func (r *Recorder) TypeSequence(text string) error { return r.record("type", text) }
func (r *Recorder) MoveMouse(x, y int) error     { return r.record("move", fmt.Sprintf("%d,%d", x, y)) }
func (r *Recorder) Click(button Button) error    { return r.record("click", string(button)) }
func (r *Recorder) Scroll(amount int) error      { return r.record("scroll", fmt.Sprintf("%d", amount)) }
