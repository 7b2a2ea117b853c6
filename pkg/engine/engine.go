// Package engine executes validated macros on a dedicated worker with
// cooperative stop/pause/resume and repeat/wall-clock safety bounds.
package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/expr-lang/expr"

	"github.com/keyfire/keyfire/pkg/input"
	"github.com/keyfire/keyfire/pkg/schema"
)

// Options tunes an Engine. Zero values select the defaults.
type Options struct {
	// Limits is the global safety envelope; per-macro overrides layer
	// on top of it (see ResolveMaxRepeat / ResolveTimeout).
	Limits Limits

	// InlineThreshold is the estimated total duration at or below which
	// a single-pass macro runs inline on the caller's goroutine instead
	// of a background worker. Default 50ms. The threshold is an
	// ergonomics knob, not load-bearing behavior: both paths obey the
	// same state machine and safety envelope.
	InlineThreshold time.Duration

	// PollInterval is the chunk size for interruptible waits and the
	// pause/stop polling cadence. Default 100ms; it bounds worst-case
	// stop latency.
	PollInterval time.Duration

	// StopWait bounds how long Stop blocks waiting for an in-flight
	// worker to observe the stop request. Default 2s.
	StopWait time.Duration

	// Trace, when set, receives a StepEvent per step. Trace writes are
	// best-effort: a write failure never aborts an in-flight macro.
	Trace *TraceWriter
}

func (o Options) withDefaults() Options {
	if o.InlineThreshold <= 0 {
		o.InlineThreshold = 50 * time.Millisecond
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 100 * time.Millisecond
	}
	if o.StopWait <= 0 {
		o.StopWait = 2 * time.Second
	}
	return o
}

// Engine runs one macro at a time through an input sink. It is owned
// by the application's composition root and passed by reference to
// whatever needs it; there is no package-level instance.
//
// Execute, Stop, Pause, Resume, State and IsRunning are safe to call
// concurrently from any goroutine.
type Engine struct {
	sink      input.Sink
	callbacks Callbacks
	opts      Options

	machine  machine
	stopFlag atomic.Bool

	mu     sync.Mutex // guards done and lastReport
	done   chan struct{}
	report *RunReport
}

// New creates an engine that dispatches steps to sink and notifies cb.
func New(sink input.Sink, cb Callbacks, opts Options) *Engine {
	return &Engine{
		sink:      sink,
		callbacks: cb,
		opts:      opts.withDefaults(),
	}
}

// Execute submits a macro, returning true if execution was accepted and
// started (inline or background). It is the boolean convenience wrapper
// over Submit.
func (e *Engine) Execute(m *schema.Macro) bool {
	return e.Submit(m) == nil
}

// Submit validates the macro against the validator, the enabled flag
// and the safety envelope, then starts execution. The returned error is
// nil on acceptance or one of the closed rejection kinds:
// *ValidationRejection, ErrRejectedDisabled, *RepeatLimitError,
// ErrRejectedBusy. All checks run before any state transition, so a
// rejected macro never touches the running state.
func (e *Engine) Submit(m *schema.Macro) error {
	if errs := schema.ValidateMacro(m); len(errs) > 0 {
		return &ValidationRejection{Errors: errs}
	}
	if !m.IsEnabled() {
		return ErrRejectedDisabled
	}
	allowed := ResolveMaxRepeat(e.opts.Limits.MaxRepeat, m.MaxRepeat)
	if m.Repeat > allowed {
		return &RepeatLimitError{Requested: m.Repeat, Allowed: allowed}
	}

	e.mu.Lock()
	if st, _ := e.machine.current(); st == StateRunning || st == StatePaused {
		e.mu.Unlock()
		return ErrRejectedBusy
	}
	e.stopFlag.Store(false)
	e.machine.transition(StateRunning, "")
	done := make(chan struct{})
	e.done = done
	e.mu.Unlock()

	timeout := ResolveTimeout(e.opts.Limits.Timeout, m.Timeout())

	if e.trivial(m) {
		e.run(m, timeout, done)
		return nil
	}
	go e.run(m, timeout, done)
	return nil
}

// trivial reports whether the macro is small enough to run inline on
// the caller's goroutine: one pass and an estimated total duration at
// or below the inline threshold.
func (e *Engine) trivial(m *schema.Macro) bool {
	if m.Repeat > 1 {
		return false
	}
	var totalMs int64
	for i := range m.Steps {
		totalMs += m.Steps[i].DurationMs
	}
	return time.Duration(totalMs)*time.Millisecond <= e.opts.InlineThreshold
}

// Stop requests a cooperative halt. It is idempotent and a no-op when
// nothing is running. It blocks until the in-flight worker has observed
// the request, bounded by StopWait, so a stuck input call can never
// hang the caller indefinitely.
func (e *Engine) Stop() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()

	st, _ := e.machine.current()
	if st != StateRunning && st != StatePaused {
		return
	}
	e.stopFlag.Store(true)
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(e.opts.StopWait):
	}
}

// Pause suspends execution at the next step or wait boundary. Valid
// only while running; a no-op otherwise.
func (e *Engine) Pause() {
	e.machine.transition(StatePaused, "")
}

// Resume continues a paused execution. Valid only while paused; a
// no-op otherwise.
func (e *Engine) Resume() {
	if st, _ := e.machine.current(); st == StatePaused {
		e.machine.transition(StateRunning, "")
	}
}

// State returns the current execution state.
func (e *Engine) State() State {
	st, _ := e.machine.current()
	return st
}

// Reason returns the error reason when State is StateError, else "".
func (e *Engine) Reason() string {
	_, reason := e.machine.current()
	return reason
}

// IsRunning reports whether a macro is in flight (running or paused).
func (e *Engine) IsRunning() bool {
	st, _ := e.machine.current()
	return st == StateRunning || st == StatePaused
}

// Wait blocks until the current execution reaches a terminal state.
// Returns immediately when nothing is in flight.
func (e *Engine) Wait() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// run is the worker loop. It executes steps strictly in list order,
// once per repeat pass, passes strictly in sequence. Stop and pause are
// observed at pass and step boundaries and inside timed waits, never
// mid-step: a step already in flight on the sink completes first.
func (e *Engine) run(m *schema.Macro, timeout time.Duration, done chan struct{}) {
	defer close(done)

	start := time.Now()
	total := len(m.Steps)
	rep := &RunReport{
		MacroID:   m.ID,
		Name:      m.Name,
		StartedAt: start,
	}

	finish := func(st State, reason string) {
		e.machine.transition(st, reason)
		rep.EndedAt = time.Now()
		rep.State = st.String()
		rep.Reason = reason
		e.mu.Lock()
		e.report = rep
		e.mu.Unlock()
		switch st {
		case StateError:
			e.callbacks.errored(reason)
		case StateCompleted:
			e.callbacks.completed(m)
		}
	}

	for pass := 0; pass < m.Repeat; pass++ {
		if e.stopFlag.Load() || !e.waitIfPaused() {
			finish(StateStopped, "")
			return
		}
		if time.Since(start) > timeout {
			finish(StateError, "timeout")
			return
		}

		for i := range m.Steps {
			step := &m.Steps[i]

			if e.stopFlag.Load() || !e.waitIfPaused() {
				finish(StateStopped, "")
				return
			}
			if time.Since(start) > timeout {
				finish(StateError, "timeout")
				return
			}

			if step.When != "" {
				ok, err := e.evalCondition(step.When, m, pass)
				if err != nil {
					e.trace(m, pass, i, step, "failed", err.Error())
					finish(StateError, fmt.Sprintf("step %d condition: %v", i, err))
					return
				}
				if !ok {
					e.trace(m, pass, i, step, "skipped", "")
					continue
				}
			}

			if err := e.dispatch(step); err != nil {
				e.trace(m, pass, i, step, "failed", err.Error())
				finish(StateError, fmt.Sprintf("step %d (%s): %v", i, step.Kind, err))
				return
			}
			rep.StepsExecuted++
			e.trace(m, pass, i, step, "executed", "")
			e.callbacks.step(i+1, total)

			if !e.sleepInterruptible(e.postStepWait(m, step)) {
				finish(StateStopped, "")
				return
			}
		}
		rep.PassesCompleted++
	}

	finish(StateCompleted, "")
}

// dispatch performs one step through the sink. The switch is exhaustive
// over the closed StepKind set.
func (e *Engine) dispatch(step *schema.Step) error {
	switch step.Kind {
	case schema.KindKeyPress:
		if err := e.sink.PressKey(step.Key); err != nil {
			return err
		}
		return e.sink.ReleaseKey(step.Key)

	case schema.KindKeyDown:
		if err := e.sink.PressKey(step.Key); err != nil {
			return err
		}
		if step.DurationMs > 0 {
			// Hold for the duration, then auto-release. The release
			// happens even when a stop cuts the hold short, so no key
			// is ever left stuck down.
			e.sleepInterruptible(step.Duration())
			return e.sink.ReleaseKey(step.Key)
		}
		return nil

	case schema.KindKeyUp:
		return e.sink.ReleaseKey(step.Key)

	case schema.KindKeySequence:
		return e.sink.TypeSequence(step.Text)

	case schema.KindMouseMove:
		return e.sink.MoveMouse(*step.X, *step.Y)

	case schema.KindMouseClick:
		if step.HasPosition() {
			if err := e.sink.MoveMouse(*step.X, *step.Y); err != nil {
				return err
			}
		}
		return e.sink.Click(input.Button(step.Button))

	case schema.KindMouseScroll:
		if step.HasPosition() {
			if err := e.sink.MoveMouse(*step.X, *step.Y); err != nil {
				return err
			}
		}
		return e.sink.Scroll(*step.ScrollAmount)

	case schema.KindDelay:
		// The wait is the step itself: it must elapse before the step
		// counts as completed and OnStep fires. A stop cuts it short;
		// the loop observes the flag at the next boundary.
		e.sleepInterruptible(step.Duration())
		return nil
	}
	return fmt.Errorf("unknown step kind %q", step.Kind)
}

// postStepWait computes the inter-step wait, which is jitter only:
// delay steps consume their duration inside dispatch and key_down holds
// consume theirs as the hold.
func (e *Engine) postStepWait(m *schema.Macro, step *schema.Step) time.Duration {
	return stepJitter(m, step)
}

// evalCondition evaluates a step's when: expression against the macro
// vars plus the pass counters.
func (e *Engine) evalCondition(cond string, m *schema.Macro, pass int) (bool, error) {
	env := map[string]any{
		"pass":   pass,
		"repeat": m.Repeat,
	}
	for k, v := range m.Vars {
		env[k] = v
	}
	program, err := expr.Compile(cond, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("compile condition %q: %w", cond, err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("eval condition %q: %w", cond, err)
	}
	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not return bool (got %T)", cond, out)
	}
	return result, nil
}

func (e *Engine) trace(m *schema.Macro, pass, index int, step *schema.Step, status, errMsg string) {
	if e.opts.Trace == nil {
		return
	}
	// Best-effort: a trace write failure must not kill the run.
	_ = e.opts.Trace.Write(&StepEvent{
		MacroID:   m.ID,
		Pass:      pass,
		StepIndex: index,
		Kind:      string(step.Kind),
		Status:    status,
		Error:     errMsg,
		At:        time.Now(),
	})
}
