package engine

import "time"

// sleepInterruptible waits for d, returning early as soon as a stop is
// observed. It sleeps in PollInterval-sized chunks and re-checks the
// shared state on each wake-up, so worst-case stop latency is one chunk
// (100ms by default) rather than the remaining wait.
//
// Chunked polling is deliberate: it needs no runtime- or
// platform-specific cancellation primitive, at the cost of
// coarse-grained latency. Paused time does not consume the wait: a
// delay paused halfway resumes with its remainder intact.
//
// Returns false when a stop was observed, true when the full duration
// elapsed. Zero and negative durations are a no-op wait.
func (e *Engine) sleepInterruptible(d time.Duration) bool {
	remaining := d
	for remaining > 0 {
		if e.stopFlag.Load() {
			return false
		}
		if st, _ := e.machine.current(); st == StatePaused {
			time.Sleep(e.opts.PollInterval)
			continue
		}
		chunk := e.opts.PollInterval
		if chunk > remaining {
			chunk = remaining
		}
		time.Sleep(chunk)
		remaining -= chunk
	}
	return !e.stopFlag.Load()
}

// waitIfPaused blocks while the engine is paused, polling for a resume
// or a stop. Returns false when a stop was observed.
func (e *Engine) waitIfPaused() bool {
	for {
		if e.stopFlag.Load() {
			return false
		}
		if st, _ := e.machine.current(); st != StatePaused {
			return true
		}
		time.Sleep(e.opts.PollInterval)
	}
}
