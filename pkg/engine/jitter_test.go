package engine

import (
	"testing"
	"time"

	"github.com/keyfire/keyfire/pkg/schema"
)

// TestJitterDurationBounds verifies every draw lands in [0, maxMs].
func TestJitterDurationBounds(t *testing.T) {
	const maxMs = 25
	for i := 0; i < 200; i++ {
		d := jitterDuration(maxMs)
		if d < 0 || d > maxMs*time.Millisecond {
			t.Fatalf("jitterDuration(%d) = %v, out of [0, %dms]", maxMs, d, maxMs)
		}
	}
}

// TestJitterDurationZero verifies non-positive bounds produce no jitter.
func TestJitterDurationZero(t *testing.T) {
	if d := jitterDuration(0); d != 0 {
		t.Errorf("jitterDuration(0) = %v, want 0", d)
	}
	if d := jitterDuration(-10); d != 0 {
		t.Errorf("jitterDuration(-10) = %v, want 0", d)
	}
}

// TestStepJitterPrecedence verifies the step-level bound wins over the
// macro-level one, and that macro jitter needs randomize_delay.
func TestStepJitterPrecedence(t *testing.T) {
	macroJitter := &schema.Macro{RandomizeDelay: true, DelayJitterMs: 10}

	// Step-level bound applies even without randomize_delay.
	plain := &schema.Macro{}
	s := &schema.Step{JitterMs: 5}
	for i := 0; i < 50; i++ {
		if d := stepJitter(plain, s); d > 5*time.Millisecond {
			t.Fatalf("step jitter %v exceeds step bound 5ms", d)
		}
	}

	// Macro-level bound applies when the step has none.
	bare := &schema.Step{}
	for i := 0; i < 50; i++ {
		if d := stepJitter(macroJitter, bare); d > 10*time.Millisecond {
			t.Fatalf("macro jitter %v exceeds macro bound 10ms", d)
		}
	}

	// No randomize_delay, no step bound: no jitter.
	noRandom := &schema.Macro{DelayJitterMs: 10}
	if d := stepJitter(noRandom, bare); d != 0 {
		t.Errorf("jitter = %v without randomize_delay, want 0", d)
	}
}
