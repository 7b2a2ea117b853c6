package engine

import (
	"github.com/rs/zerolog"

	"github.com/keyfire/keyfire/pkg/schema"
)

// Callbacks is the event surface the engine notifies as a macro runs.
// All callbacks are invoked from whichever goroutine is executing the
// macro (inline or background); the engine guarantees no thread
// affinity, and callbacks must return promptly since a slow callback
// slows the run.
type Callbacks struct {
	// OnStep fires after each step completes, before the inter-step
	// wait. stepIndex is 1-based.
	OnStep func(stepIndex, totalSteps int)

	// OnCompleted fires exactly once when a macro finishes all repeats
	// without being stopped or erroring.
	OnCompleted func(m *schema.Macro)

	// OnError fires exactly once per failed execution with a
	// human-readable reason. Runtime errors only: step failures,
	// timeouts, input-sink errors. Submission rejections are reported
	// synchronously, never here.
	OnError func(msg string)
}

func (c Callbacks) step(index, total int) {
	if c.OnStep != nil {
		c.OnStep(index, total)
	}
}

func (c Callbacks) completed(m *schema.Macro) {
	if c.OnCompleted != nil {
		c.OnCompleted(m)
	}
}

func (c Callbacks) errored(msg string) {
	if c.OnError != nil {
		c.OnError(msg)
	}
}

// LogCallbacks adapts a zerolog logger to the callback surface, for
// callers that just want progress in the log stream.
func LogCallbacks(logger zerolog.Logger) Callbacks {
	return Callbacks{
		OnStep: func(stepIndex, totalSteps int) {
			logger.Debug().Int("step", stepIndex).Int("total", totalSteps).Msg("step completed")
		},
		OnCompleted: func(m *schema.Macro) {
			logger.Info().Str("macro", m.Name).Msg("macro completed")
		},
		OnError: func(msg string) {
			logger.Error().Str("reason", msg).Msg("macro failed")
		},
	}
}
