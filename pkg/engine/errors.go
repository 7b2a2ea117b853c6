package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/keyfire/keyfire/pkg/schema"
)

// Submission rejections. These are synchronous, non-fatal to the
// engine, and never reported through the callback surface — a UI can
// tell "fix your macro" apart from "something went wrong while running
// it" by the channel the error arrived on.
var (
	// ErrRejectedDisabled means the macro's enabled flag is false.
	ErrRejectedDisabled = errors.New("macro is disabled")

	// ErrRejectedBusy means another macro is already in flight on this
	// engine. Submissions are rejected, not queued.
	ErrRejectedBusy = errors.New("another macro is already running")
)

// ValidationRejection carries the complete list of validator findings
// for a macro rejected at submission time.
type ValidationRejection struct {
	Errors []*schema.ValidationError
}

func (e *ValidationRejection) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Message
	}
	return fmt.Sprintf("macro failed validation: %s", strings.Join(msgs, "; "))
}

// RepeatLimitError reports a repeat count over the resolved safety
// ceiling. The check runs before any state transition, so a rejected
// macro never touches the running state.
type RepeatLimitError struct {
	Requested int
	Allowed   int
}

func (e *RepeatLimitError) Error() string {
	return fmt.Sprintf("repeat %d exceeds the allowed maximum %d", e.Requested, e.Allowed)
}
