// Package schema defines the Go struct types for the macro YAML document
// and provides strict YAML parsing.
package schema

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Document is the top-level YAML document wrapping a single macro.
type Document struct {
	APIVersion string `yaml:"apiVersion" json:"apiVersion" jsonschema:"required,enum=macro/v1"`
	Macro      Macro  `yaml:"macro"      json:"macro"      jsonschema:"required"`
}

// Macro is an ordered, repeatable sequence of input-simulation steps.
// Once loaded and validated it is treated as read-only for the duration
// of an execution; the engine never mutates it.
type Macro struct {
	ID          string `yaml:"id,omitempty"          json:"id,omitempty"`
	Name        string `yaml:"name"                  json:"name" jsonschema:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Enabled defaults to true when omitted. Disabled macros are rejected
	// at submission time before any state transition.
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`

	// Repeat is the number of full passes through Steps. Defaults to 1
	// when omitted from the document.
	Repeat int `yaml:"repeat,omitempty" json:"repeat,omitempty"`

	// RandomizeDelay enables macro-level jitter for steps that don't
	// carry their own jitter_ms.
	RandomizeDelay bool  `yaml:"randomize_delay,omitempty" json:"randomize_delay,omitempty"`
	DelayJitterMs  int64 `yaml:"delay_jitter_ms,omitempty" json:"delay_jitter_ms,omitempty"`

	// MaxRepeat overrides the global repeat ceiling for this macro.
	MaxRepeat int `yaml:"max_repeat,omitempty" json:"max_repeat,omitempty"`

	// ExecutionTimeout overrides the global wall-clock ceiling, in seconds.
	ExecutionTimeout int `yaml:"execution_timeout,omitempty" json:"execution_timeout,omitempty"`

	// Vars feed the expr environment for step `when:` conditions.
	Vars map[string]string `yaml:"vars,omitempty" json:"vars,omitempty"`

	Steps []Step `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// IsEnabled reports whether the macro may be executed. An omitted
// enabled field counts as enabled.
func (m *Macro) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// Timeout returns the per-macro timeout override as a duration, or zero
// when no override is set.
func (m *Macro) Timeout() time.Duration {
	if m.ExecutionTimeout <= 0 {
		return 0
	}
	return time.Duration(m.ExecutionTimeout) * time.Second
}

// StepKind is the closed set of step variants. The engine dispatches on
// it with an exhaustive switch, so adding a kind is a compile-time change.
type StepKind string

const (
	KindKeyPress    StepKind = "key_press"
	KindKeyDown     StepKind = "key_down"
	KindKeyUp       StepKind = "key_up"
	KindKeySequence StepKind = "key_sequence"
	KindMouseMove   StepKind = "mouse_move"
	KindMouseClick  StepKind = "mouse_click"
	KindMouseScroll StepKind = "mouse_scroll"
	KindDelay       StepKind = "delay"
)

// Kinds lists every known step kind.
var Kinds = []StepKind{
	KindKeyPress, KindKeyDown, KindKeyUp, KindKeySequence,
	KindMouseMove, KindMouseClick, KindMouseScroll, KindDelay,
}

// Valid reports whether k is a known step kind.
func (k StepKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Step is one atomic keyboard/mouse action or a timed delay. The kind
// determines which fields are meaningful; unused fields are ignored, not
// rejected, so documents written by older editors still load.
type Step struct {
	Kind StepKind `yaml:"kind" json:"kind" jsonschema:"required,enum=key_press,enum=key_down,enum=key_up,enum=key_sequence,enum=mouse_move,enum=mouse_click,enum=mouse_scroll,enum=delay"`

	// Key names the key for key_press/key_down/key_up.
	Key string `yaml:"key,omitempty" json:"key,omitempty"`

	// Text is the literal string typed by key_sequence.
	Text string `yaml:"text,omitempty" json:"text,omitempty"`

	// Button selects the mouse button for mouse_click.
	Button string `yaml:"button,omitempty" json:"button,omitempty" jsonschema:"enum=left,enum=right,enum=middle"`

	// X/Y are required for mouse_move and optional for mouse_click and
	// mouse_scroll (the pointer is moved first when both are present).
	X *int `yaml:"x,omitempty" json:"x,omitempty"`
	Y *int `yaml:"y,omitempty" json:"y,omitempty"`

	// ScrollAmount is the wheel delta for mouse_scroll; negative scrolls down.
	ScrollAmount *int `yaml:"scroll_amount,omitempty" json:"scroll_amount,omitempty"`

	// DurationMs is the wait length for delay steps and the hold length
	// for key_down steps (auto-release after the hold when > 0).
	DurationMs int64 `yaml:"duration_ms,omitempty" json:"duration_ms,omitempty"`

	// JitterMs adds a random extra delay in [0, jitter_ms] after the step.
	JitterMs int64 `yaml:"jitter_ms,omitempty" json:"jitter_ms,omitempty"`

	// When is an expr condition over macro vars plus the pass counters;
	// the step is skipped when it evaluates to false.
	When string `yaml:"when,omitempty" json:"when,omitempty"`
}

// Duration returns the step's duration_ms as a time.Duration.
func (s *Step) Duration() time.Duration {
	if s.DurationMs <= 0 {
		return 0
	}
	return time.Duration(s.DurationMs) * time.Millisecond
}

// HasPosition reports whether the step carries both coordinates.
func (s *Step) HasPosition() bool {
	return s.X != nil && s.Y != nil
}

// LoadFile reads and parses a macro YAML file with strict unknown-field
// rejection. Returns the parsed Document or an error.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open macro file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a macro document from an io.Reader with strict
// unknown-field rejection, then applies load-time defaults: a fresh
// UUID when id is empty, repeat=1 when repeat is omitted.
func Load(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode macro: %w", err)
	}

	if doc.Macro.ID == "" {
		doc.Macro.ID = uuid.NewString()
	}
	if doc.Macro.Repeat == 0 {
		doc.Macro.Repeat = 1
	}
	return &doc, nil
}
