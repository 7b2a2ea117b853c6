package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Validation error codes. The engine and UIs switch on these, so the set
// is closed: a rejected macro always maps to one of them.
const (
	CodeEmptyName            = "EmptyName"
	CodeNoSteps              = "NoSteps"
	CodeInvalidRepeat        = "InvalidRepeat"
	CodeInvalidTimeout       = "InvalidTimeout"
	CodeNegativeJitter       = "NegativeJitter"
	CodeMissingRequiredField = "MissingRequiredField"
	CodeUnknownKind          = "UnknownKind"
	CodeInvalidCondition     = "InvalidCondition"
)

// ValidationError represents a single validation error with location context.
type ValidationError struct {
	Code     string `json:"code,omitempty"` // domain error code, empty for structural/semantic
	Phase    string `json:"phase"`          // structural, semantic, domain
	Path     string `json:"path"`           // JSON-path-like location (e.g., "macro.steps[0].key")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// HasErrors reports whether errs contains at least one error-severity entry.
func HasErrors(errs []*ValidationError) bool {
	for _, e := range errs {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

// ValidateFile performs the full 3-phase validation pipeline on a macro file.
// Phase 1: Structural (strict YAML decode)
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (custom Go rules)
func ValidateFile(path string) (*Document, []*ValidationError) {
	var allErrors []*ValidationError

	doc, err := LoadFile(path)
	if err != nil {
		allErrors = append(allErrors, &ValidationError{
			Phase:    "structural",
			Message:  err.Error(),
			Severity: "error",
		})
		return nil, allErrors
	}

	allErrors = append(allErrors, validateSemantic(doc)...)
	allErrors = append(allErrors, ValidateMacro(&doc.Macro)...)

	if len(allErrors) > 0 {
		return doc, allErrors
	}
	return doc, nil
}

// validateSemantic validates the document against the generated JSON Schema.
func validateSemantic(doc *Document) []*ValidationError {
	data, err := json.Marshal(doc)
	if err != nil {
		return semanticFailure(fmt.Sprintf("marshal for schema validation: %v", err))
	}

	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return semanticFailure(fmt.Sprintf("generate schema: %v", err))
	}

	var schemaDoc interface{}
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return semanticFailure(fmt.Sprintf("unmarshal schema: %v", err))
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("macro-v1.json", schemaDoc); err != nil {
		return semanticFailure(fmt.Sprintf("add schema resource: %v", err))
	}
	sch, err := c.Compile("macro-v1.json")
	if err != nil {
		return semanticFailure(fmt.Sprintf("compile schema: %v", err))
	}

	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return semanticFailure(fmt.Sprintf("unmarshal document: %v", err))
	}

	if err := sch.Validate(instance); err != nil {
		var errs []*ValidationError
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			for _, cause := range flattenValidationErrors(ve) {
				errs = append(errs, &ValidationError{
					Phase:    "semantic",
					Path:     strings.Join(cause.InstanceLocation, "/"),
					Message:  fmt.Sprintf("%v", cause.ErrorKind),
					Severity: "error",
				})
			}
		} else {
			errs = semanticFailure(err.Error())
		}
		return errs
	}
	return nil
}

func semanticFailure(msg string) []*ValidationError {
	return []*ValidationError{{
		Phase:    "semantic",
		Message:  msg,
		Severity: "error",
	}}
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// ValidateMacro performs Phase 3 domain validation on a macro. It is a
// pure function: no side effects, no I/O, deterministic for a given
// input. It collects the complete list of violations in one pass rather
// than stopping at the first, so a UI can report everything at once.
func ValidateMacro(m *Macro) []*ValidationError {
	var errs []*ValidationError

	domainErr := func(code, path, msg string) {
		errs = append(errs, &ValidationError{
			Code:     code,
			Phase:    "domain",
			Path:     path,
			Message:  msg,
			Severity: "error",
		})
	}

	if strings.TrimSpace(m.Name) == "" {
		domainErr(CodeEmptyName, "macro.name", "macro name must not be blank")
	}

	if len(m.Steps) == 0 {
		domainErr(CodeNoSteps, "macro.steps", "macro must contain at least one step")
	}

	if m.Repeat < 1 {
		domainErr(CodeInvalidRepeat, "macro.repeat",
			fmt.Sprintf("repeat must be >= 1, got %d", m.Repeat))
	}
	if m.MaxRepeat < 0 {
		domainErr(CodeInvalidRepeat, "macro.max_repeat",
			fmt.Sprintf("max_repeat must be >= 0, got %d", m.MaxRepeat))
	}
	if m.ExecutionTimeout < 0 {
		domainErr(CodeInvalidTimeout, "macro.execution_timeout",
			fmt.Sprintf("execution_timeout must be >= 0 seconds, got %d", m.ExecutionTimeout))
	}
	if m.DelayJitterMs < 0 {
		domainErr(CodeNegativeJitter, "macro.delay_jitter_ms",
			fmt.Sprintf("delay_jitter_ms must be >= 0, got %d", m.DelayJitterMs))
	}

	for i, s := range m.Steps {
		prefix := fmt.Sprintf("macro.steps[%d]", i)

		if !s.Kind.Valid() {
			domainErr(CodeUnknownKind, prefix+".kind",
				fmt.Sprintf("unknown step kind %q", s.Kind))
			continue
		}

		missing := func(field string) {
			domainErr(CodeMissingRequiredField, prefix+"."+field,
				fmt.Sprintf("step %d (%s) requires %q", i, s.Kind, field))
		}

		switch s.Kind {
		case KindKeyPress, KindKeyDown, KindKeyUp:
			if s.Key == "" {
				missing("key")
			}
		case KindKeySequence:
			if s.Text == "" {
				missing("text")
			}
		case KindMouseMove:
			if s.X == nil {
				missing("x")
			}
			if s.Y == nil {
				missing("y")
			}
		case KindMouseClick:
			switch s.Button {
			case "left", "right", "middle":
			default:
				missing("button")
			}
		case KindMouseScroll:
			if s.ScrollAmount == nil {
				missing("scroll_amount")
			}
		case KindDelay:
			// duration_ms of zero is a legal no-op wait
		}

		if s.DurationMs < 0 {
			domainErr(CodeNegativeJitter, prefix+".duration_ms",
				fmt.Sprintf("duration_ms must be >= 0, got %d", s.DurationMs))
		}
		if s.JitterMs < 0 {
			domainErr(CodeNegativeJitter, prefix+".jitter_ms",
				fmt.Sprintf("jitter_ms must be >= 0, got %d", s.JitterMs))
		}

		if s.When != "" {
			// Compile against the same environment shape the engine
			// evaluates with: pass/repeat counters plus the macro vars.
			// A bare Compile would resolve `repeat` to the expr builtin
			// function and reject legitimate conditions.
			env := map[string]any{"pass": 0, "repeat": 1}
			for k, v := range m.Vars {
				env[k] = v
			}
			if _, err := expr.Compile(s.When, expr.Env(env), expr.AsBool()); err != nil {
				domainErr(CodeInvalidCondition, prefix+".when",
					fmt.Sprintf("invalid condition %q: %v", s.When, err))
			}
		}
	}

	return errs
}
