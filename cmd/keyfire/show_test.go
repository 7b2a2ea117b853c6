package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/keyfire/keyfire/pkg/schema"
)

// TestStepSummaryHandlesMissingFields verifies rendering never
// dereferences absent optional fields: a loadable but invalid document
// must display, not crash.
func TestStepSummaryHandlesMissingFields(t *testing.T) {
	cases := []struct {
		name string
		step schema.Step
	}{
		{"mouse_move without coordinates", schema.Step{Kind: schema.KindMouseMove}},
		{"mouse_scroll without amount", schema.Step{Kind: schema.KindMouseScroll}},
		{"mouse_click without position", schema.Step{Kind: schema.KindMouseClick, Button: "left"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_ = stepSummary(&tc.step) // must not panic
		})
	}
}

// TestRunShowUnvalidatedDocument drives the show command over a file
// that parses but fails validation.
func TestRunShowUnvalidatedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macro.yaml")
	content := `apiVersion: macro/v1
macro:
  name: partial
  steps:
    - kind: mouse_move
    - kind: mouse_scroll
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := runShow(showCmd, []string{path}); err != nil {
		t.Errorf("runShow error: %v", err)
	}
}
