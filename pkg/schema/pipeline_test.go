package schema

import (
	"path/filepath"
	"strings"
	"testing"
)

// TestValidateFileAcceptsGoodMacro runs the full pipeline on a known
// good document.
func TestValidateFileAcceptsGoodMacro(t *testing.T) {
	doc, errs := ValidateFile(filepath.Join("testdata", "hello.yaml"))
	if HasErrors(errs) {
		t.Fatalf("expected no errors, got: %v", errs)
	}
	if doc.Macro.ID != "hello-world" {
		t.Errorf("ID = %q, want hello-world", doc.Macro.ID)
	}
	if len(doc.Macro.Steps) != 4 {
		t.Errorf("steps = %d, want 4", len(doc.Macro.Steps))
	}
}

// TestValidateFileCollectsAcrossPhases verifies a broken document
// surfaces its domain violations in a single batch.
func TestValidateFileCollectsAcrossPhases(t *testing.T) {
	_, errs := ValidateFile(filepath.Join("testdata", "bad.yaml"))
	if !HasErrors(errs) {
		t.Fatal("expected validation errors")
	}
	codes := map[string]bool{}
	for _, e := range errs {
		codes[e.Code] = true
	}
	for _, want := range []string{CodeEmptyName, CodeInvalidRepeat, CodeMissingRequiredField, CodeUnknownKind} {
		if !codes[want] {
			t.Errorf("missing expected code %s in %v", want, errs)
		}
	}
}

// TestValidateFileMissing reports a structural error for an absent file.
func TestValidateFileMissing(t *testing.T) {
	doc, errs := ValidateFile(filepath.Join("testdata", "missing.yaml"))
	if doc != nil {
		t.Error("expected nil document for missing file")
	}
	if len(errs) != 1 || errs[0].Phase != "structural" {
		t.Errorf("errs = %v, want one structural error", errs)
	}
}

// TestGenerateJSONSchema sanity-checks the exported schema.
func TestGenerateJSONSchema(t *testing.T) {
	data, err := GenerateJSONSchema()
	if err != nil {
		t.Fatalf("GenerateJSONSchema error: %v", err)
	}
	for _, want := range []string{"macro/v1", "key_press", "mouse_scroll"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("schema missing %q", want)
		}
	}
}
