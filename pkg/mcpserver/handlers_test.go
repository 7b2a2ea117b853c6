package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

const validMacroYAML = `apiVersion: macro/v1
macro:
  name: greet
  steps:
    - kind: key_sequence
      text: hello
    - kind: key_press
      key: enter
`

func writeMacro(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "macro.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestHandleValidate_MissingPath(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{}

	result, err := HandleValidate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for missing path")
	}
}

func TestHandleValidate_ValidMacro(t *testing.T) {
	path := writeMacro(t, validMacroYAML)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": path}

	result, err := HandleValidate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Errorf("expected success, got: %s", resultText(result))
	}
	if !strings.Contains(resultText(result), "greet") {
		t.Errorf("expected macro name in result, got: %s", resultText(result))
	}
}

func TestHandleValidate_InvalidMacro(t *testing.T) {
	path := writeMacro(t, `apiVersion: macro/v1
macro:
  name: broken
  steps:
    - kind: mouse_click
`)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": path}

	result, err := HandleValidate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for macro missing button")
	}
}

func TestHandleSchema(t *testing.T) {
	req := mcp.CallToolRequest{}

	result, err := HandleSchema(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Error("expected success for schema export")
	}
	if !strings.Contains(resultText(result), "key_press") {
		t.Error("expected step kinds in exported schema")
	}
}

func TestHandleRun_DryRunDefault(t *testing.T) {
	path := writeMacro(t, validMacroYAML)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": path}

	result, err := HandleRun(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("expected success, got: %s", resultText(result))
	}
	text := resultText(result)
	if !strings.Contains(text, `"mode": "dry-run"`) {
		t.Errorf("expected dry-run mode in response, got: %s", text)
	}
	if !strings.Contains(text, `"status": "completed"`) {
		t.Errorf("expected completed status, got: %s", text)
	}
	if !strings.Contains(text, "[dry-run] type hello") {
		t.Errorf("expected recorded dry-run output, got: %s", text)
	}
}

func TestHandleRun_UnknownMode(t *testing.T) {
	path := writeMacro(t, validMacroYAML)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": path, "mode": "yolo"}

	result, err := HandleRun(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for unknown mode")
	}
}
