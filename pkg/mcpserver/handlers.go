package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/keyfire/keyfire/pkg/engine"
	"github.com/keyfire/keyfire/pkg/input"
	"github.com/keyfire/keyfire/pkg/schema"
)

// HandleValidate implements the keyfire/validate MCP tool.
func HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}

	doc, errs := schema.ValidateFile(path)
	if schema.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}
	return textResult(fmt.Sprintf("✓ %s is valid (%d steps)", doc.Macro.Name, len(doc.Macro.Steps))), nil
}

// HandleSchema implements the keyfire/schema MCP tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := schema.GenerateJSONSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// HandleRun implements the keyfire/run MCP tool.
func HandleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}
	mode, _ := args["mode"].(string)
	if mode == "" {
		mode = "dry-run" // safe default for AI agents
	}

	doc, errs := schema.ValidateFile(path)
	if schema.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}
	m := &doc.Macro

	var out bytes.Buffer
	var sink input.Sink
	switch mode {
	case "dry-run":
		sink = &input.Recorder{Out: &out}
	case "real":
		sink = input.NewSystem()
	default:
		return errorResult(fmt.Sprintf("unknown mode %q: use 'real' or 'dry-run'", mode)), nil
	}

	eng := engine.New(sink, engine.Callbacks{}, engine.Options{})
	if err := eng.Submit(m); err != nil {
		return errorResult(rejectionMessage(err)), nil
	}
	eng.Wait()

	rep := eng.Report()
	response := map[string]any{
		"status":   rep.State,
		"duration": rep.Duration().String(),
		"mode":     mode,
		"passes":   rep.PassesCompleted,
		"steps":    rep.StepsExecuted,
	}
	if rep.Reason != "" {
		response["error"] = rep.Reason
	}
	if out.Len() > 0 {
		response["output"] = out.String()
	}

	data, _ := json.MarshalIndent(response, "", "  ")

	isErr := rep.State == engine.StateError.String()
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: isErr,
	}, nil
}

// rejectionMessage renders a submission rejection for the tool caller.
func rejectionMessage(err error) string {
	var vr *engine.ValidationRejection
	if errors.As(err, &vr) {
		var msgs []string
		for _, e := range vr.Errors {
			msgs = append(msgs, e.Message)
		}
		return "rejected: " + strings.Join(msgs, "; ")
	}
	var rl *engine.RepeatLimitError
	if errors.As(err, &rl) {
		return fmt.Sprintf("rejected: repeat %d exceeds limit %d", rl.Requested, rl.Allowed)
	}
	return "rejected: " + err.Error()
}

func formatErrors(errs []*schema.ValidationError) string {
	var msgs []string
	for _, e := range errs {
		if e.Severity == "error" {
			msgs = append(msgs, fmt.Sprintf("[%s] %s", e.Phase, e.Message))
		}
	}
	return strings.Join(msgs, "; ")
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
