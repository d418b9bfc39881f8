package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/TobiSchelling/fishgrade/internal/pipeline"
)

// AnalyzeTool handles the fish_analyze MCP tool.
type AnalyzeTool struct {
	pipe *pipeline.Pipeline
}

// NewAnalyzeTool creates an AnalyzeTool.
func NewAnalyzeTool(pipe *pipeline.Pipeline) *AnalyzeTool {
	return &AnalyzeTool{pipe: pipe}
}

// Definition returns the MCP tool definition for fish_analyze.
func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("fish_analyze",
		mcp.WithDescription(
			"Interpret an AI description of a fish: extract species, confidence, characteristics "+
				"and labeled sections, then score the analysis quality from 0 to 100. Returns JSON.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The AI response, as plain text, markdown or a JSON envelope"),
		),
		mcp.WithString("source",
			mcp.Description("Where the response came from (default: mcp)"),
		),
		mcp.WithBoolean("save",
			mcp.Description("Store the analysis in the fishgrade database (default: false)"),
		),
	)
}

// Handle processes the fish_analyze tool call.
func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if text == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}

	if !boolArg(req, "save", false) {
		report := pipeline.Interpret(text)
		return jsonResult(report)
	}

	report, err := t.pipe.Analyze(req.GetString("source", "mcp"), text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to analyze: %v", err)), nil
	}
	return jsonResult(report)
}
