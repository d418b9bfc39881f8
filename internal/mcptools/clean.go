package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/TobiSchelling/fishgrade/internal/config"
	"github.com/TobiSchelling/fishgrade/internal/interpret"
)

// CleanTool handles the fish_clean MCP tool.
type CleanTool struct {
	defaults config.Cleaning
}

// NewCleanTool creates a CleanTool whose unset options fall back to defaults.
func NewCleanTool(defaults config.Cleaning) *CleanTool {
	return &CleanTool{defaults: defaults}
}

// Definition returns the MCP tool definition for fish_clean.
func (t *CleanTool) Definition() mcp.Tool {
	return mcp.NewTool("fish_clean",
		mcp.WithDescription(
			"Clean AI-generated text: strip markdown, stray list symbols and blank lines, "+
				"and drop lines shorter than minimum_length characters.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to clean"),
		),
		mcp.WithBoolean("remove_markdown",
			mcp.Description("Remove markdown formatting (default from config)"),
		),
		mcp.WithBoolean("normalize_whitespace",
			mcp.Description("Collapse runs of spaces and tabs (default from config)"),
		),
		mcp.WithBoolean("remove_empty_lines",
			mcp.Description("Drop blank and short lines (default from config)"),
		),
		mcp.WithBoolean("remove_artifacts",
			mcp.Description("Remove stray *, #, | and leading bullets (default from config)"),
		),
		mcp.WithNumber("minimum_length",
			mcp.Description("Minimum characters a line needs to be kept (default from config)"),
		),
	)
}

// Handle processes the fish_clean tool call.
func (t *CleanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if text == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}

	opts := t.defaults.Options()
	opts.RemoveMarkdown = boolArg(req, "remove_markdown", opts.RemoveMarkdown)
	opts.NormalizeWhitespace = boolArg(req, "normalize_whitespace", opts.NormalizeWhitespace)
	opts.RemoveEmptyLines = boolArg(req, "remove_empty_lines", opts.RemoveEmptyLines)
	opts.RemoveArtifacts = boolArg(req, "remove_artifacts", opts.RemoveArtifacts)
	opts.MinimumLength = intArg(req, "minimum_length", opts.MinimumLength)

	return mcp.NewToolResultText(interpret.Clean(text, opts)), nil
}
