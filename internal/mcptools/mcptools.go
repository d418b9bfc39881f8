// Package mcptools exposes fishgrade over the Model Context Protocol so an
// assistant can clean, interpret and grade without leaving the chat.
//
// Each tool is a struct with its dependencies injected via constructor,
// a Definition() returning the mcp.Tool schema and a Handle() method.
package mcptools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/TobiSchelling/fishgrade/internal/config"
	"github.com/TobiSchelling/fishgrade/internal/pipeline"
)

// NewServer creates an MCP server with every fishgrade tool registered.
func NewServer(version string, cfg *config.Config, pipe *pipeline.Pipeline) *server.MCPServer {
	s := server.NewMCPServer(
		"fishgrade",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	cleanTool := NewCleanTool(cfg.Cleaning)
	s.AddTool(cleanTool.Definition(), cleanTool.Handle)

	analyzeTool := NewAnalyzeTool(pipe)
	s.AddTool(analyzeTool.Definition(), analyzeTool.Handle)

	gradeTool := NewGradeTool(pipe)
	s.AddTool(gradeTool.Definition(), gradeTool.Handle)

	setGradeTool := NewSetGradeTool(pipe)
	s.AddTool(setGradeTool.Definition(), setGradeTool.Handle)

	return s
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
