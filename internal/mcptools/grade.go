package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/TobiSchelling/fishgrade/internal/database"
	"github.com/TobiSchelling/fishgrade/internal/organoleptic"
	"github.com/TobiSchelling/fishgrade/internal/pipeline"
)

// gradeResult is the JSON shape returned by the grading tools.
type gradeResult struct {
	ID                int64                   `json:"id,omitempty"`
	Label             string                  `json:"label,omitempty"`
	Parameters        organoleptic.Parameters `json:"parameters"`
	Freshness         organoleptic.Freshness  `json:"freshness"`
	InvalidParameters []string                `json:"invalid_parameters,omitempty"`
}

func newGradeResult(rec *database.SampleRecord) gradeResult {
	r := gradeResult{
		ID:                rec.ID,
		Parameters:        rec.Parameters,
		Freshness:         rec.Freshness,
		InvalidParameters: organoleptic.ListInvalidParameters(rec.Parameters),
	}
	if rec.Label != nil {
		r.Label = *rec.Label
	}
	return r
}

// GradeTool handles the fish_grade MCP tool.
type GradeTool struct {
	pipe *pipeline.Pipeline
}

// NewGradeTool creates a GradeTool.
func NewGradeTool(pipe *pipeline.Pipeline) *GradeTool {
	return &GradeTool{pipe: pipe}
}

// Definition returns the MCP tool definition for fish_grade.
func (t *GradeTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Score fish freshness from six organoleptic grades (1-9). A grade of 4 is not " +
				"recognized and is left out of the average. Returns score and category " +
				"(Prima, Baik, Sedang, Busuk or Invalid) as JSON.",
		),
	}
	for _, p := range organoleptic.AllParameters {
		opts = append(opts, mcp.WithNumber(strings.ToLower(string(p)),
			mcp.Required(),
			mcp.Description(fmt.Sprintf("%s (%s) grade, 1-9", p, p.Label())),
		))
	}
	opts = append(opts,
		mcp.WithString("label",
			mcp.Description("Optional sample label, e.g. a crate or batch number"),
		),
		mcp.WithBoolean("save",
			mcp.Description("Store the sample in the fishgrade database (default: false)"),
		),
	)
	return mcp.NewTool("fish_grade", opts...)
}

// Handle processes the fish_grade tool call.
func (t *GradeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p organoleptic.Parameters
	for _, param := range organoleptic.AllParameters {
		key := strings.ToLower(string(param))
		v := intArg(req, key, 0)
		if v == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("'%s' is required and must be 1-9", key)), nil
		}
		p = p.With(param, v)
	}
	label := req.GetString("label", "")

	if !boolArg(req, "save", false) {
		s, err := organoleptic.NewSample(p)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		r := gradeResult{
			Label:             label,
			Parameters:        p,
			Freshness:         s.Freshness(),
			InvalidParameters: s.InvalidParameters(),
		}
		return jsonResult(r)
	}

	rec, err := t.pipe.Grade(label, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to grade: %v", err)), nil
	}
	return jsonResult(newGradeResult(rec))
}

// SetGradeTool handles the fish_set_grade MCP tool.
type SetGradeTool struct {
	pipe *pipeline.Pipeline
}

// NewSetGradeTool creates a SetGradeTool.
func NewSetGradeTool(pipe *pipeline.Pipeline) *SetGradeTool {
	return &SetGradeTool{pipe: pipe}
}

// Definition returns the MCP tool definition for fish_set_grade.
func (t *SetGradeTool) Definition() mcp.Tool {
	return mcp.NewTool("fish_set_grade",
		mcp.WithDescription(
			"Change one grade of a stored sample. Score and category are recomputed together. Returns JSON.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Sample ID"),
		),
		mcp.WithString("parameter",
			mcp.Required(),
			mcp.Description("Eye, Gill, Slime, Flesh, Odor or Texture (Indonesian names also accepted)"),
		),
		mcp.WithNumber("value",
			mcp.Required(),
			mcp.Description("New grade, 1-9"),
		),
	)
}

// Handle processes the fish_set_grade tool call.
func (t *SetGradeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := intArg(req, "id", 0)
	if id <= 0 {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	param, err := organoleptic.ParseParameter(req.GetString("parameter", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value := intArg(req, "value", 0)

	rec, err := t.pipe.EditSample(int64(id), param, value)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set grade: %v", err)), nil
	}
	return jsonResult(newGradeResult(rec))
}
