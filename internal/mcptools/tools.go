// Package mcptools exposes detection and mission breakdown as MCP tools so
// editor agents can check a plan before executing it.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ordinex/ordinex/internal/errors"
	"github.com/ordinex/ordinex/internal/pipeline"
	"github.com/ordinex/ordinex/internal/plan"
)

// Tool names
const (
	DetectToolName    = "ordinex_detect_large_plan"
	BreakdownToolName = "ordinex_generate_mission_breakdown"
	GetToolName       = "ordinex_get_mission_breakdown"
)

// NewServer registers every tool on a new MCP server
func NewServer(p *pipeline.Pipeline, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"ordinex",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	detectTool := NewDetectTool(p)
	s.AddTool(detectTool.Definition(), detectTool.Handle)

	breakdownTool := NewBreakdownTool(p)
	s.AddTool(breakdownTool.Definition(), breakdownTool.Handle)

	getTool := NewGetTool(p)
	s.AddTool(getTool.Definition(), getTool.Handle)

	return s
}

const instructions = `Ordinex checks whether an implementation plan is too large or risky to run as one unit.
Call ordinex_detect_large_plan with the plan steps and goal first. When largePlan is true,
call ordinex_generate_mission_breakdown and execute the missions in dependency order.`

var stepItems = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"step_id":           map[string]any{"type": "string"},
		"description":       map[string]any{"type": "string"},
		"expected_evidence": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []string{"step_id"},
}

// DetectTool handles ordinex_detect_large_plan
type DetectTool struct {
	pipeline *pipeline.Pipeline
}

// NewDetectTool creates a DetectTool
func NewDetectTool(p *pipeline.Pipeline) *DetectTool {
	return &DetectTool{pipeline: p}
}

// Definition returns the MCP tool definition
func (t *DetectTool) Definition() mcp.Tool {
	return mcp.NewTool(DetectToolName,
		mcp.WithDescription("Score a plan's size and risk. Returns largePlan, a 0-100 score, "+
			"human-readable reasons and the raw metrics (risk flags, domains, ambiguity phrases)."),
		mcp.WithArray("steps",
			mcp.Required(),
			mcp.Description("Ordered plan steps"),
			mcp.Items(stepItems),
		),
		mcp.WithString("goal",
			mcp.Description("Free-text goal of the plan"),
		),
		mcp.WithString("plan_id",
			mcp.Description("Plan identifier, used only for tracing"),
		),
	)
}

// Handle processes the tool call
func (t *DetectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	steps, err := stepsArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc := &plan.Document{
		PlanID: req.GetString("plan_id", ""),
		Goal:   req.GetString("goal", ""),
		Steps:  steps,
	}
	return jsonResult(t.pipeline.Detect(ctx, doc))
}

// BreakdownTool handles ordinex_generate_mission_breakdown
type BreakdownTool struct {
	pipeline *pipeline.Pipeline
}

// NewBreakdownTool creates a BreakdownTool
func NewBreakdownTool(p *pipeline.Pipeline) *BreakdownTool {
	return &BreakdownTool{pipeline: p}
}

// Definition returns the MCP tool definition
func (t *BreakdownTool) Definition() mcp.Tool {
	return mcp.NewTool(BreakdownToolName,
		mcp.WithDescription("Partition a plan into at most 8 missions of at most 6 steps each, "+
			"with scope, acceptance criteria, size, risk and dependencies. Identical input "+
			"always yields identical breakdown and mission IDs."),
		mcp.WithString("plan_id",
			mcp.Required(),
			mcp.Description("Stable plan identifier"),
		),
		mcp.WithNumber("plan_version",
			mcp.Description("Plan version, increased by the caller on every revision (default 1)"),
		),
		mcp.WithArray("steps",
			mcp.Required(),
			mcp.Description("Ordered plan steps, at most 48"),
			mcp.Items(stepItems),
		),
		mcp.WithString("goal",
			mcp.Description("Free-text goal of the plan"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Break the plan down even when it is not flagged as large"),
		),
	)
}

// Handle processes the tool call
func (t *BreakdownTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID := strings.TrimSpace(req.GetString("plan_id", ""))
	if planID == "" {
		return mcp.NewToolResultError("'plan_id' is required"), nil
	}
	steps, err := stepsArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	version, err := versionArg(req)
	if err != nil {
		return errorResult(err), nil
	}

	doc := &plan.Document{
		PlanID:  planID,
		Version: version,
		Goal:    req.GetString("goal", ""),
		Steps:   steps,
	}

	out, err := t.pipeline.Breakdown(ctx, doc, req.GetBool("force", false))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out)
}

// GetTool handles ordinex_get_mission_breakdown
type GetTool struct {
	pipeline *pipeline.Pipeline
}

// NewGetTool creates a GetTool
func NewGetTool(p *pipeline.Pipeline) *GetTool {
	return &GetTool{pipeline: p}
}

// Definition returns the MCP tool definition
func (t *GetTool) Definition() mcp.Tool {
	return mcp.NewTool(GetToolName,
		mcp.WithDescription("Fetch a previously generated breakdown by its breakdownId"),
		mcp.WithString("breakdown_id",
			mcp.Required(),
			mcp.Description("The breakdownId returned by ordinex_generate_mission_breakdown"),
		),
	)
}

// Handle processes the tool call
func (t *GetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("breakdown_id", ""))
	if id == "" {
		return mcp.NewToolResultError("'breakdown_id' is required"), nil
	}

	rec, err := t.pipeline.Get(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(rec)
}

// stepsArg decodes the "steps" argument through JSON so it accepts the
// same shape as plan files.
func stepsArg(req mcp.CallToolRequest) ([]plan.Step, error) {
	raw, ok := req.GetArguments()["steps"]
	if !ok || raw == nil {
		return nil, fmt.Errorf("'steps' is required")
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("'steps' could not be read: %v", err)
	}
	var steps []plan.Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("'steps' must be an array of {step_id, description, expected_evidence}: %v", err)
	}
	return steps, nil
}

// versionArg reads "plan_version", defaulting to 1. Fractional and
// out-of-range values are rejected with PLAN-002.
func versionArg(req mcp.CallToolRequest) (int, error) {
	v := req.GetFloat("plan_version", 1)
	if v != math.Trunc(v) || v < 1 || v > math.MaxInt32 {
		return 0, errors.NewPlanInvalidError(fmt.Sprintf("plan_version must be a whole number between 1 and %d, got %v", math.MaxInt32, v))
	}
	return int(v), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult reports err to the agent; coded errors carry their
// suggestions in Error().
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}
