package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ordinex/ordinex/internal/detect"
	"github.com/ordinex/ordinex/internal/pipeline"
	"github.com/ordinex/ordinex/internal/store"
)

func newPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	s, err := store.Open(store.MemoryPath)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	p, err := pipeline.New(pipeline.Options{Store: s})
	if err != nil {
		t.Fatalf("pipeline.New() error = %v", err)
	}
	return p
}

func makeReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func stepsJSON(n int) []any {
	steps := make([]any, n)
	for i := range steps {
		steps[i] = map[string]any{
			"step_id":           fmt.Sprintf("s%d", i+1),
			"description":       fmt.Sprintf("Do part %d", i+1),
			"expected_evidence": []any{fmt.Sprintf("part %d verified", i+1)},
		}
	}
	return steps
}

func TestDefinitions(t *testing.T) {
	p := newPipeline(t)

	tests := []struct {
		def      mcp.Tool
		name     string
		required []string
	}{
		{NewDetectTool(p).Definition(), DetectToolName, []string{"steps"}},
		{NewBreakdownTool(p).Definition(), BreakdownToolName, []string{"plan_id", "steps"}},
		{NewGetTool(p).Definition(), GetToolName, []string{"breakdown_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.def.Name != tt.name {
				t.Errorf("name = %q, want %q", tt.def.Name, tt.name)
			}
			for _, r := range tt.required {
				if _, ok := tt.def.InputSchema.Properties[r]; !ok {
					t.Errorf("missing %q property", r)
				}
				found := false
				for _, got := range tt.def.InputSchema.Required {
					if got == r {
						found = true
					}
				}
				if !found {
					t.Errorf("%q should be required", r)
				}
			}
		})
	}
}

func TestDetectTool(t *testing.T) {
	tool := NewDetectTool(newPipeline(t))

	result, err := tool.Handle(context.Background(), makeReq(map[string]any{
		"steps": stepsJSON(17),
		"goal":  "Add OAuth login to the mobile app",
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", resultText(result))
	}

	var got detect.Result
	if err := json.Unmarshal([]byte(resultText(result)), &got); err != nil {
		t.Fatalf("result is not a detection: %v", err)
	}
	if !got.LargePlan || got.Metrics.StepCount != 17 {
		t.Errorf("detection = %+v", got)
	}
	if !got.HasRisk("security") {
		t.Errorf("riskFlags = %v, want security", got.Metrics.RiskFlags)
	}
}

func TestDetectToolMissingSteps(t *testing.T) {
	tool := NewDetectTool(newPipeline(t))

	for _, args := range []map[string]any{
		{"goal": "x"},
		{"steps": "not an array"},
	} {
		result, err := tool.Handle(context.Background(), makeReq(args))
		if err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		if !result.IsError || !strings.Contains(resultText(result), "'steps'") {
			t.Errorf("args %v: result = %q", args, resultText(result))
		}
	}
}

func TestBreakdownAndGetTools(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	result, err := NewBreakdownTool(p).Handle(ctx, makeReq(map[string]any{
		"plan_id":      "plan-mcp",
		"plan_version": float64(3),
		"steps":        stepsJSON(20),
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", resultText(result))
	}

	var out pipeline.Outcome
	if err := json.Unmarshal([]byte(resultText(result)), &out); err != nil {
		t.Fatalf("result is not an outcome: %v", err)
	}
	if out.Breakdown.PlanVersion != 3 || len(out.Breakdown.Missions) != 5 || !out.Persisted {
		t.Errorf("outcome = %+v", out)
	}

	got, err := NewGetTool(p).Handle(ctx, makeReq(map[string]any{"breakdown_id": out.Breakdown.BreakdownID}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got.IsError || !strings.Contains(resultText(got), out.Breakdown.BreakdownID) {
		t.Errorf("get result = %q", resultText(got))
	}
}

func TestBreakdownToolForce(t *testing.T) {
	result, err := NewBreakdownTool(newPipeline(t)).Handle(context.Background(), makeReq(map[string]any{
		"plan_id": "small",
		"steps":   stepsJSON(3),
		"force":   true,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	var out pipeline.Outcome
	if err := json.Unmarshal([]byte(resultText(result)), &out); err != nil {
		t.Fatalf("result is not an outcome: %v (%s)", err, resultText(result))
	}
	if !out.Forced || len(out.Breakdown.Missions) != 2 || out.Breakdown.PlanVersion != 1 {
		t.Errorf("outcome = %+v", out)
	}
}

func TestToolErrors(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	tests := []struct {
		name string
		tool interface {
			Handle(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		}
		args map[string]any
		want string
	}{
		{"missing plan id", NewBreakdownTool(p), map[string]any{"steps": stepsJSON(2)}, "'plan_id' is required"},
		{"empty plan", NewBreakdownTool(p), map[string]any{"plan_id": "p", "steps": []any{}}, "MISSION-001"},
		{"too large", NewBreakdownTool(p), map[string]any{"plan_id": "p", "steps": stepsJSON(49)}, "PLAN-003"},
		{"zero version", NewBreakdownTool(p), map[string]any{"plan_id": "p", "plan_version": float64(0), "steps": stepsJSON(2)}, "PLAN-002"},
		{"negative version", NewBreakdownTool(p), map[string]any{"plan_id": "p", "plan_version": float64(-1), "steps": stepsJSON(2)}, "PLAN-002"},
		{"fractional version", NewBreakdownTool(p), map[string]any{"plan_id": "p", "plan_version": 1.5, "steps": stepsJSON(2)}, "PLAN-002"},
		{"huge version", NewBreakdownTool(p), map[string]any{"plan_id": "p", "plan_version": 1e20, "steps": stepsJSON(2)}, "PLAN-002"},
		{"unknown breakdown", NewGetTool(p), map[string]any{"breakdown_id": "bd-none"}, "MISSION-003"},
		{"missing breakdown id", NewGetTool(p), map[string]any{}, "'breakdown_id' is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.tool.Handle(ctx, makeReq(tt.args))
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if !result.IsError {
				t.Fatalf("expected tool error, got %q", resultText(result))
			}
			if !strings.Contains(resultText(result), tt.want) {
				t.Errorf("error = %q, want it to contain %q", resultText(result), tt.want)
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	if NewServer(newPipeline(t), "test") == nil {
		t.Fatal("NewServer() returned nil")
	}
}
