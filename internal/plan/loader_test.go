package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ordinex/ordinex/internal/errors"
)

func TestLoadDocument(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantErr  errors.ErrorCode
		validate func(*testing.T, *Document)
	}{
		{
			name: "valid yaml plan",
			file: "plan.yaml",
			content: `plan_id: plan-1
plan_version: 2
goal: Add password reset
steps:
  - step_id: step_1
    description: Add reset token table
    expected_evidence:
      - migration applied
  - step_id: step_2
    description: Send reset email
`,
			validate: func(t *testing.T, d *Document) {
				if d.PlanID != "plan-1" || d.Version != 2 {
					t.Errorf("identity = (%s, %d), want (plan-1, 2)", d.PlanID, d.Version)
				}
				if len(d.Steps) != 2 {
					t.Fatalf("Steps length = %d, want 2", len(d.Steps))
				}
				if d.Steps[0].ExpectedEvidence[0] != "migration applied" {
					t.Errorf("evidence = %v", d.Steps[0].ExpectedEvidence)
				}
			},
		},
		{
			name: "valid json plan",
			file: "plan.json",
			content: `{"plan_id":"p","plan_version":1,"goal":"g",
  "steps":[{"step_id":"a","description":"first"},{"step_id":"b","description":"second"}]}`,
			validate: func(t *testing.T, d *Document) {
				if got := strings.Join(StepIDs(d.Steps), ","); got != "a,b" {
					t.Errorf("StepIDs = %s, want a,b", got)
				}
			},
		},
		{
			name:    "unknown extension falls back to yaml",
			file:    "plan.txt",
			content: "plan_id: p\nplan_version: 1\ngoal: g\nsteps: []\n",
			validate: func(t *testing.T, d *Document) {
				if d.PlanID != "p" {
					t.Errorf("PlanID = %q, want p", d.PlanID)
				}
			},
		},
		{
			name:    "duplicate step ids rejected",
			file:    "dup.yaml",
			content: "plan_id: p\nplan_version: 1\nsteps:\n  - step_id: a\n  - step_id: a\n",
			wantErr: errors.ErrCodePlanInvalid,
		},
		{
			name:    "missing plan id rejected",
			file:    "noid.json",
			content: `{"plan_version":1,"steps":[]}`,
			wantErr: errors.ErrCodePlanInvalid,
		},
		{
			name:    "zero version rejected",
			file:    "v0.json",
			content: `{"plan_id":"p","plan_version":0,"steps":[]}`,
			wantErr: errors.ErrCodePlanInvalid,
		},
		{
			name:    "malformed json",
			file:    "bad.json",
			content: `{"plan_id":`,
			wantErr: errors.ErrCodePlanUnmarshal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("write fixture: %v", err)
			}

			doc, err := LoadDocument(path)
			if tt.wantErr != "" {
				if !errors.HasCode(err, tt.wantErr) {
					t.Fatalf("LoadDocument() error = %v, want code %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadDocument() unexpected error: %v", err)
			}
			tt.validate(t, doc)
		})
	}
}

func TestLoadDocumentMissingFile(t *testing.T) {
	_, err := LoadDocument(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.HasCode(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("LoadDocument() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestSaveDocumentRoundTrip(t *testing.T) {
	doc := &Document{
		PlanID:  "plan-rt",
		Version: 3,
		Goal:    "Ship checkout",
		Steps: []Step{
			{ID: "s1", Description: "Add cart", ExpectedEvidence: []string{"cart test passes"}},
			{ID: "s2", Description: "Add payment form"},
		},
	}

	for _, name := range []string{"nested/plan.yaml", "plan.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := SaveDocument(doc, path); err != nil {
				t.Fatalf("SaveDocument() error = %v", err)
			}

			loaded, err := LoadDocument(path)
			if err != nil {
				t.Fatalf("LoadDocument() error = %v", err)
			}
			if loaded.Goal != doc.Goal || len(loaded.Steps) != 2 || loaded.Steps[1].ID != "s2" {
				t.Errorf("round trip mismatch: %+v", loaded)
			}
		})
	}
}

func TestValidateSteps(t *testing.T) {
	tests := []struct {
		name    string
		steps   []Step
		wantErr bool
	}{
		{"empty list is structurally valid", nil, false},
		{"unique ids", []Step{{ID: "a"}, {ID: "b"}}, false},
		{"empty id", []Step{{ID: ""}}, true},
		{"whitespace id", []Step{{ID: "a b"}}, true},
		{"duplicate id", []Step{{ID: "a"}, {ID: "b"}, {ID: "a"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSteps(tt.steps)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSteps() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.HasCode(err, errors.ErrCodePlanInvalid) {
				t.Errorf("error code = %s, want %s", errors.CodeOf(err), errors.ErrCodePlanInvalid)
			}
		})
	}
}

func TestStepText(t *testing.T) {
	s := Step{ID: "a", Description: "Add login", ExpectedEvidence: []string{"test passes", "docs updated"}}
	if got := s.Text(); got != "Add login\ntest passes\ndocs updated" {
		t.Errorf("Text() = %q", got)
	}
}
