// Package plan holds the plan documents produced by the upstream planner:
// a goal, a caller-managed identity and version, and an ordered list of steps.
package plan

import "github.com/ordinex/ordinex/internal/domain"

// Step is one atomic unit of a plan. Steps are never mutated by the
// detector or the mission generator.
type Step struct {
	ID               domain.StepID `json:"step_id" yaml:"step_id"`
	Description      string        `json:"description" yaml:"description"`
	ExpectedEvidence []string      `json:"expected_evidence,omitempty" yaml:"expected_evidence,omitempty"`
}

// Document is a complete plan as stored on disk or sent over the API.
type Document struct {
	PlanID  string `json:"plan_id" yaml:"plan_id"`
	Version int    `json:"plan_version" yaml:"plan_version"`
	Goal    string `json:"goal" yaml:"goal"`
	Steps   []Step `json:"steps" yaml:"steps"`
}

// StepIDs returns the step identifiers in plan order.
func StepIDs(steps []Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID.String()
	}
	return ids
}

// Text returns the description followed by the expected evidence,
// the text used when matching a step against keyword vocabularies.
func (s Step) Text() string {
	text := s.Description
	for _, e := range s.ExpectedEvidence {
		text += "\n" + e
	}
	return text
}
