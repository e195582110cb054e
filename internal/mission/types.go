// Package mission partitions a plan's steps into a bounded set of
// missions with scope, acceptance criteria, estimates, risk and a
// dependency graph. Generation is deterministic: the same plan identity,
// goal, steps and detection result always yield the same breakdown.
package mission

import (
	"github.com/ordinex/ordinex/internal/domain"
)

// StepRef points back at one step of the source plan.
type StepRef struct {
	StepID           domain.StepID `json:"stepId" yaml:"stepId"`
	Description      string        `json:"description,omitempty" yaml:"description,omitempty"`
	ExpectedEvidence []string      `json:"expectedEvidence,omitempty" yaml:"expectedEvidence,omitempty"`
}

// Scope states what a mission covers and, always, something it does not.
type Scope struct {
	InScope    []string `json:"inScope" yaml:"inScope"`
	OutOfScope []string `json:"outOfScope" yaml:"outOfScope"`
}

// Estimate is the coarse size of a mission and how it was derived.
type Estimate struct {
	Size      domain.MissionSize `json:"size" yaml:"size"`
	Rationale string             `json:"rationale" yaml:"rationale"`
}

// Risk is the mission's risk level with optional notes.
type Risk struct {
	Level domain.RiskLevel `json:"level" yaml:"level"`
	Notes string           `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Mission is one schedulable slice of a plan.
type Mission struct {
	MissionID     string    `json:"missionId" yaml:"missionId"`
	Title         string    `json:"title" yaml:"title"`
	IncludedSteps []StepRef `json:"includedSteps" yaml:"includedSteps"`
	Dependencies  []string  `json:"dependencies" yaml:"dependencies"`
	Scope         Scope     `json:"scope" yaml:"scope"`
	Acceptance    []string  `json:"acceptance" yaml:"acceptance"`
	Estimate      Estimate  `json:"estimate" yaml:"estimate"`
	Risk          Risk      `json:"risk" yaml:"risk"`
}

// StepIDs returns the IDs of the mission's steps in order.
func (m Mission) StepIDs() []domain.StepID {
	ids := make([]domain.StepID, len(m.IncludedSteps))
	for i, s := range m.IncludedSteps {
		ids[i] = s.StepID
	}
	return ids
}

// Breakdown is the full set of missions derived from one plan version.
type Breakdown struct {
	BreakdownID string    `json:"breakdownId" yaml:"breakdownId"`
	PlanID      string    `json:"planId" yaml:"planId"`
	PlanVersion int       `json:"planVersion" yaml:"planVersion"`
	Goal        string    `json:"goal" yaml:"goal"`
	Missions    []Mission `json:"missions" yaml:"missions"`
}

// StepCount returns the number of steps across all missions.
func (b *Breakdown) StepCount() int {
	n := 0
	for _, m := range b.Missions {
		n += len(m.IncludedSteps)
	}
	return n
}

// Mission looks up a mission by ID.
func (b *Breakdown) Mission(id string) (*Mission, bool) {
	for i := range b.Missions {
		if b.Missions[i].MissionID == id {
			return &b.Missions[i], true
		}
	}
	return nil, false
}
