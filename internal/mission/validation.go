package mission

import (
	"fmt"
	"strings"

	"github.com/ordinex/ordinex/internal/domain"
	"github.com/ordinex/ordinex/internal/plan"
)

// Validate checks a breakdown against the steps it was generated from:
// every step appears in exactly one mission, the mission and per-mission
// caps hold, dependencies resolve within the breakdown without cycles, and
// every mission carries its required fields.
func Validate(b *Breakdown, steps []plan.Step) error {
	if b == nil {
		return fmt.Errorf("breakdown is nil")
	}
	if strings.TrimSpace(b.BreakdownID) == "" {
		return fmt.Errorf("breakdownId cannot be empty")
	}
	if len(b.Missions) == 0 {
		return fmt.Errorf("breakdown has no missions")
	}
	if len(b.Missions) > MaxMissions {
		return fmt.Errorf("breakdown has %d missions, at most %d allowed", len(b.Missions), MaxMissions)
	}

	ids := make(map[string]bool, len(b.Missions))
	for i, m := range b.Missions {
		if m.MissionID == "" {
			return fmt.Errorf("mission %d has no missionId", i)
		}
		if ids[m.MissionID] {
			return fmt.Errorf("duplicate missionId %s", m.MissionID)
		}
		ids[m.MissionID] = true

		if err := validateFields(m); err != nil {
			return fmt.Errorf("mission %s: %w", m.MissionID, err)
		}
	}

	if err := validateCompleteness(b, steps); err != nil {
		return err
	}

	if err := validateDependencies(b, ids); err != nil {
		return err
	}

	return checkCircularDependencies(b)
}

func validateFields(m Mission) error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if len(m.IncludedSteps) == 0 {
		return fmt.Errorf("includes no steps")
	}
	if len(m.IncludedSteps) > MaxStepsPerMission {
		return fmt.Errorf("includes %d steps, at most %d allowed", len(m.IncludedSteps), MaxStepsPerMission)
	}
	if len(m.Scope.OutOfScope) == 0 {
		return fmt.Errorf("outOfScope cannot be empty")
	}
	if len(m.Acceptance) == 0 {
		return fmt.Errorf("acceptance cannot be empty")
	}
	if err := m.Estimate.Size.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Estimate.Rationale) == "" {
		return fmt.Errorf("estimate rationale cannot be empty")
	}
	return m.Risk.Level.Validate()
}

// validateCompleteness checks that missions re-tile the step list exactly.
func validateCompleteness(b *Breakdown, steps []plan.Step) error {
	expected := make(map[domain.StepID]bool, len(steps))
	for _, s := range steps {
		expected[s.ID] = true
	}

	seen := make(map[domain.StepID]string, len(steps))
	for _, m := range b.Missions {
		for _, ref := range m.IncludedSteps {
			if !expected[ref.StepID] {
				return fmt.Errorf("mission %s includes unknown step %s", m.MissionID, ref.StepID)
			}
			if owner, ok := seen[ref.StepID]; ok {
				return fmt.Errorf("step %s appears in both %s and %s", ref.StepID, owner, m.MissionID)
			}
			seen[ref.StepID] = m.MissionID
		}
	}

	for _, s := range steps {
		if _, ok := seen[s.ID]; !ok {
			return fmt.Errorf("step %s is not covered by any mission", s.ID)
		}
	}

	return nil
}

func validateDependencies(b *Breakdown, ids map[string]bool) error {
	for _, m := range b.Missions {
		if len(m.Dependencies) > MaxDependencies {
			return fmt.Errorf("mission %s has %d dependencies, at most %d allowed",
				m.MissionID, len(m.Dependencies), MaxDependencies)
		}

		seen := make(map[string]bool, len(m.Dependencies))
		for _, dep := range m.Dependencies {
			if dep == m.MissionID {
				return fmt.Errorf("mission %s depends on itself", m.MissionID)
			}
			if !ids[dep] {
				return fmt.Errorf("mission %s depends on unknown mission %s", m.MissionID, dep)
			}
			if seen[dep] {
				return fmt.Errorf("mission %s lists dependency %s twice", m.MissionID, dep)
			}
			seen[dep] = true
		}
	}
	return nil
}

// checkCircularDependencies detects cycles in the mission dependency graph
func checkCircularDependencies(b *Breakdown) error {
	graph := make(map[string][]string, len(b.Missions))
	for _, m := range b.Missions {
		graph[m.MissionID] = m.Dependencies
	}

	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	var hasCycle func(id string, path []string) error
	hasCycle = func(id string, path []string) error {
		visited[id] = true
		recStack[id] = true
		path = append(path, id)

		for _, dep := range graph[id] {
			if !visited[dep] {
				if err := hasCycle(dep, path); err != nil {
					return err
				}
			} else if recStack[dep] {
				cyclePath := append(path, dep)
				return fmt.Errorf("circular dependency detected: %s", strings.Join(cyclePath, " -> "))
			}
		}

		recStack[id] = false
		return nil
	}

	for _, m := range b.Missions {
		if !visited[m.MissionID] {
			if err := hasCycle(m.MissionID, []string{}); err != nil {
				return err
			}
		}
	}

	return nil
}

// HasCycle reports whether the breakdown's dependency graph contains a cycle.
func HasCycle(b *Breakdown) bool {
	return checkCircularDependencies(b) != nil
}
