package plan

import (
	"fmt"
	"strings"

	"github.com/ordinex/ordinex/internal/domain"
	"github.com/ordinex/ordinex/internal/errors"
)

// ValidateSteps checks the structural rules every step list must satisfy:
// each step has a valid ID and no ID appears twice. Duplicates are
// rejected rather than silently merged.
func ValidateSteps(steps []Step) error {
	seen := make(map[domain.StepID]int, len(steps))
	for i, step := range steps {
		if err := step.ID.Validate(); err != nil {
			return errors.NewPlanInvalidError(fmt.Sprintf("step at index %d: %v", i, err))
		}

		if first, ok := seen[step.ID]; ok {
			return errors.NewPlanInvalidError(
				fmt.Sprintf("duplicate step_id %q at index %d (first seen at index %d)", step.ID, i, first))
		}
		seen[step.ID] = i
	}

	return nil
}

// Validate checks if the Document is valid
func (d *Document) Validate() error {
	if strings.TrimSpace(d.PlanID) == "" {
		return errors.NewPlanInvalidError("plan_id cannot be empty")
	}

	if d.Version < 1 {
		return errors.NewPlanInvalidError(fmt.Sprintf("plan_version must be >= 1, got %d", d.Version))
	}

	return ValidateSteps(d.Steps)
}
