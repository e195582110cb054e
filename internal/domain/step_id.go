package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// StepID identifies one step of a plan. Step IDs are assigned by the
// upstream planner and must stay stable across calls for the same plan.
type StepID string

// maxStepIDLength is the maximum allowed length for a step ID
const maxStepIDLength = 128

// NewStepID creates a new StepID value object with validation
func NewStepID(value string) (StepID, error) {
	id := StepID(value)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks if the step ID is valid
func (s StepID) Validate() error {
	v := string(s)

	if v == "" {
		return fmt.Errorf("step ID cannot be empty")
	}

	if len(v) > maxStepIDLength {
		return fmt.Errorf("step ID %q exceeds maximum length of %d characters", truncate(v, 32), maxStepIDLength)
	}

	if strings.IndexFunc(v, unicode.IsSpace) >= 0 {
		return fmt.Errorf("step ID %q cannot contain whitespace", v)
	}

	return nil
}

// String returns the string representation
func (s StepID) String() string {
	return string(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
