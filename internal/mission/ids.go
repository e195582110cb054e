package mission

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/ordinex/ordinex/internal/plan"
)

// breakdownIDPrefix marks content-addressed breakdown identifiers
const breakdownIDPrefix = "bd-"

// breakdownIDHexLen is how many hex digits of the digest are kept
const breakdownIDHexLen = 16

// identity is the canonical tuple a breakdown ID is derived from. Field
// order is fixed so the JSON encoding is stable.
type identity struct {
	PlanID      string   `json:"plan_id"`
	PlanVersion int      `json:"plan_version"`
	StepIDs     []string `json:"step_ids"`
}

// Canonicalize returns the canonical encoding of a breakdown's identity.
func Canonicalize(planID string, planVersion int, steps []plan.Step) ([]byte, error) {
	data, err := json.Marshal(identity{
		PlanID:      planID,
		PlanVersion: planVersion,
		StepIDs:     plan.StepIDs(steps),
	})
	if err != nil {
		return nil, fmt.Errorf("canonicalize breakdown identity: %w", err)
	}
	return data, nil
}

// BreakdownID computes the blake3-based identifier of a breakdown. The
// same plan ID, version and ordered step IDs always give the same ID.
func BreakdownID(planID string, planVersion int, steps []plan.Step) (string, error) {
	canonical, err := Canonicalize(planID, planVersion, steps)
	if err != nil {
		return "", err
	}

	sum := blake3.Sum256(canonical)
	return breakdownIDPrefix + hex.EncodeToString(sum[:])[:breakdownIDHexLen], nil
}

// MissionID derives the ID of the mission at index within a breakdown.
func MissionID(breakdownID string, index int) string {
	return fmt.Sprintf("%s-m%02d", breakdownID, index+1)
}
