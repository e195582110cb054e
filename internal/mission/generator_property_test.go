package mission

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/ordinex/ordinex/internal/detect"
	"github.com/ordinex/ordinex/internal/domain"
	"github.com/ordinex/ordinex/internal/plan"
)

// genSteps draws a plan of 1..MaxSteps steps with unique IDs and
// descriptions that sometimes reference earlier steps.
func genSteps() *rapid.Generator[[]plan.Step] {
	return rapid.Custom(func(t *rapid.T) []plan.Step {
		n := rapid.IntRange(1, MaxSteps).Draw(t, "n")
		steps := make([]plan.Step, n)
		for i := range steps {
			desc := fmt.Sprintf("Work item %d", i)
			if i > 0 && rapid.Bool().Draw(t, fmt.Sprintf("ref_%d", i)) {
				ref := rapid.IntRange(0, i-1).Draw(t, fmt.Sprintf("ref_target_%d", i))
				desc += fmt.Sprintf(" building on s%d", ref)
			}
			steps[i] = plan.Step{
				ID:          domain.StepID(fmt.Sprintf("s%d", i)),
				Description: desc,
			}
		}
		return steps
	})
}

func genDetection() *rapid.Generator[detect.Result] {
	return rapid.Custom(func(t *rapid.T) detect.Result {
		return detect.Result{
			LargePlan: rapid.Bool().Draw(t, "large"),
			Metrics: detect.Metrics{
				RiskFlags: rapid.SliceOfDistinct(
					rapid.SampledFrom([]string{"security", "payments", "migration", "data"}),
					rapid.ID[string],
				).Draw(t, "risk"),
			},
		}
	})
}

func TestGenerate_InvariantsHold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		steps := genSteps().Draw(t, "steps")
		detection := genDetection().Draw(t, "detection")
		force := rapid.Bool().Draw(t, "force")

		b, err := Generate("plan-p", 1, "goal", steps, detection, Options{Force: force})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		if err := Validate(b, steps); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if b.StepCount() != len(steps) {
			t.Fatalf("step count %d, want %d", b.StepCount(), len(steps))
		}

		warranted := detection.LargePlan || force
		if warranted && len(steps) >= 2 && len(b.Missions) < 2 {
			t.Fatalf("%d steps produced %d missions despite a warranted breakdown", len(steps), len(b.Missions))
		}

		for i, m := range b.Missions {
			if len(m.Dependencies) > MaxDependencies {
				t.Fatalf("mission %d has %d dependencies", i, len(m.Dependencies))
			}
			for _, dep := range m.Dependencies {
				for j := i; j < len(b.Missions); j++ {
					if b.Missions[j].MissionID == dep {
						t.Fatalf("mission %d depends on later or same mission %d", i, j)
					}
				}
			}
		}

		if _, err := ExecutionOrder(b); err != nil {
			t.Fatalf("ExecutionOrder() error = %v", err)
		}
	})
}

func TestGenerate_DeterministicAcrossCalls(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		steps := genSteps().Draw(t, "steps")
		detection := genDetection().Draw(t, "detection")
		version := rapid.IntRange(1, 1000).Draw(t, "version")

		first, err := Generate("plan-p", version, "goal", steps, detection, Options{})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		second, err := Generate("plan-p", version, "goal", steps, detection, Options{})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if first.BreakdownID != second.BreakdownID {
			t.Fatalf("breakdown ids differ: %s vs %s", first.BreakdownID, second.BreakdownID)
		}
		for i := range first.Missions {
			if first.Missions[i].MissionID != second.Missions[i].MissionID ||
				first.Missions[i].Title != second.Missions[i].Title {
				t.Fatalf("mission %d differs between calls", i)
			}
		}

		next, err := Generate("plan-p", version+1, "goal", steps, detection, Options{})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if next.BreakdownID == first.BreakdownID {
			t.Fatalf("version bump kept breakdown id %s", first.BreakdownID)
		}
	})
}
