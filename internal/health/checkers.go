package health

import (
	"context"
	"fmt"

	"github.com/ordinex/ordinex/internal/detect"
	"github.com/ordinex/ordinex/internal/domain"
	"github.com/ordinex/ordinex/internal/plan"
)

// Pinger is satisfied by the breakdown store
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker pings the breakdown history database
type StoreChecker struct {
	store Pinger
}

// NewStoreChecker creates a checker for store
func NewStoreChecker(store Pinger) *StoreChecker {
	return &StoreChecker{store: store}
}

func (c *StoreChecker) Name() string {
	return "breakdown-store"
}

// Check is unhealthy when the database cannot be reached
func (c *StoreChecker) Check(ctx context.Context) *Result {
	if err := c.store.Ping(ctx); err != nil {
		return Unhealthy("breakdown store unreachable").
			WithDetail("error", err.Error())
	}
	return Healthy("breakdown store reachable")
}

// DetectorChecker runs the detector over a fixed plan that must be
// flagged as large. It catches a broken vocabulary or scoring table.
type DetectorChecker struct {
	detector *detect.Detector
}

// NewDetectorChecker creates a checker for d
func NewDetectorChecker(d *detect.Detector) *DetectorChecker {
	return &DetectorChecker{detector: d}
}

func (c *DetectorChecker) Name() string {
	return "detector"
}

func (c *DetectorChecker) Check(context.Context) *Result {
	steps := make([]plan.Step, detect.LargeStepThreshold)
	for i := range steps {
		steps[i] = plan.Step{ID: domain.StepID(fmt.Sprintf("probe-%d", i+1))}
	}

	r := c.detector.Detect(steps, "")
	if !r.LargePlan {
		return Unhealthy("detector did not flag a plan at the step threshold").
			WithDetail("score", r.Score)
	}
	return Healthy("detector flags large plans").
		WithDetail("score", r.Score)
}
