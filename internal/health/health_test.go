package health

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinex/ordinex/internal/detect"
)

type staticChecker struct {
	name   string
	status Status
	delay  time.Duration
}

func (c staticChecker) Name() string { return c.name }

func (c staticChecker) Check(ctx context.Context) *Result {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return Unhealthy("timed out")
		}
	}
	return NewResult(c.status, c.name)
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"no checks", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(map[string]*Result)
			for i, s := range tt.statuses {
				results[fmt.Sprintf("c%d", i)] = NewResult(s, "")
			}
			assert.Equal(t, tt.want, OverallStatus(results))
		})
	}
}

func TestManagerCheck(t *testing.T) {
	m := NewManager().WithTimeout(50 * time.Millisecond)
	m.AddChecker(staticChecker{name: "a", status: StatusHealthy})
	m.AddChecker(staticChecker{name: "slow", status: StatusHealthy, delay: time.Second})
	m.AddChecker(staticChecker{name: "a", status: StatusDegraded})

	assert.Equal(t, []string{"a", "slow"}, m.CheckNames())

	results := m.Check(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, StatusDegraded, results["a"].Status, "re-registered checker replaces the first")
	assert.Equal(t, StatusUnhealthy, results["slow"].Status)
	assert.Positive(t, results["slow"].Latency)
}

func TestProbeManager(t *testing.T) {
	pm := NewProbeManager("1.2.3")
	pm.AddChecker(NewStoreChecker(pinger{}))
	ctx := context.Background()

	assert.Equal(t, StatusUnhealthy, pm.CheckStartup(ctx).Status)
	pm.MarkInitialized()
	assert.Equal(t, StatusHealthy, pm.CheckStartup(ctx).Status)

	ready := pm.CheckReadiness(ctx)
	assert.Equal(t, StatusHealthy, ready.Status)
	assert.Equal(t, "1.2.3", ready.Version)
	assert.Contains(t, ready.Checks, "breakdown-store")

	assert.Equal(t, StatusHealthy, pm.CheckLiveness(ctx).Status)

	pm.MarkShutdown()
	assert.Equal(t, StatusUnhealthy, pm.CheckReadiness(ctx).Status)
	assert.Equal(t, StatusDegraded, pm.CheckLiveness(ctx).Status)
}

func TestStoreChecker(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, StatusHealthy, NewStoreChecker(pinger{}).Check(ctx).Status)

	r := NewStoreChecker(pinger{err: fmt.Errorf("database is locked")}).Check(ctx)
	assert.Equal(t, StatusUnhealthy, r.Status)
	assert.Equal(t, "database is locked", r.Details["error"])
}

func TestDetectorChecker(t *testing.T) {
	r := NewDetectorChecker(detect.NewDetector(nil)).Check(context.Background())
	assert.Equal(t, StatusHealthy, r.Status)
	assert.Equal(t, "detector", NewDetectorChecker(nil).Name())
}
