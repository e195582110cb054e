package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/ordinex/ordinex/internal/detect"
	"github.com/ordinex/ordinex/internal/health"
	"github.com/ordinex/ordinex/internal/ux"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that detection and the history store work",
		Long: `Run the same dependency checks the server's readiness probe uses and
report each result.

Exits non-zero when any check is unhealthy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				m := health.NewManager().WithTimeout(5 * time.Second)
				m.AddChecker(health.NewDetectorChecker(detect.NewDetector(nil)))

				s, err := a.openStore()
				switch {
				case err != nil:
					m.AddChecker(failedChecker{name: "breakdown-store", err: err})
				case s != nil:
					m.AddChecker(health.NewStoreChecker(s))
				}

				checks := m.Check(ctx)
				report := &ux.HealthReport{Status: health.OverallStatus(checks), Checks: checks}
				if err := a.output(cmd, report); err != nil {
					return err
				}
				if report.Status == health.StatusUnhealthy {
					return errUnhealthy
				}
				return nil
			})
		},
	}
}

var errUnhealthy = errors.New("one or more health checks failed")

// failedChecker reports a dependency that could not be constructed
type failedChecker struct {
	name string
	err  error
}

func (c failedChecker) Name() string { return c.name }

func (c failedChecker) Check(context.Context) *health.Result {
	return health.Unhealthy(c.err.Error())
}
