package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ordinex/ordinex/internal/exitcode"
	"github.com/ordinex/ordinex/internal/pipeline"
	"github.com/ordinex/ordinex/internal/ux"
	"github.com/ordinex/ordinex/internal/workspace"
)

func newDetectCmd(a *app) *cobra.Command {
	var (
		file      string
		dir       string
		failLarge bool
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Score a plan for size and risk",
		Long: `Score a plan and report whether it is too large to execute as a single unit.

The plan is read from --file (YAML or JSON, "-" for stdin). Without --file,
plan.yaml, plan.yml or plan.json is looked up in the working directory and
its parents. --workspace adds a profile of the project the plan targets.

Examples:
  ordinex detect --file plan.yaml
  cat plan.json | ordinex detect --file - --format json
  ordinex detect --workspace . --fail-on-large`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				doc, err := loadPlan(cmd, file)
				if err != nil {
					return err
				}

				p, err := pipeline.New(pipeline.Options{Metrics: a.metrics, Logger: a.logger})
				if err != nil {
					return err
				}

				report := &ux.DetectionReport{Detection: p.Detect(ctx, doc)}
				if dir != "" {
					profile, err := workspace.Probe(dir)
					if err != nil {
						return err
					}
					report.Workspace = profile
				}

				if err := a.output(cmd, report); err != nil {
					return err
				}
				if failLarge && report.Detection.LargePlan {
					return exitcode.ErrLargePlan
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "plan file (YAML or JSON, - for stdin)")
	cmd.Flags().StringVar(&dir, "workspace", "", "project directory to profile alongside the plan")
	cmd.Flags().BoolVar(&failLarge, "fail-on-large", false, "exit non-zero when the plan is large")

	return cmd
}
