package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newBreakdownCmd(a *app) *cobra.Command {
	var (
		file  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Split a plan into ordered missions",
		Long: `Generate a mission breakdown for a plan.

Steps are split into contiguous missions of at most six steps and at most
eight missions. When the plan is large, or --force is set (or
detection.force_breakdown is true in the config), missions aim for about four
steps each and a plan of two or more steps always gets at least two missions.
Every step lands in exactly one mission and dependencies always point to
earlier missions.

The breakdown is saved to the history database unless --no-save is set.

Examples:
  ordinex breakdown --file plan.yaml
  ordinex breakdown --file plan.json --force --format json
  ordinex breakdown --no-save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				doc, err := loadPlan(cmd, file)
				if err != nil {
					return err
				}

				p, err := a.pipeline()
				if err != nil {
					return err
				}

				out, err := p.Breakdown(ctx, doc, force || a.cfg.Detection.ForceBreakdown)
				if err != nil {
					return err
				}
				return a.output(cmd, out)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "plan file (YAML or JSON, - for stdin)")
	cmd.Flags().BoolVar(&force, "force", false, "generate missions even when the plan is not large")
	cmd.Flags().BoolVar(&a.noSave, "no-save", false, "do not record the breakdown in the history database")

	return cmd
}
