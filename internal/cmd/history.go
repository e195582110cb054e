package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ordinex/ordinex/internal/errors"
	"github.com/ordinex/ordinex/internal/store"
	"github.com/ordinex/ordinex/internal/ux"
)

func newShowCmd(a *app) *cobra.Command {
	var latest string

	cmd := &cobra.Command{
		Use:   "show [breakdown-id]",
		Short: "Show a stored breakdown",
		Long: `Show a breakdown from the history database, by ID or as the latest
breakdown of a plan.

Examples:
  ordinex show bd-3f1c9a0e2b7d4c61
  ordinex show --latest checkout-revamp --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				if (len(args) == 1) == (latest != "") {
					return errors.New(errors.ErrCodeAPIBadRequest, "give either a breakdown ID or --latest <plan-id>").
						WithSuggestion("List a plan's breakdowns with 'ordinex history <plan-id>'")
				}

				p, err := a.pipeline()
				if err != nil {
					return err
				}

				var rec *store.Record
				if latest != "" {
					rec, err = p.Latest(ctx, latest)
				} else {
					rec, err = p.Get(ctx, args[0])
				}
				if err != nil {
					return err
				}
				return a.output(cmd, rec)
			})
		},
	}

	cmd.Flags().StringVar(&latest, "latest", "", "show the newest breakdown of this plan ID")

	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <plan-id>",
		Short: "List a plan's stored breakdowns",
		Long: `List every stored breakdown of a plan, newest plan version first.

Example:
  ordinex history checkout-revamp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				p, err := a.pipeline()
				if err != nil {
					return err
				}

				list, err := p.History(ctx, args[0])
				if err != nil {
					return err
				}
				return a.output(cmd, ux.History{PlanID: args[0], Breakdowns: list})
			})
		},
	}
}
