package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ordinex/ordinex/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetInfo()
			if short {
				fmt.Fprintf(cmd.OutOrStdout(), "ordinex %s\n", info.Short())
				return nil
			}
			return a.output(cmd, info)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")

	return cmd
}
