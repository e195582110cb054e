package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ordinex/ordinex/internal/errors"
	"github.com/ordinex/ordinex/internal/plan"
	"github.com/ordinex/ordinex/internal/ux"
)

// loadPlan reads the plan named by path. "-" reads stdin; an empty path
// discovers a plan file from the working directory.
func loadPlan(cmd *cobra.Command, path string) (*plan.Document, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read plan from stdin", err)
		}
		doc, err := plan.ParseDocument(data, "")
		if err != nil {
			return nil, errors.NewPlanUnmarshalError("stdin", "json/yaml", err)
		}
		if err := doc.Validate(); err != nil {
			return nil, err
		}
		return doc, nil
	}

	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		path, err = ux.DiscoverPlanFile(cwd)
		if err != nil {
			return nil, err
		}
	}

	return plan.LoadDocument(path)
}
