package ux

import (
	"fmt"
	"os"
	"path/filepath"
)

// PlanFileNames are tried in order in each directory searched
var PlanFileNames = []string{
	"plan.yaml",
	"plan.yml",
	"plan.json",
	filepath.Join(".ordinex", "plan.yaml"),
	filepath.Join(".ordinex", "plan.json"),
}

// DiscoverPlanFile looks for a plan file in dir and its parents, stopping
// after the first directory that holds a .git entry
func DiscoverPlanFile(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for d := abs; ; {
		for _, name := range PlanFileNames {
			p := filepath.Join(d, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
		}

		if _, err := os.Stat(filepath.Join(d, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}

	return "", fmt.Errorf("no plan file found in %s or its parents", abs)
}
