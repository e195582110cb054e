package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ordinex/ordinex/internal/errors"
)

// LoadDocument reads a plan Document from a YAML or JSON file. The format
// is chosen by extension; files without a known extension are parsed as
// JSON first and YAML second.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read plan file %s", path), err)
	}

	format := formatFor(path)
	doc, err := ParseDocument(data, format)
	if err != nil {
		if format == "" {
			format = "json/yaml"
		}
		return nil, errors.NewPlanUnmarshalError(path, format, err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

// ParseDocument decodes a plan Document in the given format ("json",
// "yaml" or "" to try both). It does not validate the result.
func ParseDocument(data []byte, format string) (*Document, error) {
	var doc Document

	switch format {
	case "json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("unmarshal json: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			doc = Document{}
			if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
				return nil, fmt.Errorf("neither json (%v) nor yaml (%v)", err, yerr)
			}
		}
	}

	return &doc, nil
}

// SaveDocument writes a plan Document to disk, as YAML when the path ends
// in .yaml/.yml and as indented JSON otherwise.
func SaveDocument(doc *Document, path string) error {
	var (
		data []byte
		err  error
	)

	if formatFor(path) == "yaml" {
		data, err = yaml.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "marshal plan", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("create directory %s", dir), err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("write plan file %s", path), err)
	}

	return nil
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return ""
	}
}
