package ux

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ordinex/ordinex/internal/detect"
	"github.com/ordinex/ordinex/internal/domain"
	"github.com/ordinex/ordinex/internal/plan"
)

func sampleResult() detect.Result {
	steps := make([]plan.Step, 16)
	for i := range steps {
		steps[i] = plan.Step{ID: domain.StepID("s" + string(rune('a'+i))), Description: "Migrate the billing schema"}
	}
	return detect.Detect(steps, "Move payments to the new provider")
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"json", "*ux.JSONFormatter", false},
		{"yaml", "*ux.YAMLFormatter", false},
		{"text", "*ux.TextFormatter", false},
		{"", "*ux.TextFormatter", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := NewFormatter(tt.format, &FormatterOptions{Writer: &bytes.Buffer{}})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := typeName(f); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(f Formatter) string {
	switch f.(type) {
	case *JSONFormatter:
		return "*ux.JSONFormatter"
	case *YAMLFormatter:
		return "*ux.YAMLFormatter"
	case *TextFormatter:
		return "*ux.TextFormatter"
	}
	return "?"
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f, _ := NewFormatter("json", &FormatterOptions{Writer: &buf})

	res := sampleResult()
	if err := f.Format(res); err != nil {
		t.Fatalf("Format: %v", err)
	}

	var got detect.Result
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.Score != res.Score || got.LargePlan != res.LargePlan {
		t.Errorf("got %+v, want %+v", got, res)
	}
	if !strings.Contains(buf.String(), "\n  \"largePlan\"") {
		t.Errorf("expected indented output, got %s", buf.String())
	}
}

func TestJSONFormatterCompact(t *testing.T) {
	var buf bytes.Buffer
	f, _ := NewFormatter("json", &FormatterOptions{Writer: &buf, Compact: true})
	if err := f.Format(map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\"a\":1}\n" {
		t.Errorf("got %q", got)
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	f, _ := NewFormatter("yaml", &FormatterOptions{Writer: &buf})

	if err := f.Format(sampleResult()); err != nil {
		t.Fatalf("Format: %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if got["largePlan"] != true {
		t.Errorf("largePlan = %v", got["largePlan"])
	}
}

type stringer struct{}

func (stringer) String() string { return "from stringer" }

func TestTextFormatterFallbacks(t *testing.T) {
	var buf bytes.Buffer
	f, _ := NewFormatter("text", &FormatterOptions{Writer: &buf, NoColor: true})

	if err := f.Format("plain"); err != nil {
		t.Fatal(err)
	}
	if err := f.Format(stringer{}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "plain\nfrom stringer\n" {
		t.Errorf("got %q", got)
	}

	if err := f.Format(struct{ X int }{1}); err == nil {
		t.Error("expected error for unsupported type")
	}
}
