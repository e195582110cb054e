package domain

import (
	"strings"
	"testing"
)

func TestNewStepID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "snake case", value: "step_1", wantErr: false},
		{name: "kebab case", value: "setup-db", wantErr: false},
		{name: "uuid-like", value: "0f8c2a1e-3b7d-4f0e-9a8d-1c2b3a4d5e6f", wantErr: false},
		{name: "empty", value: "", wantErr: true},
		{name: "contains space", value: "step 1", wantErr: true},
		{name: "contains tab", value: "step\t1", wantErr: true},
		{name: "too long", value: strings.Repeat("a", maxStepIDLength+1), wantErr: true},
		{name: "max length", value: strings.Repeat("a", maxStepIDLength), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewStepID(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStepID(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if !tt.wantErr && id.String() != tt.value {
				t.Errorf("String() = %q, want %q", id.String(), tt.value)
			}
		})
	}
}

func TestMissionSize(t *testing.T) {
	for _, v := range []string{"S", "M", "L"} {
		if _, err := NewMissionSize(v); err != nil {
			t.Errorf("NewMissionSize(%q) unexpected error: %v", v, err)
		}
	}
	for _, v := range []string{"", "s", "XL", "medium"} {
		if _, err := NewMissionSize(v); err == nil {
			t.Errorf("NewMissionSize(%q) expected error", v)
		}
	}

	if SizeSmall.Bigger() != SizeMedium || SizeMedium.Bigger() != SizeLarge || SizeLarge.Bigger() != SizeLarge {
		t.Error("Bigger() should step S -> M -> L and saturate at L")
	}
}

func TestSizeForStepCount(t *testing.T) {
	tests := []struct {
		steps int
		want  MissionSize
	}{
		{1, SizeSmall},
		{2, SizeSmall},
		{3, SizeMedium},
		{4, SizeMedium},
		{5, SizeLarge},
		{6, SizeLarge},
	}

	for _, tt := range tests {
		if got := SizeForStepCount(tt.steps); got != tt.want {
			t.Errorf("SizeForStepCount(%d) = %s, want %s", tt.steps, got, tt.want)
		}
	}
}

func TestRiskLevel(t *testing.T) {
	for _, v := range []string{"low", "med", "high"} {
		if _, err := NewRiskLevel(v); err != nil {
			t.Errorf("NewRiskLevel(%q) unexpected error: %v", v, err)
		}
	}
	for _, v := range []string{"", "medium", "HIGH", "critical"} {
		if _, err := NewRiskLevel(v); err == nil {
			t.Errorf("NewRiskLevel(%q) expected error", v)
		}
	}

	if !RiskHigh.IsHigherThan(RiskMedium) || !RiskMedium.IsHigherThan(RiskLow) {
		t.Error("expected high > med > low")
	}
	if RiskLow.IsHigherThan(RiskLow) {
		t.Error("a level is not higher than itself")
	}
}
