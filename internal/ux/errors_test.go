package ux

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/ordinex/ordinex/internal/errors"
)

func TestNewErrorWithSuggestion(t *testing.T) {
	if NewErrorWithSuggestion(nil, "x") != nil {
		t.Error("nil error must stay nil")
	}

	base := stderrors.New("something failed")
	err := NewErrorWithSuggestion(base, "try this fix")
	if !strings.Contains(err.Error(), "Suggestion: try this fix") {
		t.Errorf("missing suggestion: %q", err.Error())
	}
	if !stderrors.Is(err, base) {
		t.Error("wrapped error must unwrap to base")
	}

	if got := NewErrorWithSuggestion(base, "").Error(); got != "something failed" {
		t.Errorf("got %q", got)
	}
}

func TestEnhanceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no plan", stderrors.New("no plan file found in /tmp or its parents"), "--file"},
		{"locked", stderrors.New("database is locked"), "--no-save"},
		{"port", stderrors.New("listen tcp :8080: bind: address already in use"), "--port"},
		{"permission", stderrors.New("open /root/x: permission denied"), "permissions"},
		{"timeout", stderrors.New("context deadline exceeded"), "timed out"},
		{"format", stderrors.New("unknown format: xml"), "--format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnhanceError(tt.err)
			if !strings.Contains(got.Error(), tt.want) {
				t.Errorf("EnhanceError(%q) = %q, want it to mention %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestEnhanceErrorPassThrough(t *testing.T) {
	if EnhanceError(nil) != nil {
		t.Error("nil must stay nil")
	}

	plain := stderrors.New("nothing to add")
	if EnhanceError(plain) != plain {
		t.Error("unknown errors are returned unchanged")
	}

	coded := errors.New(errors.ErrCodeStoreQuery, "database is locked")
	if EnhanceError(coded) != error(coded) {
		t.Error("coded errors are returned unchanged")
	}
}
