package ux

import (
	"fmt"
	"strings"

	"github.com/ordinex/ordinex/internal/errors"
)

// ErrorWithSuggestion wraps an error with a recovery hint
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion returns nil when err is nil
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{Err: err, Suggestion: suggestion}
}

// EnhanceError adds a hint to errors that do not carry one. Coded errors
// already list their suggestions and are returned unchanged.
func EnhanceError(err error) error {
	if err == nil || errors.CodeOf(err) != "" {
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "no plan file found"):
		return NewErrorWithSuggestion(err,
			"Pass a plan with --file, or add plan.yaml to the project root")
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "SQLITE_BUSY"):
		return NewErrorWithSuggestion(err,
			"Another ordinex process is writing the history database; retry, or use --no-save")
	case strings.Contains(msg, "address already in use"):
		return NewErrorWithSuggestion(err,
			"Choose another port with --port or ORDINEX_PORT")
	case strings.Contains(msg, "permission denied"):
		return NewErrorWithSuggestion(err,
			"Check file permissions, or point store.path at a writable location")
	case strings.Contains(msg, "context deadline exceeded"):
		return NewErrorWithSuggestion(err,
			"The operation timed out; retry, or raise server.shutdown_timeout")
	case strings.Contains(msg, "unknown format"):
		return NewErrorWithSuggestion(err,
			"Use --format text, json or yaml")
	}

	return err
}
