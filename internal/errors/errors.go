package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Plan errors (PLAN-001 to PLAN-099)
	ErrCodePlanNotFound  ErrorCode = "PLAN-001"
	ErrCodePlanInvalid   ErrorCode = "PLAN-002"
	ErrCodePlanTooLarge  ErrorCode = "PLAN-003"
	ErrCodePlanUnmarshal ErrorCode = "PLAN-004"

	// Mission breakdown errors (MISSION-001 to MISSION-099)
	ErrCodeMissionEmptyPlan        ErrorCode = "MISSION-001"
	ErrCodeMissionInvariant        ErrorCode = "MISSION-002"
	ErrCodeMissionBreakdownMissing ErrorCode = "MISSION-003"

	// Store errors (STORE-001 to STORE-099)
	ErrCodeStoreOpen  ErrorCode = "STORE-001"
	ErrCodeStoreQuery ErrorCode = "STORE-002"

	// API errors (API-001 to API-099)
	ErrCodeAPIBadRequest       ErrorCode = "API-001"
	ErrCodeAPIMethodNotAllowed ErrorCode = "API-002"
	ErrCodeAPIRouteNotFound    ErrorCode = "API-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
)

// OrdinexError is an error carrying a code, suggestions and an optional cause
type OrdinexError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *OrdinexError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			fmt.Fprintf(&b, "\n  • %s", suggestion)
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *OrdinexError) Unwrap() error {
	return e.Cause
}

// New creates a new OrdinexError
func New(code ErrorCode, message string) *OrdinexError {
	return &OrdinexError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new OrdinexError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *OrdinexError {
	return &OrdinexError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *OrdinexError) WithSuggestion(suggestion string) *OrdinexError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *OrdinexError) WithSuggestions(suggestions ...string) *OrdinexError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// As is errors.As from the standard library, re-exported so callers need
// only this package.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// CodeOf returns the code of the first OrdinexError in err's chain, or "" if none
func CodeOf(err error) ErrorCode {
	var oe *OrdinexError
	if stderrors.As(err, &oe) {
		return oe.Code
	}
	return ""
}

// HasCode reports whether err's chain contains an OrdinexError with the given code
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if oe, ok := err.(*OrdinexError); ok && oe.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsValidation reports whether err was caused by invalid caller input
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case ErrCodePlanInvalid, ErrCodePlanTooLarge, ErrCodePlanUnmarshal,
		ErrCodeMissionEmptyPlan, ErrCodeAPIBadRequest, ErrCodeConfigInvalid:
		return true
	default:
		return false
	}
}

// IsNotFound reports whether err describes a missing plan, breakdown or file
func IsNotFound(err error) bool {
	switch CodeOf(err) {
	case ErrCodePlanNotFound, ErrCodeMissionBreakdownMissing, ErrCodeFileNotFound, ErrCodeAPIRouteNotFound:
		return true
	default:
		return false
	}
}

// Common error constructors for frequently used errors

// NewPlanInvalidError creates a plan validation error
func NewPlanInvalidError(details string) *OrdinexError {
	return New(ErrCodePlanInvalid, fmt.Sprintf("invalid plan: %s", details)).
		WithSuggestion("Every step needs a unique, non-empty step_id").
		WithSuggestion("Run 'ordinex detect --file <plan>' to check the plan before breaking it down")
}

// NewPlanTooLargeError creates an error for plans that exceed the supported step count
func NewPlanTooLargeError(steps, limit int) *OrdinexError {
	return New(ErrCodePlanTooLarge, fmt.Sprintf("plan has %d steps, at most %d are supported", steps, limit)).
		WithSuggestion("Split the goal into separate plans and break each down on its own")
}

// NewEmptyPlanError creates the error returned when a breakdown is requested for a plan without steps
func NewEmptyPlanError(planID string) *OrdinexError {
	return New(ErrCodeMissionEmptyPlan, fmt.Sprintf("plan %q has no steps to break down", planID)).
		WithSuggestion("Generate steps for the plan before requesting a mission breakdown")
}

// NewInvariantError reports a generated breakdown that failed its own invariant checks
func NewInvariantError(breakdownID string, cause error) *OrdinexError {
	return Wrap(ErrCodeMissionInvariant, fmt.Sprintf("breakdown %s violates an invariant", breakdownID), cause)
}

// NewBreakdownNotFoundError creates a missing breakdown error
func NewBreakdownNotFoundError(id string) *OrdinexError {
	return New(ErrCodeMissionBreakdownMissing, fmt.Sprintf("breakdown not found: %s", id)).
		WithSuggestion("Run 'ordinex history --plan <plan-id>' to list stored breakdowns")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *OrdinexError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewPlanUnmarshalError creates an unmarshal error for plan files
func NewPlanUnmarshalError(path string, format string, cause error) *OrdinexError {
	return Wrap(ErrCodePlanUnmarshal, fmt.Sprintf("failed to parse %s plan file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *OrdinexError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Run 'ordinex config view' to inspect the effective configuration")
}
