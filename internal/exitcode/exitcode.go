// Package exitcode maps errors to process exit codes.
package exitcode

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/ordinex/ordinex/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	Success = 0

	// GeneralError covers internal and unclassified failures
	GeneralError = 1

	// ValidationError indicates invalid input: flags, plan files, config
	ValidationError = 2

	// NotFound indicates a missing plan, breakdown or file
	NotFound = 3

	// StoreError indicates the breakdown history database failed
	StoreError = 4

	// LargePlan is returned by `detect --fail-on-large` for a large plan
	LargePlan = 5

	// Interrupted indicates SIGINT or SIGTERM
	Interrupted = 130
)

// ErrLargePlan marks a successful detection that found a large plan
var ErrLargePlan = stderrors.New("plan is too large for a single run; split it with `ordinex breakdown`")

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with the code DetermineExitCode picks for err
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode classifies err. Coded errors are mapped by code;
// cobra usage errors are recognized by message.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if stderrors.Is(err, ErrLargePlan) {
		return LargePlan
	}

	switch code := errors.CodeOf(err); {
	case errors.IsValidation(err):
		return ValidationError
	case errors.IsNotFound(err):
		return NotFound
	case code == errors.ErrCodeStoreOpen || code == errors.ErrCodeStoreQuery:
		return StoreError
	case code != "":
		return GeneralError
	}

	msg := strings.ToLower(err.Error())
	for _, usage := range []string{"unknown flag", "invalid argument", "unknown command", "required flag", "accepts ", "unknown shorthand flag"} {
		if strings.Contains(msg, usage) {
			return ValidationError
		}
	}
	return GeneralError
}

// Description returns a human-readable description of an exit code
func Description(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ValidationError:
		return "Invalid input (flags, plan or configuration)"
	case NotFound:
		return "Plan, breakdown or file not found"
	case StoreError:
		return "Breakdown history store error"
	case LargePlan:
		return "Plan is large and should be broken down"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
