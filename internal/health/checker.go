// Package health runs dependency checks and backs the HTTP liveness,
// readiness and startup probes.
package health

import (
	"context"
	"time"
)

// Checker verifies one dependency or capability
type Checker interface {
	// Name is lowercase with hyphens, e.g. "breakdown-store"
	Name() string

	// Check must honor the context deadline
	Check(ctx context.Context) *Result
}

// Status represents the health check status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Result is the outcome of one check
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency"`
}

// NewResult creates a result with the given status and message
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail adds a detail and returns r for chaining
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// Healthy creates a healthy result
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
