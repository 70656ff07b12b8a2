// Package health checks that the environment rtcheck verifies in is usable:
// the model checker can be run and the directories it writes to accept files.
//
//	manager := health.NewManager()
//	manager.AddChecker(health.NewBinaryChecker("verifyta"))
//	manager.AddChecker(health.NewDirectoryChecker("scratch-dir", os.TempDir()))
//
//	for name, result := range manager.Check(ctx) {
//	    logger.Info("health check", "name", name, "status", result.Status)
//	}
package health

import (
	"context"
	"time"
)

// Checker is one environment check.
type Checker interface {
	// Name is lowercase with hyphens, e.g. "model-checker".
	Name() string

	// Check must respect the context deadline.
	Check(ctx context.Context) *Result
}

// Status represents the health check status.
type Status string

const (
	// StatusHealthy indicates the checked component is fully operational.
	StatusHealthy Status = "healthy"

	// StatusDegraded indicates the component works with reduced confidence,
	// e.g. a checker binary that runs but does not report a version.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy indicates verification cannot work.
	StatusUnhealthy Status = "unhealthy"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Result represents the result of a health check.
type Result struct {
	Status  Status                 `json:"status" yaml:"status"`
	Message string                 `json:"message" yaml:"message"`
	Details map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
	Latency time.Duration          `json:"latency" yaml:"latency"`
}

// NewResult creates a new health check result with the given status and message.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the result and returns the result for chaining.
func (r *Result) WithDetail(key string, value interface{}) *Result {
	r.Details[key] = value
	return r
}

// Healthy creates a healthy result with the given message.
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result with the given message.
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result with the given message.
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
