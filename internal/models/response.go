// Package models - API response types and error handling.
// This file defines all outgoing API response structures with consistent formatting.
//
// Response Design Principles:
// - Consistent JSON structure across all endpoints
// - Optional fields use omitempty to reduce response size
// - Machine-readable error codes plus human-readable messages
// - RFC3339 timestamps for international compatibility
package models

import (
	"time"
)

// ErrorResponse provides structured error information with debugging context.
// Every denial carries a machine-distinguishable code plus a short
// human-readable reason; rate-limit and capacity denials additionally carry a
// Retry-After header set by the middleware or handler.
type ErrorResponse struct {
	Error     string            `json:"error"`                // Error type (always "error")
	Message   string            `json:"message"`              // Human-readable error description
	Code      string            `json:"code,omitempty"`       // Machine-readable error code
	Details   map[string]string `json:"details,omitempty"`    // Field-specific error details
	Timestamp time.Time         `json:"timestamp"`            // Error occurrence time
	RequestID string            `json:"request_id,omitempty"` // Unique request identifier
}

type HealthCheckResponse struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
	Metrics    map[string]interface{}     `json:"metrics,omitempty"`
}

type ComponentHealth struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RecentJobsResponse lists the most recently completed jobs from the history store.
type RecentJobsResponse struct {
	Jobs       []JobRecord `json:"jobs"`
	TotalCount int         `json:"total_count"`
}

// Health Status Constants
const (
	StatusHealthy   = "healthy"   // All systems operational
	StatusUnhealthy = "unhealthy" // Major system issues
	StatusDegraded  = "degraded"  // Partial functionality
)

// Standard error codes
//
// Error Code Strategy:
// - Upper-case with underscores for consistency
// - Maps to standard HTTP status codes
// - Machine-readable for client error handling
const (
	ErrorCodeBadRequest         = "BAD_REQUEST"               // 400: Missing payload or invalid parameter
	ErrorCodeRateLimited        = "RATE_LIMIT_EXCEEDED"       // 429: Global limiter denial
	ErrorCodeHeavyRateLimited   = "HEAVY_RATE_LIMIT_EXCEEDED" // 429: Heavy-route limiter denial
	ErrorCodeCapacityExceeded   = "CAPACITY_EXCEEDED"         // 429: Concurrency gate full
	ErrorCodeCredentialRequired = "CREDENTIAL_REQUIRED"       // 401: Document needs a password
	ErrorCodeToolFailed         = "TOOL_EXECUTION_FAILED"     // 500: External tool failed
	ErrorCodeEmptyResult        = "EMPTY_RESULT"              // 422: Operation inapplicable to input
	ErrorCodeInternalError      = "INTERNAL_ERROR"            // 500: Server-side error
	ErrorCodeNotFound           = "NOT_FOUND"                 // 404: Resource doesn't exist
	ErrorCodeInvalidRequest     = "INVALID_REQUEST"           // 400/405: Invalid request data or method
)

func NewErrorResponse(message string, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:     "error",
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
	}
}

// NewHealthCheckResponse creates a health response with the given overall status.
func NewHealthCheckResponse(status string) *HealthCheckResponse {
	return &HealthCheckResponse{
		Status:     status,
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth),
	}
}

// AddComponent records the health of a single subsystem.
func (r *HealthCheckResponse) AddComponent(name, status, message string) {
	r.Components[name] = ComponentHealth{
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
	}
}
