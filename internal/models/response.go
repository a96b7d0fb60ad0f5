// Package models - API response types and error handling.
// This file defines all outgoing API response structures with consistent formatting.
//
// Response Design Principles:
// - Consistent JSON structure across all endpoints
// - Optional fields use omitempty to reduce response size
// - Machine-readable error codes alongside human-readable messages
// - RFC3339 timestamps for international compatibility
// - Upstream diagnostics are truncated and credentials never echoed
package models

import (
	"time"
)

// MediaCheckResponse is the normalized classification result returned to
// clients. The raw upstream payload never leaks; callers are isolated
// from upstream schema drift.
type MediaCheckResponse struct {
	AIGenerated bool    `json:"ai_generated"`     // Primary verdict
	Confidence  float64 `json:"confidence"`       // Score in [0.0, 1.0] for the ai_generated class
	MediaType   string  `json:"media_type"`       // Echoed asset kind (image/video)
	Message     string  `json:"message"`          // Human-readable summary
	Cached      bool    `json:"cached,omitempty"` // True when served from history without an upstream call
}

// UsageResponse reports the caller's current quota consumption. Reading
// it never consumes a unit.
type UsageResponse struct {
	Status         string       `json:"status"`
	Tier           string       `json:"tier"`
	DailyLimit     int          `json:"daily_limit"`
	UsedToday      int          `json:"used_today"`
	RemainingToday int          `json:"remaining_today"`
	ResetTime      time.Time    `json:"reset_time"`
	Features       FeatureFlags `json:"features"`
}

// FeatureFlags advertises which gateway features are currently available.
// MediaCheck flips to false when no classifier credential is configured.
type FeatureFlags struct {
	MediaCheck bool `json:"media_check"`
	Usage      bool `json:"usage"`
	History    bool `json:"history"`
}

// StatusResponse is returned by the root endpoint.
type StatusResponse struct {
	Message  string       `json:"message"`
	Version  string       `json:"version"`
	Features FeatureFlags `json:"features"`
}

// QuotaExceededResponse is the 429 body sent when a client has exhausted
// its daily quota. ResetTime is ISO-8601 UTC; RetryAfterSeconds is
// clamped to zero or more.
type QuotaExceededResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message"`
	Limit             int    `json:"limit"`
	ResetTime         string `json:"reset_time"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

// HistoryResponse lists recent classification outcomes.
type HistoryResponse struct {
	Checks     []CheckRecord `json:"checks"`
	TotalCount int           `json:"total_count"`
}

// ErrorResponse provides structured error information with debugging context.
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
}

type ComponentHealth struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Health Status Constants
const (
	StatusHealthy   = "healthy"   // All systems operational
	StatusUnhealthy = "unhealthy" // Major system issues
	StatusDegraded  = "degraded"  // Partial functionality
	StatusUnknown   = "unknown"   // Status indeterminate
)

// Standard HTTP Error Codes
//
// Error Code Strategy:
// - Upper-case with underscores for consistency
// - Maps to standard HTTP status codes
// - Machine-readable for client error handling
const (
	ErrorCodeBadRequest         = "BAD_REQUEST"         // 400: Invalid request format
	ErrorCodeInvalidRequest     = "INVALID_REQUEST"     // 400: Invalid request data
	ErrorCodeValidation         = "VALIDATION_ERROR"    // 422: Input validation failed
	ErrorCodeNotFound           = "NOT_FOUND"           // 404: Resource doesn't exist
	ErrorCodeQuotaExceeded      = "QUOTA_EXCEEDED"      // 429: Daily quota exhausted
	ErrorCodeFeatureDisabled    = "FEATURE_DISABLED"    // 503: Feature not configured
	ErrorCodeInternalError      = "INTERNAL_ERROR"      // 500: Server-side error
	ErrorCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503: Service temporarily down
)

func NewErrorResponse(message string, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:     "error",
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
	}
}

func NewHealthCheckResponse(status string) *HealthCheckResponse {
	return &HealthCheckResponse{
		Status:     status,
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth),
	}
}

func (h *HealthCheckResponse) AddComponent(name, status, message string) {
	h.Components[name] = ComponentHealth{
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
	}
}
