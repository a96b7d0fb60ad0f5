package mediacheck

import (
	"fmt"
	"net/http"

	"truthlens/internal/models"
)

// Bridge error codes. Each maps to the HTTP status the gateway surfaces
// to clients; none of them is ever fatal to the process.
const (
	ErrorCodeNotConfigured = "CLASSIFIER_NOT_CONFIGURED"
	ErrorCodeAuthFailed    = "CLASSIFIER_AUTH_FAILED"
	ErrorCodeUnavailable   = "CLASSIFIER_UNAVAILABLE"
	ErrorCodeRemote        = "CLASSIFIER_ERROR"
)

// maxExcerptLen bounds how much upstream diagnostic text a BridgeError
// may carry. The credential itself is never included.
const maxExcerptLen = 200

// BridgeError represents a failed classification call with HTTP context.
type BridgeError struct {
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *BridgeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BridgeError) Unwrap() error {
	return e.Err
}

// ResponseCode maps the bridge error to a stable, user-safe response code.
func (e *BridgeError) ResponseCode() string {
	switch e.Code {
	case ErrorCodeNotConfigured:
		return models.ErrorCodeFeatureDisabled
	case ErrorCodeUnavailable:
		return models.ErrorCodeServiceUnavailable
	default:
		return models.ErrorCodeInternalError
	}
}

// Error constructors for the bridge failure taxonomy

func NewNotConfiguredError() *BridgeError {
	return &BridgeError{
		Code:       ErrorCodeNotConfigured,
		Message:    "media classification is not configured",
		StatusCode: http.StatusServiceUnavailable,
	}
}

func NewAuthError(excerpt string) *BridgeError {
	return &BridgeError{
		Code:       ErrorCodeAuthFailed,
		Message:    fmt.Sprintf("classifier rejected the configured credential: %s", excerpt),
		StatusCode: http.StatusBadGateway,
	}
}

func NewUnavailableError(err error) *BridgeError {
	return &BridgeError{
		Code:       ErrorCodeUnavailable,
		Message:    "classifier is unreachable or timed out",
		StatusCode: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewRemoteError(status int, excerpt string) *BridgeError {
	return &BridgeError{
		Code:       ErrorCodeRemote,
		Message:    fmt.Sprintf("classifier returned status %d: %s", status, excerpt),
		StatusCode: http.StatusBadGateway,
	}
}

// excerptOf truncates upstream response text for safe inclusion in error
// messages.
func excerptOf(body []byte) string {
	if len(body) > maxExcerptLen {
		return string(body[:maxExcerptLen])
	}
	return string(body)
}
