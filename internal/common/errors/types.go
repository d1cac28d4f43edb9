package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies a connector failure
type ErrorType string

const (
	// ErrTypeAuth represents credential or token failures against the upstream platform
	ErrTypeAuth ErrorType = "authentication"
	// ErrTypeUpstreamUnavailable represents transient transport or 5xx failures (retryable)
	ErrTypeUpstreamUnavailable ErrorType = "upstream_unavailable"
	// ErrTypeNotFound represents a missing upstream resource
	ErrTypeNotFound ErrorType = "not_found"
	// ErrTypeBadRequest represents an upstream 4xx rejection of a well-formed connector call
	ErrTypeBadRequest ErrorType = "bad_request"
	// ErrTypeValidation represents caller input that violates the connector's contract,
	// detected before any network call
	ErrTypeValidation ErrorType = "validation"
	// ErrTypeProtocol represents a 2xx upstream response whose body does not match
	// the expected shape (upstream contract drift, never retried)
	ErrTypeProtocol ErrorType = "protocol"
	// ErrTypeTimeout represents a deadline exceeded
	ErrTypeTimeout ErrorType = "timeout"
	// ErrTypeConfig represents configuration errors
	ErrTypeConfig ErrorType = "config"
	// ErrTypeInternal represents internal system errors
	ErrTypeInternal ErrorType = "internal"
)

// AppError represents a structured connector error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Type), e.Message}

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}

	if len(e.Context) > 0 {
		contextParts := make([]string, 0, len(e.Context))
		for k, v := range e.Context {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context={%s}", strings.Join(contextParts, ", ")))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// AuthError creates a new authentication error. The message must already be
// redacted: credentials never belong in error text.
func AuthError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeAuth,
		Message: msg,
	}
}

// UpstreamUnavailableError creates a new transient upstream error
func UpstreamUnavailableError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeUpstreamUnavailable,
		Message: msg,
		Cause:   cause,
	}
}

// NotFoundError creates a new not found error
func NotFoundError(resource string) *AppError {
	return &AppError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// BadRequestError creates a new bad request error carrying the upstream
// response payload for diagnostics
func BadRequestError(msg string, payload string) *AppError {
	e := &AppError{
		Type:    ErrTypeBadRequest,
		Message: msg,
	}
	if payload != "" {
		e = e.WithContext("payload", payload)
	}
	return e
}

// ValidationError creates a new validation error
func ValidationError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeValidation,
		Message: msg,
	}
}

// ProtocolError creates a new protocol error
func ProtocolError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeProtocol,
		Message: msg,
		Cause:   cause,
	}
}

// TimeoutError creates a new timeout error
func TimeoutError(operation string) *AppError {
	return &AppError{
		Type:    ErrTypeTimeout,
		Message: fmt.Sprintf("timeout during %s", operation),
	}
}

// ConfigError creates a new configuration error
func ConfigError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeConfig,
		Message: msg,
	}
}

// InternalError creates a new internal error
func InternalError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type, unwrapping if necessary
func IsType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}

	return appErr.Type == errType
}

// GetAppError unwraps err to its AppError, if it has one
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetType returns the error type if it's an AppError, otherwise ErrTypeInternal
func GetType(err error) ErrorType {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		return ErrTypeInternal
	}

	return appErr.Type
}
