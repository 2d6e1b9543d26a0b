package nova

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents a category of error for metrics and logging.
type ErrorCode string

// Error codes for categorization.
const (
	ErrCodeConfig     ErrorCode = "CONFIG"     // Configuration errors
	ErrCodeValidation ErrorCode = "VALIDATION" // Ingestion payload validation errors
	ErrCodeQuery      ErrorCode = "QUERY"      // Rejected search/eval/aggregation expressions
	ErrCodeNetwork    ErrorCode = "NETWORK"    // Network/connection errors
	ErrCodeRequest    ErrorCode = "REQUEST"    // Other request failures
	ErrCodeAuth       ErrorCode = "AUTH"       // Authentication/authorization errors
	ErrCodeRateLimit  ErrorCode = "RATE_LIMIT" // Rate limiting errors
	ErrCodeInternal   ErrorCode = "INTERNAL"   // Internal SDK errors
)

// NovaError is the common interface for all SDK errors. Use it to handle
// errors generically while still accessing error-specific information.
//
// Example:
//
//	var novaErr nova.NovaError
//	if errors.As(err, &novaErr) {
//	    if novaErr.IsRetryable() {
//	        // Retry the operation
//	    }
//	    log.Printf("code: %s, request: %s", novaErr.Code(), novaErr.GetRequestID())
//	}
type NovaError interface {
	error

	// Code returns a machine-readable error code for categorization.
	Code() ErrorCode

	// IsRetryable returns true if the operation can be retried.
	IsRetryable() bool

	// GetRequestID returns the client-generated request ID, if available.
	// Returns empty string if not applicable.
	GetRequestID() string
}

// IsRetryable returns true if the error represents a retryable condition.
// This works with any error type in the SDK.
//
// Retryable conditions include rate limiting (429), server errors (5xx),
// and network failures. Query and validation errors are caller bugs and
// never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var novaErr NovaError
	if errors.As(err, &novaErr) {
		return novaErr.IsRetryable()
	}

	return false
}

// Sentinel errors for configuration validation.
var (
	ErrMissingClientID     = errors.New("nova: client ID is required")
	ErrMissingClientSecret = errors.New("nova: client secret is required")
	ErrMissingBaseURL      = errors.New("nova: base URL is required")
	ErrInvalidConfig       = errors.New("nova: invalid configuration")
)

// Sentinel RequestError values for use with errors.Is().
// These match on status code only.
var (
	ErrNotFound     = &RequestError{StatusCode: 404}
	ErrUnauthorized = &RequestError{StatusCode: 401}
	ErrForbidden    = &RequestError{StatusCode: 403}
	ErrRateLimited  = &RequestError{StatusCode: 429}
)

// RequestError represents a transport-level failure: a network error, an
// authentication failure, or an error response that is not a rejection of
// the query or payload itself. Transient variants (429, 5xx, network) are
// retried by the transport; the failure that surfaces is the last attempt.
type RequestError struct {
	// StatusCode is the HTTP status, or 0 for network-level failures.
	StatusCode int `json:"statusCode"`

	// Message is the service's diagnostic message, if any.
	Message string `json:"message"`

	// ErrorMessage is the service's "error" field, if any.
	ErrorMessage string `json:"error"`

	// RequestID is the client-generated request ID for correlation.
	RequestID string `json:"-"`

	// RetryAfter is the delay suggested by a Retry-After header.
	RetryAfter time.Duration `json:"-"`

	// Err is the underlying error, for network failures.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("nova: request failed: %v", e.Err)
	}

	msg := e.Message
	if msg == "" {
		msg = e.ErrorMessage
	}
	if msg != "" {
		if e.RequestID != "" {
			return fmt.Sprintf("nova: request error (status %d, request %s): %s", e.StatusCode, e.RequestID, msg)
		}
		return fmt.Sprintf("nova: request error (status %d): %s", e.StatusCode, msg)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("nova: request error (status %d, request %s)", e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("nova: request error (status %d)", e.StatusCode)
}

// Unwrap returns the underlying error for error chain support.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for errors.Is(). It matches on status
// code, allowing comparisons like:
//
//	if errors.Is(err, nova.ErrRateLimited) { ... }
func (e *RequestError) Is(target error) bool {
	t, ok := target.(*RequestError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// IsNetwork returns true if the request never produced a response.
func (e *RequestError) IsNetwork() bool {
	return e.StatusCode == 0
}

// IsUnauthorized returns true for a 401 Unauthorized response.
func (e *RequestError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsForbidden returns true for a 403 Forbidden response.
func (e *RequestError) IsForbidden() bool {
	return e.StatusCode == 403
}

// IsRateLimited returns true for a 429 Too Many Requests response.
func (e *RequestError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerError returns true for a 5xx response.
func (e *RequestError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsRetryable returns true if the request may succeed on retry.
func (e *RequestError) IsRetryable() bool {
	return e.IsNetwork() || e.IsRateLimited() || e.IsServerError()
}

// Code returns the error code for the request error.
// Implements the NovaError interface.
func (e *RequestError) Code() ErrorCode {
	switch {
	case e.IsNetwork():
		return ErrCodeNetwork
	case e.IsUnauthorized(), e.IsForbidden():
		return ErrCodeAuth
	case e.IsRateLimited():
		return ErrCodeRateLimit
	default:
		return ErrCodeRequest
	}
}

// GetRequestID returns the request ID for the failed request.
// Implements the NovaError interface.
func (e *RequestError) GetRequestID() string {
	return e.RequestID
}

// Ensure RequestError implements NovaError.
var _ NovaError = (*RequestError)(nil)

// QueryError means the service rejected the search, eval, or aggregation
// expression: malformed syntax, an unknown field, an invalid report
// command. This is a caller bug; correct the query instead of retrying.
type QueryError struct {
	// StatusCode is the HTTP status of the rejection.
	StatusCode int `json:"statusCode"`

	// Message is the service's diagnostic message.
	Message string `json:"message"`

	// ErrorMessage is the service's "error" field, if any.
	ErrorMessage string `json:"error"`

	// Query is the keywords string that was rejected, if known.
	Query string `json:"-"`

	// RequestID is the client-generated request ID for correlation.
	RequestID string `json:"-"`
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.ErrorMessage
	}
	if e.Query != "" {
		return fmt.Sprintf("nova: query rejected (status %d): %s (query: %q)", e.StatusCode, msg, e.Query)
	}
	return fmt.Sprintf("nova: query rejected (status %d): %s", e.StatusCode, msg)
}

// Code returns the error code for the query error.
// Implements the NovaError interface.
func (e *QueryError) Code() ErrorCode {
	return ErrCodeQuery
}

// IsRetryable returns false: a rejected query must be corrected, not
// retried. Implements the NovaError interface.
func (e *QueryError) IsRetryable() bool {
	return false
}

// GetRequestID returns the request ID for the rejected request.
// Implements the NovaError interface.
func (e *QueryError) GetRequestID() string {
	return e.RequestID
}

// Ensure QueryError implements NovaError.
var _ NovaError = (*QueryError)(nil)

// ValidationError represents a malformed ingestion payload or invalid
// argument, detected either locally before the request or by the service.
type ValidationError struct {
	Field   string
	Message string
	Err     error // Underlying error for wrapping
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("nova: validation error for field %q: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Code returns the error code for the validation error.
// Implements the NovaError interface.
func (e *ValidationError) Code() ErrorCode {
	return ErrCodeValidation
}

// IsRetryable returns false: validation errors should be fixed, not
// retried. Implements the NovaError interface.
func (e *ValidationError) IsRetryable() bool {
	return false
}

// GetRequestID returns an empty string; validation happens before a
// request exists. Implements the NovaError interface.
func (e *ValidationError) GetRequestID() string {
	return ""
}

// Ensure ValidationError implements NovaError.
var _ NovaError = (*ValidationError)(nil)

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// AsRequestError extracts a RequestError from the error chain.
// Returns the RequestError and true if found, nil and false otherwise.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// AsQueryError extracts a QueryError from the error chain.
// Returns the QueryError and true if found, nil and false otherwise.
func AsQueryError(err error) (*QueryError, bool) {
	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		return queryErr, true
	}
	return nil, false
}

// AsValidationError extracts a ValidationError from the error chain.
// Returns the ValidationError and true if found, nil and false otherwise.
func AsValidationError(err error) (*ValidationError, bool) {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr, true
	}
	return nil, false
}

// RetryAfter returns the suggested retry delay from a rate limit error.
// Returns 0 if the error is not a rate limit error or has no Retry-After
// hint.
func RetryAfter(err error) time.Duration {
	if reqErr, ok := AsRequestError(err); ok {
		return reqErr.RetryAfter
	}
	return 0
}

// ErrorCodeOf returns the error code for an error. It checks if the error
// implements NovaError, then falls back to inferring the code from
// sentinel errors.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var novaErr NovaError
	if errors.As(err, &novaErr) {
		return novaErr.Code()
	}

	switch {
	case errors.Is(err, ErrMissingClientID),
		errors.Is(err, ErrMissingClientSecret),
		errors.Is(err, ErrMissingBaseURL),
		errors.Is(err, ErrInvalidConfig):
		return ErrCodeConfig
	}

	return ErrCodeInternal
}

// WrapError wraps an error with additional context.
// It returns nil if err is nil.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("nova: %s: %w", message, err)
}

// WrapErrorf wraps an error with a formatted message.
// It returns nil if err is nil.
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("nova: %s: %w", message, err)
}
