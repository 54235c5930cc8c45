package domain

import (
	"errors"
	"fmt"
)

// DomainError is a client-side error with a structured error code.
//
// Status carries the HTTP status that produced the error, or zero when the
// failure happened before a response arrived.
type DomainError struct {
	Code    string // Error code (e.g., "SK-AUTH-4010")
	Message string // Human-readable message
	Details string // Optional additional details, usually the server's message
	Status  int    // HTTP status code (if any)
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support. Two DomainErrors match when their codes match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

func (e *DomainError) clone() *DomainError {
	c := *e
	return &c
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := e.clone()
	c.Details = details
	return c
}

// WithStatus returns a copy of the error carrying the HTTP status.
func (e *DomainError) WithStatus(status int) *DomainError {
	c := e.clone()
	c.Status = status
	return c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := e.clone()
	c.Cause = cause
	return c
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// StatusOf returns the HTTP status carried by the outermost DomainError in err's chain.
func StatusOf(err error) int {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Status
	}
	return 0
}

// DetailsOf returns the details of the outermost DomainError, falling back to err.Error().
func DetailsOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) && de.Details != "" {
		return de.Details
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// ============================================================================
// Authentication and session errors
// ============================================================================

var (
	// ErrAuthentication indicates the server rejected the submitted credentials.
	ErrAuthentication = NewDomainError("SK-AUTH-4010", "authentication failed")

	// ErrSessionExpired indicates the access token was rejected and could not be refreshed.
	ErrSessionExpired = NewDomainError("SK-SESS-4011", "session expired")

	// ErrRefreshRejected indicates the refresh endpoint answered with a non-success status.
	ErrRefreshRejected = NewDomainError("SK-SESS-4012", "refresh rejected")

	// ErrNotAuthenticated indicates an operation needs a stored access token.
	ErrNotAuthenticated = NewDomainError("SK-SESS-4010", "not authenticated")
)

// ============================================================================
// Request errors
// ============================================================================

var (
	// ErrValidation indicates the server rejected submitted fields.
	ErrValidation = NewDomainError("SK-VAL-4000", "validation failed")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = NewDomainError("SK-REQ-4040", "not found")

	// ErrRequestRejected indicates any other 4xx response.
	ErrRequestRejected = NewDomainError("SK-REQ-4000", "request rejected")
)

// ============================================================================
// System errors
// ============================================================================

var (
	// ErrNetwork indicates a transport failure, DNS error or timeout.
	ErrNetwork = NewDomainError("SK-NET-5030", "network error")

	// ErrServer indicates a 5xx response or a response that breaks the wire contract.
	ErrServer = NewDomainError("SK-SYS-5000", "server error")

	// ErrStore indicates the credential store could not persist or load a record.
	ErrStore = NewDomainError("SK-STORE-5001", "credential store error")

	// ErrStoreKeyNotFound indicates a credential store record does not exist.
	ErrStoreKeyNotFound = NewDomainError("SK-STORE-4040", "credential record not found")
)

// ============================================================================
// Argument and configuration errors
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("SK-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("SK-ARG-1002", "missing required argument")

	// ErrInvalidConfig indicates the configuration cannot be used.
	ErrInvalidConfig = NewDomainError("SK-CFG-1001", "invalid configuration")
)
