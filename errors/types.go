package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Session errors
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeCollision        ErrorCode = "COLLISION"
	ErrCodeStaleMetadata    ErrorCode = "STALE_METADATA"
	ErrCodeDiscoveryTimeout ErrorCode = "DISCOVERY_TIMEOUT"
	ErrCodeAborted          ErrorCode = "ABORTED"

	// External process errors
	ErrCodeDependencyMissing ErrorCode = "DEPENDENCY_MISSING"
	ErrCodeCommandFailed     ErrorCode = "COMMAND_FAILED"

	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// RemuxError represents a structured error with context
type RemuxError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *RemuxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RemuxError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *RemuxError) WithDetail(key string, value interface{}) *RemuxError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Detail returns a detail value rendered as a string, or "" when absent.
func (e *RemuxError) Detail(key string) string {
	v, ok := e.Details[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// ToJSON converts the error to JSON
func (e *RemuxError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new RemuxError
func New(code ErrorCode, message string) *RemuxError {
	return &RemuxError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a RemuxError
func Wrap(err error, code ErrorCode, message string) *RemuxError {
	return &RemuxError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// As returns the first RemuxError in err's chain.
func As(err error) (*RemuxError, bool) {
	for err != nil {
		if remuxErr, ok := err.(*RemuxError); ok {
			return remuxErr, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// Is checks if an error is a specific RemuxError code
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	remuxErr, ok := As(err)
	if !ok {
		return ""
	}
	return remuxErr.Code
}
