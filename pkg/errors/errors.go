package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrPermission     ErrorCode = "PERMISSION"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Product errors
	ErrProductNotFound ErrorCode = "PRODUCT_NOT_FOUND"
	ErrProductInvalid  ErrorCode = "PRODUCT_INVALID"

	// Pipeline errors
	ErrPipelineNotFound ErrorCode = "PIPELINE_NOT_FOUND"
	ErrStepExecute      ErrorCode = "STEP_EXECUTE"
	ErrStepCancelled    ErrorCode = "STEP_CANCELLED"

	// XML document errors
	ErrXMLParse ErrorCode = "XML_PARSE"
	ErrXMLPath  ErrorCode = "XML_PATH"
	ErrXMLMerge ErrorCode = "XML_MERGE"

	// Instance errors
	ErrInstanceNotFound ErrorCode = "INSTANCE_NOT_FOUND"
	ErrInstanceExists   ErrorCode = "INSTANCE_EXISTS"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// SimError represents a structured error with code and details
type SimError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SimError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SimError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SimError) Is(target error) bool {
	var targetErr *SimError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SimError with the given code and message
func New(code ErrorCode, message string) *SimError {
	return &SimError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SimError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SimError {
	return &SimError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SimError
func Wrap(err error, code ErrorCode, message string) *SimError {
	if err == nil {
		return nil
	}
	return &SimError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SimError {
	if err == nil {
		return nil
	}
	return &SimError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SimError) WithDetail(key string, value interface{}) *SimError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *SimError) WithDetails(details map[string]interface{}) *SimError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code.
// The outermost SimError in the chain decides.
func IsErrorCode(err error, code ErrorCode) bool {
	var simErr *SimError
	if errors.As(err, &simErr) {
		return simErr.Code == code
	}
	return false
}

// HasErrorCode reports whether any SimError in the chain carries code.
func HasErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var simErr *SimError
		if !errors.As(err, &simErr) {
			return false
		}
		if simErr.Code == code {
			return true
		}
		err = simErr.Wrapped
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SimError
func GetErrorCode(err error) ErrorCode {
	var simErr *SimError
	if errors.As(err, &simErr) {
		return simErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a SimError
func GetErrorDetails(err error) map[string]interface{} {
	var simErr *SimError
	if errors.As(err, &simErr) {
		return simErr.Details
	}
	return nil
}
