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
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Cleaning errors
	ErrInvalidTier       ErrorCode = "INVALID_TIER"
	ErrResolutionGap     ErrorCode = "RESOLUTION_GAP"
	ErrBackup            ErrorCode = "BACKUP"
	ErrStoreAccess       ErrorCode = "STORE_ACCESS"
	ErrNoStoresProcessed ErrorCode = "NO_STORES_PROCESSED"

	// Ledger errors
	ErrLedgerIO ErrorCode = "LEDGER_IO"

	// Provisioning errors
	ErrSettingsParse ErrorCode = "SETTINGS_PARSE"
	ErrComponent     ErrorCode = "COMPONENT"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// KeepError represents a structured error with code and details
type KeepError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *KeepError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *KeepError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *KeepError) Is(target error) bool {
	var targetErr *KeepError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new KeepError with the given code and message
func New(code ErrorCode, message string) *KeepError {
	return &KeepError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new KeepError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *KeepError {
	return &KeepError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a KeepError
func Wrap(err error, code ErrorCode, message string) *KeepError {
	if err == nil {
		return nil
	}
	return &KeepError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *KeepError {
	if err == nil {
		return nil
	}
	return &KeepError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *KeepError) WithDetail(key string, value interface{}) *KeepError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *KeepError) WithDetails(details map[string]interface{}) *KeepError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var keepErr *KeepError
	if errors.As(err, &keepErr) {
		return keepErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a KeepError
func GetErrorCode(err error) ErrorCode {
	var keepErr *KeepError
	if errors.As(err, &keepErr) {
		return keepErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a KeepError
func GetErrorDetails(err error) map[string]interface{} {
	var keepErr *KeepError
	if errors.As(err, &keepErr) {
		return keepErr.Details
	}
	return nil
}
