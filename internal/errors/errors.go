package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a PromptHive error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrAccessDenied       ErrorCode = "ACCESS_DENIED"       // 403
	ErrPermissionLost     ErrorCode = "PERMISSION_LOST"     // 403
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrFileNotFound       ErrorCode = "FILE_NOT_FOUND"      // 404
	ErrUninitialized      ErrorCode = "UNINITIALIZED"       // 409
	ErrUnsupportedVersion ErrorCode = "UNSUPPORTED_VERSION" // 422
	ErrInvalidDocument    ErrorCode = "INVALID_DOCUMENT"    // 422
	ErrSelectionCancelled ErrorCode = "SELECTION_CANCELLED" // 499
	ErrCancelled          ErrorCode = "CANCELLED"           // 499
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// HiveError represents a structured error with code, status, and details.
type HiveError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// Err is the underlying cause, if any. It is never shown to users.
	Err error
}

// Error implements the error interface.
func (e *HiveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *HiveError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *HiveError {
	return &HiveError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUninitialized creates a 409 error for operations that need an active project folder.
func NewUninitialized() *HiveError {
	return &HiveError{
		Code:    ErrUninitialized,
		Status:  409,
		Message: "no project folder is open; run `prompthive open <dir>` first",
	}
}

// NewSelectionCancelled creates a 499 error for a dismissed folder picker.
func NewSelectionCancelled() *HiveError {
	return &HiveError{
		Code:    ErrSelectionCancelled,
		Status:  499,
		Message: "user cancelled folder selection",
	}
}

// NewAccessDenied creates a 403 error when the platform refuses a folder.
// The message tells the user what to do instead.
func NewAccessDenied(path string, cause error) *HiveError {
	target := "the selected folder"
	if path != "" {
		target = fmt.Sprintf("%q", path)
	}
	return &HiveError{
		Code:    ErrAccessDenied,
		Status:  403,
		Message: fmt.Sprintf("access to %s was blocked because it is a system or root folder; please select a non-system folder (e.g. ~/Documents/Prompts)", target),
		Details: map[string]any{"path": path},
		Err:     cause,
	}
}

// NewPermissionLost creates a 403 error when a previously granted folder is no longer accessible.
func NewPermissionLost(name string, cause error) *HiveError {
	return &HiveError{
		Code:    ErrPermissionLost,
		Status:  403,
		Message: fmt.Sprintf("access to project folder %q was lost; open the folder again", name),
		Details: map[string]any{"folder": name},
		Err:     cause,
	}
}

// NewUnsupportedVersion creates a 422 error for documents written by a newer schema.
func NewUnsupportedVersion(version int) *HiveError {
	return &HiveError{
		Code:    ErrUnsupportedVersion,
		Status:  422,
		Message: fmt.Sprintf("database version %d is not supported by this build", version),
		Details: map[string]any{"version": version},
	}
}

// NewInvalidDocument creates a 422 error for JSON that does not have the database shape.
func NewInvalidDocument(cause error) *HiveError {
	msg := "database document has an invalid shape"
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &HiveError{
		Code:    ErrInvalidDocument,
		Status:  422,
		Message: msg,
		Err:     cause,
	}
}

// NewNotFound creates a 404 error for when a prompt or collection cannot be found.
func NewNotFound(kind, identifier string) *HiveError {
	return &HiveError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing file.
func NewFileNotFound(path string) *HiveError {
	return &HiveError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewCancelled creates a 499 error when an operation's context was cancelled.
func NewCancelled(operation string) *HiveError {
	return &HiveError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details and Err for logging.
func NewInternal(err error) *HiveError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &HiveError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		Err:     err,
	}
}

// Is checks if an error is (or wraps) a HiveError with the given code.
func Is(err error, code ErrorCode) bool {
	var hErr *HiveError
	if stderrors.As(err, &hErr) {
		return hErr.Code == code
	}
	return false
}
