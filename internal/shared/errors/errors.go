package errors

import (
	"errors"
	"fmt"
)

// AppError represents an application error with additional context
type AppError struct {
	Code    string // Error code for the presentation layer
	Message string // Human-readable message
	Err     error  // Underlying error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeLoad             = "LOAD_ERROR"
	ErrCodeMutation         = "MUTATION_ERROR"
	ErrCodeQuoteUnavailable = "QUOTE_UNAVAILABLE"
	ErrCodeSearch           = "SEARCH_ERROR"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Load creates a load error (initial list fetch failed; blocking,
// recovery is a manual reload)
func Load(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeLoad,
		Message: message,
		Err:     err,
	}
}

// Mutation creates a mutation error (create/edit/delete/sell request failed;
// transient notification)
func Mutation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeMutation,
		Message: message,
		Err:     err,
	}
}

// QuoteUnavailable creates a quote unavailability error
func QuoteUnavailable(symbol string) *AppError {
	return &AppError{
		Code:    ErrCodeQuoteUnavailable,
		Message: fmt.Sprintf("no quote available for %s", symbol),
	}
}

// Search creates a search error (quote service search failed or timed out)
func Search(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeSearch,
		Message: message,
		Err:     err,
	}
}

// Validation creates a validation error
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// CodeOf returns the error code of an AppError, or empty string
func CodeOf(err error) string {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code
	}
	return ""
}
