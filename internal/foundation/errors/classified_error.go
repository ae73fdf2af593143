package errors

import (
	stderrors "errors"
	"fmt"
)

// ClassifiedError represents a structured error with category, severity, and context.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

// Error implements the standard error interface.
func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
}

// Unwrap implements Go 1.13+ error unwrapping.
func (e *ClassifiedError) Unwrap() error {
	return e.cause
}

// Category returns the error category.
func (e *ClassifiedError) Category() ErrorCategory {
	return e.category
}

// Severity returns the error severity.
func (e *ClassifiedError) Severity() ErrorSeverity {
	return e.severity
}

// Message returns the error message.
func (e *ClassifiedError) Message() string {
	return e.message
}

// Cause returns the underlying error.
func (e *ClassifiedError) Cause() error {
	return e.cause
}

// Context returns the error context.
func (e *ClassifiedError) Context() ErrorContext {
	return e.context
}

// WithContext adds context to the error and returns a new error.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	newContext := e.context.Merge(ErrorContext{key: value})
	return &ClassifiedError{
		category: e.category,
		severity: e.severity,
		message:  e.message,
		cause:    e.cause,
		context:  newContext,
	}
}

// Is implements error comparison for Go 1.13+ error handling.
func (e *ClassifiedError) Is(target error) bool {
	if other, ok := target.(*ClassifiedError); ok {
		return e.category == other.category && e.message == other.message
	}
	return false
}

// IsCategory checks if the error belongs to a specific category.
func (e *ClassifiedError) IsCategory(category ErrorCategory) bool {
	return e.category == category
}

// IsFatal checks if the error is fatal (should stop execution).
func (e *ClassifiedError) IsFatal() bool {
	return e.severity == SeverityFatal
}

// Helper functions for error detection and extraction

// IsClassified checks if any error in the chain is a ClassifiedError.
func IsClassified(err error) bool {
	_, ok := AsClassified(err)
	return ok
}

// AsClassified finds the first ClassifiedError in the chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory checks if the first classified error in the chain belongs to a category.
func HasCategory(err error, category ErrorCategory) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.IsCategory(category)
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.Category()
	}
	return CategoryInternal
}
