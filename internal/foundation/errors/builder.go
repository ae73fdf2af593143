package errors

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

// NewError creates a new ErrorBuilder with the specified category and message.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError creates a new ErrorBuilder that wraps an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		message:  message,
		cause:    err,
		context:  make(ErrorContext),
	}
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithCause sets the underlying error.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	return b.WithSeverity(SeverityFatal)
}

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	return b.WithSeverity(SeverityWarning)
}

// Build creates the final ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
	}
}

// Convenience constructors for common error patterns

// ConfigError creates a configuration error.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// ValidationError creates a validation error.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

// ToolchainError creates an error for a compiler toolchain that could not be queried.
func ToolchainError(message string) *ErrorBuilder {
	return NewError(CategoryToolchain, message).Fatal()
}

// BuildError creates a build processing error.
func BuildError(message string) *ErrorBuilder {
	return NewError(CategoryBuild, message).Fatal()
}

// FileSystemError creates a filesystem error.
func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message).Fatal()
}

// DependencyError creates an error for a runtime dependency that cannot be staged.
func DependencyError(message string) *ErrorBuilder {
	return NewError(CategoryDependency, message).Fatal()
}

// StateError creates an error for persisted build state (the build counter).
func StateError(message string) *ErrorBuilder {
	return NewError(CategoryState, message).Fatal()
}

// RuntimeError creates a runtime error.
func RuntimeError(message string) *ErrorBuilder {
	return NewError(CategoryRuntime, message).Fatal()
}

// InternalError creates an internal error.
func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
