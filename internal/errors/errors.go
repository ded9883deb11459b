package errors

import (
	"fmt"
)

// Kind categorizes an error by the pipeline stage that produced it.
type Kind int

const (
	// KindConfig - missing or invalid configuration
	KindConfig Kind = iota
	// KindValidation - malformed caller input (e.g. repo descriptors)
	KindValidation
	// KindTransport - network, auth or rate-limit failures against the GitHub API
	KindTransport
	// KindExtraction - payload shapes that break the nested-field contract
	KindExtraction
	// KindPersistence - sink I/O or connection failures
	KindPersistence
	// KindInternal - unexpected internal state
	KindInternal
)

// Error is a structured error carrying its pipeline category and context.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by kind, so errors.Is(err, &Error{Kind: KindTransport})
// selects every transport failure regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithContext attaches a key/value pair to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a kind and message. Returns nil for nil.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// Wrapf wraps an existing error with formatting.
func Wrapf(err error, kind Kind, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: err}
}

// Convenience constructors for the pipeline's error taxonomy.

// ConfigError creates a configuration error.
func ConfigError(message string) *Error {
	return New(KindConfig, message)
}

// ValidationErrorf creates a validation error with formatting. Validation
// errors abort a whole batch rather than a single tuple.
func ValidationErrorf(format string, args ...any) *Error {
	return Newf(KindValidation, format, args...)
}

// TransportError wraps a GitHub API failure.
func TransportError(err error, message string) *Error {
	return Wrap(err, KindTransport, message)
}

// ExtractionErrorf creates an extraction error with formatting.
func ExtractionErrorf(format string, args ...any) *Error {
	return Newf(KindExtraction, format, args...)
}

// PersistenceError wraps a sink failure.
func PersistenceError(err error, message string) *Error {
	return Wrap(err, KindPersistence, message)
}

// GetKind returns the kind of an error, KindInternal for foreign errors.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
