package repositories

import "fmt"

// ErrorKind categorises persistence failures for the service layer.
type ErrorKind string

const (
	// ErrorKindUnknown represents an unspecified failure.
	ErrorKindUnknown ErrorKind = "unknown"
	// ErrorKindNotFound indicates the requested record does not exist.
	ErrorKindNotFound ErrorKind = "not_found"
	// ErrorKindConflict indicates a uniqueness or stock-consistency violation.
	ErrorKindConflict ErrorKind = "conflict"
	// ErrorKindUnavailable indicates the datastore could not be reached.
	ErrorKindUnavailable ErrorKind = "unavailable"
)

// Error is the concrete RepositoryError returned by the persistence layer.
type Error struct {
	Op      string
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap exposes the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsNotFound implements RepositoryError.
func (e *Error) IsNotFound() bool { return e != nil && e.Kind == ErrorKindNotFound }

// IsConflict implements RepositoryError.
func (e *Error) IsConflict() bool { return e != nil && e.Kind == ErrorKindConflict }

// IsUnavailable implements RepositoryError.
func (e *Error) IsUnavailable() bool { return e != nil && e.Kind == ErrorKindUnavailable }

// NewError constructs a categorised repository error.
func NewError(op string, kind ErrorKind, message string, err error) *Error {
	if message == "" {
		message = string(kind)
	}
	return &Error{Op: op, Kind: kind, Message: message, Err: err}
}

var _ RepositoryError = (*Error)(nil)
