package core

import "github.com/pkg/errors"

type (
	// FieldError ties a validation message to one request field.
	FieldError struct {
		Field string
		Error string
	}

	// ValidationError is a user-correctable input error; the web layer
	// renders it as a 400 with per-field messages.
	ValidationError struct {
		Err    error
		Fields []FieldError
	}
)

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown marks a condition the process cannot recover from in place,
// e.g. the visitor-state store losing its database connection. The web
// layer's error handler turns it into a graceful stop.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown reports whether err, however wrapped, calls for a shutdown.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
