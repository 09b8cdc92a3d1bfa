package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a business error so the controller layer can pick a
// transport status without inspecting message text.
type Kind string

const (
	KindValidation    Kind = "VALIDATION"
	KindNotFound      Kind = "NOT_FOUND"
	KindConflict      Kind = "CONFLICT"
	KindAuthorization Kind = "AUTHORIZATION"
	KindInvariant     Kind = "INVARIANT"
	// KindTransient marks storage-level failures (timeout, lost
	// connection) where nothing was committed. The only retryable kind.
	KindTransient Kind = "TRANSIENT"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...any) error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func Invariant(format string, args ...any) error {
	return &Error{Kind: KindInvariant, Message: fmt.Sprintf(format, args...)}
}

func Transient(msg string, err error) error {
	return &Error{Kind: KindTransient, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInvariant for errors that did
// not come out of this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInvariant
}

// IsKinded reports whether err carries one of the kinds above.
func IsKinded(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
