// Package feedback defines the error category whose message is shown
// verbatim to the person who sent a command.
package feedback

import (
	"errors"
	"fmt"
)

// Error is a user-facing error. Anything else coming out of the parser or
// the handlers is treated as an internal failure and never shown as-is.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

// New returns a feedback error with the given message.
func New(msg string) error {
	return &Error{Msg: msg}
}

// Errorf formats a feedback error.
func Errorf(format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err (or anything it wraps or joins) is a feedback error.
func Is(err error) bool {
	var fe *Error
	return errors.As(err, &fe)
}
