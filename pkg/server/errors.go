package server

import (
	"errors"
	"fmt"
)

type ErrorCode uint

const (
	ErrInternalServerError ErrorCode = iota
	ErrNotFound
	ErrBadParamInput
	ErrConflict
	ErrServiceUnavailable
	ErrTimeout
)

// Error wraps a low-level error with an application error code and a
// user-facing message. Handlers map the code to an HTTP status.
type Error struct {
	orig error
	msg  string
	code ErrorCode
}

func NewErrorf(code ErrorCode, format string, a ...interface{}) error {
	return WrapErrorf(nil, code, format, a...)
}

func WrapErrorf(orig error, code ErrorCode, format string, a ...interface{}) error {
	return &Error{
		orig: orig,
		code: code,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func (e *Error) Code() ErrorCode {
	return e.code
}

// Code extracts the application error code from err, walking the wrap
// chain. Unrecognized errors report as internal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return ErrInternalServerError
}
