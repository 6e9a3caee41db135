package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

type appError struct {
	msg        string
	parent     error
	causes     []error
	statusCode int
}

// New creates a root error kind.
func New(msg string) Error {
	return &appError{msg: msg}
}

func (e *appError) Error() string {
	return e.msg
}

// ErrorAll joins the message with the messages of all causes.
func (e *appError) ErrorAll() string {
	var b strings.Builder
	b.WriteString(e.msg)
	for _, c := range e.causes {
		b.WriteString(": ")
		b.WriteString(c.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.parent
}

func (e *appError) Causes() []error {
	return e.causes
}

func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		parent:     e,
		statusCode: e.statusCode,
	}
}

func (e *appError) Msg(msg string) Error {
	return e.MsgErr(msg)
}

func (e *appError) Msgf(format string, args ...any) Error {
	return e.MsgErr(fmt.Sprintf(format, args...))
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{
		msg:        msg,
		parent:     e,
		causes:     append(append([]error{}, e.causes...), errs...),
		statusCode: e.statusCode,
	}
}

func (e *appError) Err(errs ...error) Error {
	return e.MsgErr(e.msg, errs...)
}

func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statusCode = code
	cp.parent = e
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statusCode
}

// Is matches the error against its ancestors and its causes.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*appError); ok && t == e {
		return true
	}
	if e.parent != nil && errors.Is(e.parent, target) {
		return true
	}
	for _, c := range e.causes {
		if errors.Is(c, target) {
			return true
		}
	}
	return false
}

// StatusCodeOf returns the status code carried by err or any Error it wraps.
func StatusCodeOf(err error) int {
	var ae Error
	if errors.As(err, &ae) {
		return ae.StatusCode()
	}
	return 0
}
