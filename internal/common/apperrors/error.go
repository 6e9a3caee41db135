// Package apperrors implements chained errors used across the client. An error
// value can act as a root kind, derive child kinds, attach causes, and carry the
// HTTP status code of the response that produced it.
package apperrors

// Error is the error type shared by every package in the module. All methods
// return a new Error so kinds can be declared once and specialised at call sites.
type Error interface {
	error
	Unwrap() error

	New(msg string) Error                  // child kind with a new message
	Msg(msg string) Error                  // new message under the same kind
	Msgf(format string, args ...any) Error // formatted variant of Msg
	MsgErr(msg string, err ...error) Error // new message with extra causes
	Err(err ...error) Error                // same message with extra causes
	SetStatusCode(int) Error               // copy with an HTTP status code
	StatusCode() int                       // status code, 0 when unset
	ErrorAll() string                      // message followed by every cause
	Causes() []error                       // attached causes in order
}
