package httpx

import (
	"fmt"
	"net/http"

	"github.com/foxy/foxy-go/internal/common/apperrors"
)

// Error is an HTTP error reply. Receivers get {"result":0,"error":"..."}.
type Error struct {
	Description string
	StatusCode  int
}

type errorRsp struct {
	Result int    `json:"result"`
	Error  string `json:"error"`
}

func newError(status int, description string, override []string) *Error {
	if len(override) > 0 && override[0] != "" {
		description = override[0]
	}
	return &Error{Description: description, StatusCode: status}
}

// Send writes the error as JSON. A nil writer is ignored.
func (e *Error) Send(w http.ResponseWriter) {
	if w == nil {
		return
	}
	body, err := json.Marshal(errorRsp{Error: e.Description})
	if err != nil {
		http.Error(w, "unable to encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	w.Write(body)
}

func (e *Error) Error() string {
	return e.Description
}

// SendError replies with an application error, using 500 when the error
// carries no status.
func SendError(w http.ResponseWriter, err apperrors.Error) {
	if err == nil {
		return
	}
	status := err.StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}
	(&Error{StatusCode: status, Description: err.ErrorAll()}).Send(w)
}

func ErrUnableToReadRequest() *Error {
	return newError(http.StatusBadRequest, "unable to read request data", nil)
}

func ErrApplicationError(msg ...string) *Error {
	return newError(http.StatusInternalServerError, "unable to process request", msg)
}

func ErrUnAuthorized(msg ...string) *Error {
	return newError(http.StatusUnauthorized, "unable to authenticate request", msg)
}

// ErrMissingSignature is sent for deliveries without the signature header.
func ErrMissingSignature(header string) *Error {
	return newError(http.StatusUnauthorized, "missing "+header+" header", nil)
}

func ErrRequestTimeout() *Error {
	return newError(http.StatusRequestTimeout, "request timed out", nil)
}

func ErrRequestTooLarge(limit int64) *Error {
	return newError(http.StatusRequestEntityTooLarge, fmt.Sprintf("request body too large (limit: %d bytes)", limit), nil)
}
