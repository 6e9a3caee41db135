// Package httpx holds the small set of response helpers shared by the
// HTTP handlers of the module: JSON replies, JSON error bodies and a
// response writer that remembers whether anything was written.
package httpx

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/foxy/foxy-go/internal/common/apperrors"
)

// DefaultBodyLimit caps request bodies read with ReadBody.
const DefaultBodyLimit int64 = 1 << 20

// ReadBody reads the whole request body, failing when it is larger than limit
// bytes. A limit of zero or less uses DefaultBodyLimit.
func ReadBody(r *http.Request, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}
	if r.Body == nil {
		return nil, ErrUnableToReadRequest()
	}
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrRequestTooLarge(limit)
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("unable to read request body")
		return nil, ErrUnableToReadRequest()
	}
	return data, nil
}

// Response is what a RequestHandler returns on success.
type Response struct {
	StatusCode  int
	Response    any
	ContentType string // application/json when empty
}

// RequestHandler handles a request and returns either a response or an error.
type RequestHandler func(r *http.Request) (*Response, error)

// WrapHttpRsp adapts a RequestHandler to http.HandlerFunc, turning errors
// into JSON error bodies.
func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			SendAnyError(w, err)
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}

		switch rsp.ContentType {
		case "", "application/json":
			SendJsonRsp(r.Context(), w, rsp.StatusCode, rsp.Response)
		case "text/plain":
			s, _ := rsp.Response.(string)
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(rsp.StatusCode)
			w.Write([]byte(s))
		default:
			ErrApplicationError("unsupported response type").Send(w)
		}
	})
}

// SendAnyError writes err as a JSON error body. Errors carrying a status
// code keep it, anything else is a 500.
func SendAnyError(w http.ResponseWriter, err error) {
	var httperror *Error
	if errors.As(err, &httperror) {
		httperror.Send(w)
		return
	}
	var appErr apperrors.Error
	if errors.As(err, &appErr) {
		SendError(w, appErr)
		return
	}
	ErrApplicationError(err.Error()).Send(w)
}
