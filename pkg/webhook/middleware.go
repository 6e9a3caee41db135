package webhook

import (
	"bytes"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/foxy/foxy-go/internal/common/httpx"
)

// Middleware rejects requests whose body does not match SignatureHeader
// under key. Accepted requests reach next with their body intact.
func Middleware(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			signature := r.Header.Get(SignatureHeader)
			if signature == "" {
				httpx.ErrMissingSignature(SignatureHeader).Send(w)
				return
			}

			body, err := httpx.ReadBody(r, 0)
			if err != nil {
				httpx.SendAnyError(w, err)
				return
			}

			if !Verify(Params{Signature: signature, Payload: string(body), Key: key}) {
				log.Ctx(r.Context()).Warn().Msg("webhook signature mismatch")
				httpx.ErrUnAuthorized("invalid webhook signature").Send(w)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
