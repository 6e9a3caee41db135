package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/foxy/foxy-go/internal/common/httpx"
)

// SetTimeout bounds the request context by timeout. A handler that gives up
// because the deadline passed without replying gets a 408.
func SetTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			rw := httpx.NewResponseWriter(w)
			rw.Header().Set("X-Foxy-Timeout", timeout.String())

			next.ServeHTTP(rw, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !rw.Written() {
				log.Ctx(ctx).Error().Msg("request timed out")
				httpx.ErrRequestTimeout().Send(rw)
			}
		})
	}
}
