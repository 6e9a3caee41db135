package webhook

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	assert.False(t, Verify(Params{Signature: "i'm", Payload: "very", Key: "wrong"}))
	assert.True(t, Verify(Params{
		Signature: "055c620a2d1e459b9c4ed676146a6cce9d2ec2e7caf3dba64608c30c4477f532",
		Payload:   "this, on the other hand",
		Key:       "is definitely right",
	}))
}

func TestSign(t *testing.T) {
	sig := Sign([]byte("this, on the other hand"), "is definitely right")
	assert.Equal(t, "055c620a2d1e459b9c4ed676146a6cce9d2ec2e7caf3dba64608c30c4477f532", sig)
}

func TestMiddleware(t *testing.T) {
	const key = "is definitely right"
	const payload = "this, on the other hand"

	var received string
	handler := Middleware(key)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		received = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name      string
		signature string
		status    int
	}{
		{name: "valid", signature: Sign([]byte(payload), key), status: http.StatusNoContent},
		{name: "invalid", signature: Sign([]byte(payload), "other"), status: http.StatusUnauthorized},
		{name: "missing", signature: "", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			received = ""
			req := httptest.NewRequest(http.MethodPost, "/webhooks", strings.NewReader(payload))
			if tt.signature != "" {
				req.Header.Set(SignatureHeader, tt.signature)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusNoContent {
				assert.Equal(t, payload, received)
			} else {
				assert.Empty(t, received)
				assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			}
		})
	}
}
