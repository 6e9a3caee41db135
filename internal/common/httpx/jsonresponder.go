package httpx

import (
	"context"
	"net/http"

	jsonitor "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/foxy/foxy-go/internal/common/logtrace"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

// SendJsonRsp writes msg as a JSON reply. Strings and byte slices holding
// valid JSON go out unchanged; anything else is marshaled.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, msg any) {
	body, ok := rawJSON(msg)
	if !ok {
		var err error
		if body, err = json.Marshal(msg); err != nil {
			log.Ctx(ctx).Err(err).Msg("unable to marshal json")
			ErrApplicationError("Id: " + logtrace.RequestIdFromContext(ctx)).Send(w)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}

func rawJSON(msg any) ([]byte, bool) {
	var b []byte
	switch m := msg.(type) {
	case string:
		b = []byte(m)
	case []byte:
		b = m
	default:
		return nil, false
	}
	return b, json.Valid(b)
}
