// Package webhook verifies the signatures the store attaches to webhook
// deliveries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "Foxy-Webhook-Signature"

// Params are the inputs of Verify.
type Params struct {
	Signature string // value of SignatureHeader
	Payload   string // raw request body
	Key       string // webhook encryption key
}

// Sign returns the lowercase hex HMAC-SHA256 of payload under key.
func Sign(payload []byte, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether p.Signature matches the payload.
func Verify(p Params) bool {
	expected := Sign([]byte(p.Payload), p.Key)
	return hmac.Equal([]byte(expected), []byte(p.Signature))
}
