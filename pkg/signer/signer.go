// Package signer computes HMAC-SHA256 signatures that protect product data in
// cart links and forms from tampering. Signatures are the lowercase hex digest
// of the store secret over code + parent code + field name + value.
//
// Besides signing individual names, values and query arguments, the package
// signs whole URLs and HTML documents in place: every cart link and every cart
// form field gets its signature appended using the "||" delimiter.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Signer signs messages with a store secret. It is safe for concurrent use.
type Signer struct {
	mu     sync.RWMutex
	secret string
	logger zerolog.Logger
}

// New returns a Signer. An empty secret leaves the signer unusable until
// SetSecret is called.
func New(secret string) *Signer {
	return &Signer{secret: secret}
}

// SetSecret replaces the secret and returns the signer.
func (s *Signer) SetSecret(secret string) *Signer {
	s.mu.Lock()
	s.secret = secret
	s.mu.Unlock()
	return s
}

// SetLogger sets the logger used for warnings and returns the signer.
func (s *Signer) SetLogger(l zerolog.Logger) *Signer {
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
	return s
}

// HasSecret reports whether a secret is configured.
func (s *Signer) HasSecret() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secret != ""
}

func (s *Signer) log() zerolog.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}

// Message returns the hex HMAC-SHA256 of msg.
func (s *Signer) Message(msg string) (string, error) {
	s.mu.RLock()
	secret := s.secret
	s.mu.RUnlock()
	if secret == "" {
		return "", ErrNoSecret
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

func (s *Signer) product(code, name string, v Value) (string, error) {
	return s.Message(code + name + v.hashInput())
}

// Name returns the signed form of a field name, used for the name attribute
// of inputs and textareas. Spaces in name become underscores. Editable values
// get an "||open" suffix.
func (s *Signer) Name(name, code, parentCode string, v Value) (string, error) {
	name = underscoreSpaces(name)
	sig, err := s.product(code+parentCode, name, v)
	if err != nil {
		return "", err
	}
	out := encodeURIComponent(name) + "||" + sig
	if v.IsEditable() {
		out += "||open"
	}
	return out, nil
}

// Value returns the signed form of a field value, used for the value attribute
// of radio buttons and select options.
func (s *Signer) Value(name, code, parentCode string, v Value) (string, error) {
	name = underscoreSpaces(name)
	sig, err := s.product(code+parentCode, name, v)
	if err != nil {
		return "", err
	}
	if v.IsEditable() {
		return "||open||" + sig, nil
	}
	return v.String() + "||" + sig, nil
}

// QueryArg returns a signed name=value query argument. Spaces in name and code
// become underscores; encoded spaces in the output become "+".
func (s *Signer) QueryArg(name, code string, v Value) (string, error) {
	key, val, err := s.queryArg(name, code, v)
	if err != nil {
		return "", err
	}
	return key + "=" + val, nil
}

func (s *Signer) queryArg(name, code string, v Value) (string, string, error) {
	name = underscoreSpaces(name)
	code = underscoreSpaces(code)
	sig, err := s.product(code, name, v)
	if err != nil {
		return "", "", err
	}
	key := plusSpaces(encodeURIComponent(name)) + "||" + sig
	val := plusSpaces(encodeURIComponent(v.hashInput()))
	return key, val, nil
}

func underscoreSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}

func plusSpaces(s string) string {
	return strings.ReplaceAll(s, "%20", "+")
}
