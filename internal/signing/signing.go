// Package signing implements a minimal HMAC helper for the session cookie.
// A token is "<id>.<expires unix>.<hex signature>".
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMalformed is returned for tokens that do not have three parts.
	ErrMalformed = errors.New("malformed token")
	// ErrBadSignature is returned when the signature does not match.
	ErrBadSignature = errors.New("bad token signature")
	// ErrExpired is returned for correctly signed tokens past their expiry.
	ErrExpired = errors.New("token expired")
)

// Signer generates and validates HMAC based signatures.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer.
func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret}
}

// Sign returns the hex signature for inputs.
func (s *Signer) Sign(id string, expiresUnix int64) string {
	mac := hmac.New(sha256.New, s.secret)
	payload := fmt.Sprintf("%s:%d", id, expiresUnix)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate compares the provided signature with the expected.
func (s *Signer) Validate(id, expires, signature string) bool {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return false
	}
	expected := s.Sign(id, exp)
	// hmac.Equal performs constant-time comparison to avoid timing attacks.
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Token packs id and expiry into a signed cookie value.
func (s *Signer) Token(id string, expires time.Time) string {
	exp := expires.Unix()
	return id + "." + strconv.FormatInt(exp, 10) + "." + s.Sign(id, exp)
}

// Parse checks a token produced by Token and returns its id.
func (s *Signer) Parse(token string, now time.Time) (string, error) {
	// IDs are UUIDs and never contain dots.
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" {
		return "", ErrMalformed
	}
	id, expires, sig := parts[0], parts[1], parts[2]
	if !s.Validate(id, expires, sig) {
		return "", ErrBadSignature
	}
	exp, _ := strconv.ParseInt(expires, 10, 64)
	if now.Unix() > exp {
		return "", ErrExpired
	}
	return id, nil
}
