package token

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Parse verifies the token's signature against the secret and the exact
// salt it was issued with, enforces maxAge against the embedded issuance
// timestamp, and decodes the payload. The signature is checked before the
// age so a forged timestamp cannot extend a token's life.
func Parse[T any](tok string, secret string, salt []byte, maxAge time.Duration) (T, error) {
	var zero T

	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		return zero, ErrInvalidToken
	}

	data, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return zero, ErrInvalidToken
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return zero, ErrInvalidToken
	}

	if subtle.ConstantTimeCompare(sig, sign(data, secret, salt)) != 1 {
		return zero, ErrSignatureInvalid
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, ErrInvalidToken
	}

	if time.Since(time.Unix(env.IssuedAt, 0)) > maxAge {
		return zero, ErrTokenExpired
	}

	return env.Payload, nil
}
