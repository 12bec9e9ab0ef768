package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"
)

// envelope wraps the caller payload with the issuance timestamp that
// Parse enforces the max-age against.
type envelope[T any] struct {
	Payload  T     `json:"p"`
	IssuedAt int64 `json:"iat"`
}

// Generate creates a signed, salted, timestamped token: the JSON envelope
// base64url-encoded, a dot, and an HMAC-SHA-256 signature keyed by the
// secret and the per-issuance salt. The token verifies only against the
// exact salt it was issued with.
func Generate[T any](payload T, secret string, salt []byte) (string, error) {
	return GenerateAt(payload, secret, salt, time.Now())
}

// GenerateAt is Generate with an explicit issuance time. Useful for tests
// that need a token issued in the past.
func GenerateAt[T any](payload T, secret string, salt []byte, issuedAt time.Time) (string, error) {
	if len(salt) == 0 {
		return "", ErrSaltRequired
	}

	data, err := json.Marshal(envelope[T]{Payload: payload, IssuedAt: issuedAt.Unix()})
	if err != nil {
		return "", err
	}

	payloadEnc := base64.RawURLEncoding.EncodeToString(data)
	sigEnc := base64.RawURLEncoding.EncodeToString(sign(data, secret, salt))

	return payloadEnc + "." + sigEnc, nil
}

func sign(data []byte, secret string, salt []byte) []byte {
	key := make([]byte, 0, len(secret)+len(salt))
	key = append(key, secret...)
	key = append(key, salt...)

	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
