package kdf

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the length of every derived key, sized for AES-256.
	KeySize = 32

	// SaltSize is the required salt length in bytes.
	SaltSize = 16

	// Iterations is the fixed PBKDF2 round count. Deliberately expensive:
	// the same derivation runs on every unwrap, so the cost lands on
	// attackers guessing passwords as much as on us.
	Iterations = 100_000
)

// Derive stretches low-entropy secret material into a 32-byte key using
// PBKDF2-HMAC-SHA-256. The function is deterministic: identical inputs
// always yield the identical key, which later re-derivation at decrypt
// time depends on.
func Derive(secretMaterial, salt []byte) ([]byte, error) {
	if len(secretMaterial) == 0 {
		return nil, ErrEmptySecret
	}
	if len(salt) != SaltSize {
		return nil, ErrInvalidSaltSize
	}
	return pbkdf2.Key(secretMaterial, salt, Iterations, KeySize, sha256.New), nil
}

// NewSalt returns a fresh random 16-byte salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Join(ErrFailedToGenerateSalt, err)
	}
	return salt, nil
}
