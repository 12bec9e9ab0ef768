package kdf

import "errors"

var (
	ErrEmptySecret          = errors.New("secret material cannot be empty")
	ErrInvalidSaltSize      = errors.New("salt must be exactly 16 bytes")
	ErrFailedToGenerateSalt = errors.New("failed to generate salt")
)
