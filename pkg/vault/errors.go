package vault

import "errors"

var (
	ErrSealFailed       = errors.New("failed to seal plaintext")
	ErrOpenFailed       = errors.New("failed to open sealed box")
	ErrIntegrity        = errors.New("authentication tag mismatch")
	ErrInvalidKeyLength = errors.New("key must be 32 bytes")
	ErrInvalidIVSize    = errors.New("iv must be 12 bytes")
)
