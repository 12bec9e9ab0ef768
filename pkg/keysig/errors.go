package keysig

import "errors"

var (
	ErrKeyGenerationFailed = errors.New("failed to generate keypair")
	ErrSignFailed          = errors.New("failed to sign message")
	ErrEncodeFailed        = errors.New("failed to encode key")
	ErrInvalidPEM          = errors.New("invalid PEM data")
	ErrNotRSAKey           = errors.New("not an RSA key")
	ErrNilKey              = errors.New("key cannot be nil")
)
