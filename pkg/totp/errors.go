package totp

import "errors"

var (
	ErrFailedToGenerateSecret = errors.New("failed to generate TOTP secret")
	ErrFailedToVerify         = errors.New("failed to verify TOTP code")
	ErrFailedToGenerate       = errors.New("failed to generate TOTP code")
	ErrMissingSecret          = errors.New("missing secret")
	ErrInvalidSecret          = errors.New("invalid secret")
	ErrMissingAccountLabel    = errors.New("missing account label")
	ErrMissingIssuer          = errors.New("missing issuer")
	ErrInvalidCodeFormat      = errors.New("invalid code format")
)
