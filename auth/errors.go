package auth

import "errors"

// Outcome errors returned by the credential operations. Unknown account,
// wrong password, wrong TOTP code and unwrap failures all surface as the
// single generic ErrAuthentication; the distinguishing detail is written
// to the audit log and the structured logger, never to the caller.
var (
	ErrAuthentication = errors.New("invalid credentials")
	ErrLockedOut      = errors.New("too many failed attempts, try again later")
	ErrTokenInvalid   = errors.New("invalid recovery token")
	ErrTokenExpired   = errors.New("recovery token expired")
)

// Storage errors. Stores return these so the service can map missing
// accounts into the generic failure path and uniqueness violations into a
// validation failure.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("username or email already registered")
)

// Construction errors.
var (
	ErrStorageRequired      = errors.New("account, note and event stores are required")
	ErrServerSecretRequired = errors.New("server secret is required")
)
