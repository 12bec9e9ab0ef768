// Package kdf derives fixed-length symmetric keys from low-entropy secret
// material using PBKDF2-HMAC-SHA-256 with a fixed iteration count.
//
// Two derivation inputs are used by the application and the asymmetry is
// intentional: the private-key wrapping key is derived from the password
// concatenated with the server secret, while the TOTP wrapping key is
// derived from the server secret alone so the server can unwrap it without
// the user's password.
package kdf
