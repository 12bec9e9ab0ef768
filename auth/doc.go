// Package auth implements the credential and key lifecycle behind a
// note-sharing service: registration, TOTP-gated login, note signing and
// verification, and token-based account recovery.
//
// # Credential model
//
// Each account holds a bcrypt password hash, an RSA-2048 signing keypair
// and a TOTP secret. The private key is sealed with AES-256-GCM under a
// key derived by PBKDF2 from the password concatenated with the server
// secret; the TOTP secret is sealed under the server secret alone. Every
// note carries an RSA-PSS signature over its message, and the read paths
// return only notes whose signatures verify against the author's current
// public key.
//
// # Uniform failure behavior
//
// Login and recovery collapse every failure mode into a single generic
// error, equalize the bcrypt cost of the unknown-account path, and pad
// all outcomes to a configurable minimum response time. Failed attempts
// accumulate in an append-only audit log; at the configured threshold
// within a trailing window, further attempts are refused. The counting is
// advisory: concurrent attempts may briefly exceed the threshold.
//
// # Recovery
//
// Recovery is driven by a signed, salted, time-limited single-use token
// delivered out of band. Changing the password re-wraps the existing
// private key so old signatures stay valid; resetting it rotates the
// keypair and re-signs every note in one atomic commit.
//
// Storage is abstracted behind the AccountStore, NoteStore and EventLog
// interfaces. MemoryStorage serves tests and local development; the
// postgres package provides the production backend.
package auth
