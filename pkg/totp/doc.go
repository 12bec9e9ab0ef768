// Package totp implements RFC 6238 time-based one-time passwords for the
// second login factor: secret generation, provisioning URI construction
// for authenticator apps, and code verification at an explicit time with
// a ±1 step clock-skew tolerance.
//
// The shared secret never lives in plaintext at rest; callers wrap it with
// the vault package before persisting and unwrap it transiently during
// verification.
package totp
