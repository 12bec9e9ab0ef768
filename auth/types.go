package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/sealnote/sealnote/pkg/vault"
)

// Account is a registered user with its credential material. The private
// key and the TOTP secret are stored only as sealed boxes; their plaintext
// exists transiently in process memory during an authenticated operation.
type Account struct {
	ID        uuid.UUID
	Username  string
	Email     string
	CreatedAt time.Time

	PasswordHash []byte

	// PublicKeyPEM is the account's current signing key in SPKI PEM form.
	// Every note by this account must verify against it.
	PublicKeyPEM []byte

	// PrivateKey is the PKCS#8 PEM private key wrapped under a key derived
	// from password+serverSecret and the box's salt.
	PrivateKey vault.SealedBox

	// TOTPSecret is wrapped under a key derived from the server secret
	// alone, so the server can unwrap it without the user's password. The
	// login flow still requires password success first; that ordering is
	// policy, not cryptography.
	TOTPSecret vault.SealedBox

	// ResetToken and ResetTokenSalt hold the most recently issued recovery
	// token. The token verifies only against this exact salt and is
	// cleared when consumed.
	ResetToken     string
	ResetTokenSalt []byte
}

// Note is a signed message. Author is a back-reference by username, not an
// ownership edge. The message arrives already sanitized by the rendering
// layer; this core signs and verifies it as-is.
type Note struct {
	ID        uuid.UUID
	Message   string
	CreatedAt time.Time
	Author    string
	Signature []byte
	SourceIP  string
}

// Session is the successful outcome of a login.
type Session struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Username  string
	CreatedAt time.Time
}

// Registration is the outcome of a successful account creation. TOTPSecret
// and ProvisioningURI are shown to the user exactly once for enrollment;
// only the sealed form is persisted.
type Registration struct {
	AccountID       uuid.UUID
	PublicKeyPEM    []byte
	TOTPSecret      string
	ProvisioningURI string
}
