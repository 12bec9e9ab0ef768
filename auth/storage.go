package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sealnote/sealnote/pkg/vault"
)

// AccountStore persists accounts. Create returns ErrDuplicateAccount when
// the username or email is already registered; lookups return
// ErrAccountNotFound for missing rows.
type AccountStore interface {
	Create(ctx context.Context, account *Account) error
	ByUsername(ctx context.Context, username string) (*Account, error)
	ByEmail(ctx context.Context, email string) (*Account, error)

	// SetResetToken stores a newly issued recovery token with the salt it
	// was signed against, replacing any previous one.
	SetResetToken(ctx context.Context, accountID uuid.UUID, token string, salt []byte) error

	// CommitRecovery applies a recovery outcome atomically: password hash,
	// key material and re-signed notes all land together or not at all,
	// and the consumed reset token is cleared in the same commit.
	CommitRecovery(ctx context.Context, commit RecoveryCommit) error
}

// RecoveryCommit is the final write of a recovery flow. PublicKeyPEM and
// ResignedNotes are set only when the keypair was rotated.
type RecoveryCommit struct {
	AccountID     uuid.UUID
	PasswordHash  []byte
	PrivateKey    vault.SealedBox
	PublicKeyPEM  []byte
	ResignedNotes []NoteSignature
}

// NoteSignature pairs a note with its replacement signature after a key
// rotation.
type NoteSignature struct {
	NoteID    uuid.UUID
	Signature []byte
}

// NoteStore persists signed notes.
type NoteStore interface {
	Create(ctx context.Context, note *Note) error
	All(ctx context.Context) ([]Note, error)
	ByAuthor(ctx context.Context, author string) ([]Note, error)
}

// EventLog is the append-only audit collaborator. CountSince supports the
// trailing-window failure counting; the count is a best-effort
// read-then-decide check, so the lockout it feeds is advisory throttling,
// not a hard guarantee.
type EventLog interface {
	Append(ctx context.Context, event Event) error
	CountSince(ctx context.Context, eventType EventType, accountID uuid.UUID, since time.Time) (int, error)
}

// TokenDelivery transports a recovery token to the account's email
// address out of band. The core never renders or sends mail itself.
type TokenDelivery interface {
	DeliverRecoveryToken(ctx context.Context, email, token string) error
}
