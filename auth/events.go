package auth

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies an audit event. LOGIN_ERROR and RECOVERY_ERROR are
// the types the lockout windows count.
type EventType string

const (
	EventLoggedIn            EventType = "LOGGED_IN"
	EventLoginError          EventType = "LOGIN_ERROR"
	EventLoginErrorMax       EventType = "LOGIN_ERROR_MAX"
	EventRecoveryError       EventType = "RECOVERY_ERROR"
	EventRecoveryErrorMax    EventType = "RECOVERY_ERROR_MAX"
	EventRecoveryTokenIssued EventType = "RECOVERY_TOKEN_ISSUED"
	EventPasswordChanged     EventType = "PASSWORD_CHANGED"
	EventPasswordReset       EventType = "PASSWORD_RESET"
	EventRegistrationSuccess EventType = "REGISTRATION_SUCCESS"
	EventNotePosted          EventType = "NOTE_POSTED"
	EventError               EventType = "ERROR"
)

// Event is a single append-only audit log entry. AccountID is nil when the
// event could not be attributed to an account, such as a login attempt for
// an unknown username.
type Event struct {
	ID        uuid.UUID
	Type      EventType
	Details   string
	AccountID *uuid.UUID
	CreatedAt time.Time
	SourceIP  string
}
