package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sealnote/sealnote/pkg/kdf"
	"github.com/sealnote/sealnote/pkg/logger"
	"github.com/sealnote/sealnote/pkg/vault"
)

// Service orchestrates the credential lifecycle: registration, the login
// state machine, note signing and verification, and the two recovery
// flows. All public operations run through the configured response floor.
type Service struct {
	cfg      Config
	accounts AccountStore
	notes    NoteStore
	events   EventLog
	delivery TokenDelivery
	log      *slog.Logger
	locks    *accountLocks

	// dummyHash keeps the unknown-account path doing the same bcrypt work
	// as the wrong-password path, so the two are indistinguishable by
	// timing even inside the response floor.
	dummyHash []byte
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a structured logger for server-side diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTokenDelivery sets the out-of-band recovery token transport.
func WithTokenDelivery(d TokenDelivery) Option {
	return func(s *Service) {
		if d != nil {
			s.delivery = d
		}
	}
}

// New creates the credential service. Storage collaborators are required;
// delivery defaults to a no-op and logging to discard.
func New(cfg Config, accounts AccountStore, notes NoteStore, events EventLog, opts ...Option) (*Service, error) {
	if accounts == nil || notes == nil || events == nil {
		return nil, ErrStorageRequired
	}
	if cfg.ServerSecret == "" {
		return nil, ErrServerSecretRequired
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:       cfg,
		accounts:  accounts,
		notes:     notes,
		events:    events,
		delivery:  nopDelivery{},
		log:       logger.NewDiscard(),
		locks:     newAccountLocks(),
		dummyHash: dummy,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// nopDelivery drops tokens. Wire a real TokenDelivery in production.
type nopDelivery struct{}

func (nopDelivery) DeliverRecoveryToken(context.Context, string, string) error { return nil }

// privateKeyMaterial is the KDF input for wrapping the private key: the
// password concatenated with the server secret. totpKeyMaterial is the
// server secret alone. The asymmetry is deliberate; see package kdf.
func (s *Service) privateKeyMaterial(password string) []byte {
	return []byte(password + s.cfg.ServerSecret)
}

func (s *Service) totpKeyMaterial() []byte {
	return []byte(s.cfg.ServerSecret)
}

// wrapPrivateKey seals PEM key material under a fresh salt derived from
// the given password.
func (s *Service) wrapPrivateKey(privPEM []byte, password string) (vault.SealedBox, error) {
	salt, err := kdf.NewSalt()
	if err != nil {
		return vault.SealedBox{}, err
	}
	key, err := kdf.Derive(s.privateKeyMaterial(password), salt)
	if err != nil {
		return vault.SealedBox{}, err
	}
	box, err := vault.Seal(privPEM, key)
	if err != nil {
		return vault.SealedBox{}, err
	}
	box.Salt = salt
	return box, nil
}

// unwrapPrivateKey recovers the plaintext PEM private key using the
// password the box was wrapped under.
func (s *Service) unwrapPrivateKey(account *Account, password string) ([]byte, error) {
	key, err := kdf.Derive(s.privateKeyMaterial(password), account.PrivateKey.Salt)
	if err != nil {
		return nil, err
	}
	return vault.Open(account.PrivateKey, key)
}

// unwrapTOTPSecret recovers the plaintext TOTP secret. Only the server
// secret is needed; password correctness is enforced by flow ordering.
func (s *Service) unwrapTOTPSecret(account *Account) (string, error) {
	key, err := kdf.Derive(s.totpKeyMaterial(), account.TOTPSecret.Salt)
	if err != nil {
		return "", err
	}
	secret, err := vault.Open(account.TOTPSecret, key)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// recordEvent appends an audit event. Audit writes are best-effort: a
// failing event store must not turn an otherwise decided operation into a
// different outcome, so failures are only logged.
func (s *Service) recordEvent(ctx context.Context, eventType EventType, details string, accountID *uuid.UUID) {
	event := Event{
		ID:        uuid.New(),
		Type:      eventType,
		Details:   details,
		AccountID: accountID,
		CreatedAt: time.Now(),
	}
	if ip, ok := SourceIPFromContext(ctx); ok {
		event.SourceIP = ip
	}

	if err := s.events.Append(ctx, event); err != nil {
		s.log.ErrorContext(ctx, "failed to append audit event",
			logger.EventType(string(eventType)),
			logger.Error(err),
			logger.Component("auth"),
		)
	}
}
