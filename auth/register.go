package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sealnote/sealnote/pkg/kdf"
	"github.com/sealnote/sealnote/pkg/keysig"
	"github.com/sealnote/sealnote/pkg/logger"
	"github.com/sealnote/sealnote/pkg/throttle"
	"github.com/sealnote/sealnote/pkg/totp"
	"github.com/sealnote/sealnote/pkg/validator"
	"github.com/sealnote/sealnote/pkg/vault"
)

// Register creates an account: hashes the password, generates the signing
// keypair and the TOTP secret, and persists only sealed key material.
// Input policy violations return validator.ValidationErrors immediately;
// once validation passes, the remainder runs under the response floor so
// duplicate probing cannot be timed.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Registration, error) {
	if err := validator.Apply(
		validator.Username("username", username),
		validator.ValidEmail("email", email),
		validator.StrongPassword("password", password),
	); err != nil {
		return nil, err
	}

	return throttle.RunWithFloor(ctx, s.cfg.ResponseFloor, func(ctx context.Context) (*Registration, error) {
		return s.register(ctx, username, email, password)
	})
}

func (s *Service) register(ctx context.Context, username, email, password string) (*Registration, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	priv, err := keysig.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing keypair: %w", err)
	}
	privPEM, err := keysig.MarshalPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	pubPEM, err := keysig.MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, err
	}

	wrappedKey, err := s.wrapPrivateKey(privPEM, password)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap private key: %w", err)
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}
	wrappedSecret, err := s.wrapTOTPSecret(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap totp secret: %w", err)
	}

	account := &Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		CreatedAt:    time.Now(),
		PasswordHash: hash,
		PublicKeyPEM: pubPEM,
		PrivateKey:   wrappedKey,
		TOTPSecret:   wrappedSecret,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			s.recordEvent(ctx, EventError, fmt.Sprintf("registration rejected, duplicate username or email %q", username), nil)
			// Callers classify the collision as a validation failure; the
			// sentinel stays reachable through errors.Is.
			return nil, errors.Join(ErrDuplicateAccount, validator.ValidationErrors{
				{Field: "account", Message: "username or email already registered"},
			})
		}
		s.recordEvent(ctx, EventError, fmt.Sprintf("account create failed: %v", err), nil)
		return nil, err
	}

	uri, err := totp.ProvisioningURI(secret, username, s.cfg.TOTPIssuer)
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, EventRegistrationSuccess, "", &account.ID)
	s.log.InfoContext(ctx, "account registered",
		logger.AccountID(account.ID.String()), logger.Username(username))

	return &Registration{
		AccountID:       account.ID,
		PublicKeyPEM:    pubPEM,
		TOTPSecret:      secret,
		ProvisioningURI: uri,
	}, nil
}

// wrapTOTPSecret seals the plaintext secret under a fresh salt derived
// from the server secret.
func (s *Service) wrapTOTPSecret(secret string) (vault.SealedBox, error) {
	salt, err := kdf.NewSalt()
	if err != nil {
		return vault.SealedBox{}, err
	}
	key, err := kdf.Derive(s.totpKeyMaterial(), salt)
	if err != nil {
		return vault.SealedBox{}, err
	}
	box, err := vault.Seal([]byte(secret), key)
	if err != nil {
		return vault.SealedBox{}, err
	}
	box.Salt = salt
	return box, nil
}
