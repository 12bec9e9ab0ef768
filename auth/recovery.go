package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sealnote/sealnote/pkg/kdf"
	"github.com/sealnote/sealnote/pkg/keysig"
	"github.com/sealnote/sealnote/pkg/logger"
	"github.com/sealnote/sealnote/pkg/throttle"
	"github.com/sealnote/sealnote/pkg/token"
	"github.com/sealnote/sealnote/pkg/totp"
	"github.com/sealnote/sealnote/pkg/validator"
)

// RecoveryRequest carries the inputs of CompleteRecovery. Password is the
// current password and is required only when RotateKeys is false: changing
// the password must unwrap the existing private key, while a full reset
// abandons it and rotates the keypair instead.
type RecoveryRequest struct {
	Username    string
	Password    string
	TOTPCode    string
	Token       string
	NewPassword string
	RotateKeys  bool
}

// recoveryClaims is the signed payload of a recovery token.
type recoveryClaims struct {
	AccountID uuid.UUID `json:"aid"`
}

// RequestRecoveryToken re-proves the caller's control of the account with
// the full credential set, then issues a signed, salted, time-limited
// recovery token and hands it to the delivery collaborator. The token
// itself is never returned to the caller. Failures collapse into
// ErrAuthentication and count toward the recovery lockout window.
func (s *Service) RequestRecoveryToken(ctx context.Context, username, password, totpCode string) error {
	_, err := throttle.RunWithFloor(ctx, s.cfg.ResponseFloor, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.requestRecoveryToken(ctx, username, password, totpCode)
	})
	return err
}

func (s *Service) requestRecoveryToken(ctx context.Context, username, password, totpCode string) error {
	account, err := s.reproof(ctx, username, password, totpCode, true)
	if err != nil {
		return err
	}

	salt, err := kdf.NewSalt()
	if err != nil {
		return err
	}
	tok, err := token.Generate(recoveryClaims{AccountID: account.ID}, s.cfg.ServerSecret, salt)
	if err != nil {
		return err
	}

	if err := s.accounts.SetResetToken(ctx, account.ID, tok, salt); err != nil {
		return fmt.Errorf("failed to store recovery token: %w", err)
	}

	if err := s.delivery.DeliverRecoveryToken(ctx, account.Email, tok); err != nil {
		s.recordEvent(ctx, EventError, fmt.Sprintf("recovery token delivery failed: %v", err), &account.ID)
		return ErrAuthentication
	}

	s.recordEvent(ctx, EventRecoveryTokenIssued, "", &account.ID)
	s.log.InfoContext(ctx, "recovery token issued",
		logger.AccountID(account.ID.String()), logger.Username(username))
	return nil
}

// CompleteRecovery consumes a recovery token and applies the requested
// outcome. With RotateKeys false it changes the password: the existing
// private key is unwrapped with the current password and re-wrapped under
// the new one, so every existing note signature stays valid. With
// RotateKeys true it resets the password: a fresh keypair replaces the
// old one and every note by the account is re-signed with it.
//
// The token is single-use; it is cleared by the same atomic commit that
// applies the outcome.
func (s *Service) CompleteRecovery(ctx context.Context, req RecoveryRequest) error {
	if err := validator.Apply(
		validator.StrongPassword("new_password", req.NewPassword),
	); err != nil {
		return err
	}

	_, err := throttle.RunWithFloor(ctx, s.cfg.ResponseFloor, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.completeRecovery(ctx, req)
	})
	return err
}

func (s *Service) completeRecovery(ctx context.Context, req RecoveryRequest) error {
	account, err := s.reproof(ctx, req.Username, req.Password, req.TOTPCode, !req.RotateKeys)
	if err != nil {
		return err
	}

	// Serialize against a concurrent commit for the same account so two
	// racing recoveries cannot interleave their key material.
	lock := s.locks.get(account.ID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; the first of two racing recoveries clears
	// the token, so the second one fails here.
	account, err = s.accounts.ByUsername(ctx, req.Username)
	if err != nil {
		return ErrAuthentication
	}

	if err := s.checkRecoveryToken(ctx, account, req.Token); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	commit := RecoveryCommit{AccountID: account.ID, PasswordHash: hash}

	if req.RotateKeys {
		if err := s.rotateKeys(ctx, account, req.NewPassword, &commit); err != nil {
			return err
		}
	} else {
		privPEM, err := s.unwrapPrivateKey(account, req.Password)
		if err != nil {
			s.recordEvent(ctx, EventError, fmt.Sprintf("private key unwrap failed: %v", err), &account.ID)
			return ErrAuthentication
		}
		commit.PrivateKey, err = s.wrapPrivateKey(privPEM, req.NewPassword)
		if err != nil {
			return err
		}
	}

	if err := s.accounts.CommitRecovery(ctx, commit); err != nil {
		return fmt.Errorf("failed to commit recovery: %w", err)
	}

	outcome := EventPasswordChanged
	if req.RotateKeys {
		outcome = EventPasswordReset
	}
	s.recordEvent(ctx, outcome, "", &account.ID)
	s.log.InfoContext(ctx, "recovery completed",
		logger.AccountID(account.ID.String()),
		logger.Username(account.Username),
		logger.EventType(string(outcome)),
	)
	return nil
}

// rotateKeys fills the commit with a fresh keypair wrapped under the new
// password and replacement signatures for every note by the account.
func (s *Service) rotateKeys(ctx context.Context, account *Account, newPassword string, commit *RecoveryCommit) error {
	priv, err := keysig.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate signing keypair: %w", err)
	}
	privPEM, err := keysig.MarshalPrivateKey(priv)
	if err != nil {
		return err
	}
	commit.PublicKeyPEM, err = keysig.MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		return err
	}
	commit.PrivateKey, err = s.wrapPrivateKey(privPEM, newPassword)
	if err != nil {
		return err
	}

	notes, err := s.notes.ByAuthor(ctx, account.Username)
	if err != nil {
		return fmt.Errorf("failed to load notes for re-signing: %w", err)
	}
	for _, n := range notes {
		sig, err := keysig.Sign([]byte(n.Message), priv)
		if err != nil {
			return fmt.Errorf("failed to re-sign note %s: %w", n.ID, err)
		}
		commit.ResignedNotes = append(commit.ResignedNotes, NoteSignature{NoteID: n.ID, Signature: sig})
	}
	return nil
}

// checkRecoveryToken validates the presented token against the account's
// stored token and salt. Expiry is the only failure reported distinctly;
// every other mismatch is ErrTokenInvalid.
func (s *Service) checkRecoveryToken(ctx context.Context, account *Account, presented string) error {
	if account.ResetToken == "" ||
		subtle.ConstantTimeCompare([]byte(account.ResetToken), []byte(presented)) != 1 {
		s.recordEvent(ctx, EventRecoveryError, "unknown or reused recovery token", &account.ID)
		return ErrTokenInvalid
	}

	claims, err := token.Parse[recoveryClaims](presented, s.cfg.ServerSecret, account.ResetTokenSalt, s.cfg.RecoveryTokenTTL)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			s.recordEvent(ctx, EventRecoveryError, "expired recovery token", &account.ID)
			return ErrTokenExpired
		}
		s.recordEvent(ctx, EventRecoveryError, "invalid recovery token", &account.ID)
		return ErrTokenInvalid
	}
	if claims.AccountID != account.ID {
		s.recordEvent(ctx, EventRecoveryError, "recovery token account mismatch", &account.ID)
		return ErrTokenInvalid
	}
	return nil
}

// reproof verifies control of the account for the recovery flows. The
// TOTP code is always required; the password is checked only when
// verifyPassword is set. Failures count toward the recovery lockout
// window, which is separate from the login one.
func (s *Service) reproof(ctx context.Context, username, password, totpCode string, verifyPassword bool) (*Account, error) {
	account, err := s.accounts.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			s.recordEvent(ctx, EventRecoveryError, fmt.Sprintf("unknown username %q", username), nil)
			return nil, ErrAuthentication
		}
		s.recordEvent(ctx, EventError, fmt.Sprintf("account lookup failed: %v", err), nil)
		return nil, ErrAuthentication
	}

	since := time.Now().Add(-s.cfg.LockoutWindow)
	count, err := s.events.CountSince(ctx, EventRecoveryError, account.ID, since)
	if err != nil {
		s.log.ErrorContext(ctx, "recovery lockout check failed, failing closed",
			logger.AccountID(account.ID.String()), logger.Error(err))
		return nil, ErrAuthentication
	}
	if count >= s.cfg.LockoutThreshold {
		s.recordEvent(ctx, EventRecoveryErrorMax, "recovery attempt during lockout", &account.ID)
		return nil, ErrLockedOut
	}

	if verifyPassword {
		if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
			s.recordEvent(ctx, EventRecoveryError, "wrong password", &account.ID)
			return nil, ErrAuthentication
		}
	}

	secret, err := s.unwrapTOTPSecret(account)
	if err != nil {
		s.recordEvent(ctx, EventError, fmt.Sprintf("totp secret unwrap failed: %v", err), &account.ID)
		return nil, ErrAuthentication
	}
	ok, err := totp.Verify(secret, totpCode, time.Now())
	if err != nil || !ok {
		s.recordEvent(ctx, EventRecoveryError, "wrong totp code", &account.ID)
		return nil, ErrAuthentication
	}

	return account, nil
}
