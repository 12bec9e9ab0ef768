package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sealnote/sealnote/pkg/logger"
	"github.com/sealnote/sealnote/pkg/throttle"
	"github.com/sealnote/sealnote/pkg/totp"
)

// Login authenticates a username, password and TOTP code and returns a
// session on success. Every outcome, success or failure, takes at least
// the configured response floor, and all failure modes collapse into
// ErrAuthentication except an active lockout, which returns ErrLockedOut.
//
// The lockout is advisory: it is counted from the append-only event log
// at entry, so a burst of concurrent attempts can exceed the threshold by
// a few before the window closes. That slack is accepted; the log itself
// remains a complete record.
func (s *Service) Login(ctx context.Context, username, password, totpCode string) (*Session, error) {
	return throttle.RunWithFloor(ctx, s.cfg.ResponseFloor, func(ctx context.Context) (*Session, error) {
		return s.login(ctx, username, password, totpCode)
	})
}

func (s *Service) login(ctx context.Context, username, password, totpCode string) (*Session, error) {
	account, err := s.accounts.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// Burn the same bcrypt cost as the known-account path.
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			s.recordEvent(ctx, EventLoginError, fmt.Sprintf("unknown username %q", username), nil)
			return nil, ErrAuthentication
		}
		s.recordEvent(ctx, EventError, fmt.Sprintf("account lookup failed: %v", err), nil)
		return nil, ErrAuthentication
	}

	if locked, lockErr := s.isLockedOut(ctx, account.ID); lockErr != nil {
		s.log.ErrorContext(ctx, "lockout check failed, failing closed",
			logger.AccountID(account.ID.String()), logger.Error(lockErr))
		return nil, ErrAuthentication
	} else if locked {
		s.recordEvent(ctx, EventLoginErrorMax, "login attempt during lockout", &account.ID)
		return nil, ErrLockedOut
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		s.recordEvent(ctx, EventLoginError, "wrong password", &account.ID)
		return nil, ErrAuthentication
	}

	secret, err := s.unwrapTOTPSecret(account)
	if err != nil {
		s.recordEvent(ctx, EventError, fmt.Sprintf("totp secret unwrap failed: %v", err), &account.ID)
		return nil, ErrAuthentication
	}

	ok, err := totp.Verify(secret, totpCode, time.Now())
	if err != nil || !ok {
		s.recordEvent(ctx, EventLoginError, "wrong totp code", &account.ID)
		return nil, ErrAuthentication
	}

	// Unwrapping the private key proves the stored keypair is intact and
	// reachable under this password before a session is handed out.
	if _, err := s.unwrapPrivateKey(account, password); err != nil {
		s.recordEvent(ctx, EventError, fmt.Sprintf("private key unwrap failed: %v", err), &account.ID)
		return nil, ErrAuthentication
	}

	s.recordEvent(ctx, EventLoggedIn, "", &account.ID)
	s.log.InfoContext(ctx, "login succeeded",
		logger.AccountID(account.ID.String()), logger.Username(account.Username))

	return &Session{
		ID:        uuid.New(),
		AccountID: account.ID,
		Username:  account.Username,
		CreatedAt: time.Now(),
	}, nil
}

// isLockedOut reports whether the account has accumulated the threshold
// of failed logins inside the lockout window.
func (s *Service) isLockedOut(ctx context.Context, accountID uuid.UUID) (bool, error) {
	since := time.Now().Add(-s.cfg.LockoutWindow)
	count, err := s.events.CountSince(ctx, EventLoginError, accountID, since)
	if err != nil {
		return false, err
	}
	return count >= s.cfg.LockoutThreshold, nil
}
