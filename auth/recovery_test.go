package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealnote/sealnote/auth"
	"github.com/sealnote/sealnote/pkg/validator"
)

func TestRequestRecoveryToken(t *testing.T) {
	t.Parallel()

	const password = "Str0ngPass!x"

	t.Run("delivers a token after full re-proof", func(t *testing.T) {
		t.Parallel()
		svc, storage, delivery := newTestService(t, testConfig())
		reg := registerAccount(t, svc, "alice", "alice@example.com", password)

		err := svc.RequestRecoveryToken(context.Background(), "alice", password, currentCode(t, reg.TOTPSecret))
		require.NoError(t, err)

		assert.Equal(t, "alice@example.com", delivery.email)
		assert.NotEqual(t, "", delivery.token)
		assert.True(t, hasEvent(storage.RecordedEvents(), auth.EventRecoveryTokenIssued))

		account, err := storage.Accounts().ByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, delivery.token, account.ResetToken)
		assert.Len(t, account.ResetTokenSalt, 16)
	})

	t.Run("wrong password is refused", func(t *testing.T) {
		t.Parallel()
		svc, _, delivery := newTestService(t, testConfig())
		reg := registerAccount(t, svc, "alice", "alice@example.com", password)

		err := svc.RequestRecoveryToken(context.Background(), "alice", "WrongPass1!x", currentCode(t, reg.TOTPSecret))
		assert.ErrorIs(t, err, auth.ErrAuthentication)
		assert.Equal(t, "", delivery.token)
	})

	t.Run("wrong totp code is refused", func(t *testing.T) {
		t.Parallel()
		svc, _, delivery := newTestService(t, testConfig())
		registerAccount(t, svc, "alice", "alice@example.com", password)

		err := svc.RequestRecoveryToken(context.Background(), "alice", password, "000000")
		assert.ErrorIs(t, err, auth.ErrAuthentication)
		assert.Equal(t, "", delivery.token)
	})

	t.Run("locks out after repeated failures", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestService(t, testConfig())
		reg := registerAccount(t, svc, "alice", "alice@example.com", password)

		for i := 0; i < 3; i++ {
			err := svc.RequestRecoveryToken(context.Background(), "alice", password, "000000")
			require.ErrorIs(t, err, auth.ErrAuthentication)
		}

		err := svc.RequestRecoveryToken(context.Background(), "alice", password, currentCode(t, reg.TOTPSecret))
		assert.ErrorIs(t, err, auth.ErrLockedOut)
	})
}

func TestCompleteRecovery(t *testing.T) {
	t.Parallel()

	const (
		password    = "Str0ngPass!x"
		newPassword = "N3wStrong?yz"
	)

	issueToken := func(t *testing.T, svc *auth.Service, delivery *captureDelivery, secret string) string {
		t.Helper()
		err := svc.RequestRecoveryToken(context.Background(), "alice", password, currentCode(t, secret))
		require.NoError(t, err)
		return delivery.token
	}

	t.Run("password change keeps existing signatures valid", func(t *testing.T) {
		t.Parallel()
		svc, storage, delivery := newTestService(t, testConfig())
		reg := registerAccount(t, svc, "alice", "alice@example.com", password)

		_, err := svc.PostNote(context.Background(), "alice", password, "hello world")
		require.NoError(t, err)

		before, err := storage.Accounts().ByUsername(context.Background(), "alice")
		require.NoError(t, err)

		tok := issueToken(t, svc, delivery, reg.TOTPSecret)
		err = svc.CompleteRecovery(context.Background(), auth.RecoveryRequest{
			Username:    "alice",
			Password:    password,
			TOTPCode:    currentCode(t, reg.TOTPSecret),
			Token:       tok,
			NewPassword: newPassword,
		})
		require.NoError(t, err)

		after, err := storage.Accounts().ByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, before.PublicKeyPEM, after.PublicKeyPEM)
		assert.NotEqual(t, before.PrivateKey.Ciphertext, after.PrivateKey.Ciphertext)

		// Old password no longer works, new one does.
		_, err = svc.Login(context.Background(), "alice", password, currentCode(t, reg.TOTPSecret))
		assert.ErrorIs(t, err, auth.ErrAuthentication)
		_, err = svc.Login(context.Background(), "alice", newPassword, currentCode(t, reg.TOTPSecret))
		require.NoError(t, err)

		// The note still verifies under the untouched public key.
		notes, err := svc.VerifiedNotes(context.Background())
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "hello world", notes[0].Message)

		assert.True(t, hasEvent(storage.RecordedEvents(), auth.EventPasswordChanged))
	})

	t.Run("reset rotates the keypair and re-signs notes", func(t *testing.T) {
		t.Parallel()
		svc, storage, delivery := newTestService(t, testConfig())
		reg := registerAccount(t, svc, "alice", "alice@example.com", password)

		posted, err := svc.PostNote(context.Background(), "alice", password, "hello world")
		require.NoError(t, err)

		before, err := storage.Accounts().ByUsername(context.Background(), "alice")
		require.NoError(t, err)

		tok := issueToken(t, svc, delivery, reg.TOTPSecret)
		err = svc.CompleteRecovery(context.Background(), auth.RecoveryRequest{
			Username:    "alice",
			TOTPCode:    currentCode(t, reg.TOTPSecret),
			Token:       tok,
			NewPassword: newPassword,
			RotateKeys:  true,
		})
		require.NoError(t, err)

		after, err := storage.Accounts().ByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.NotEqual(t, before.PublicKeyPEM, after.PublicKeyPEM)

		_, err = svc.Login(context.Background(), "alice", newPassword, currentCode(t, reg.TOTPSecret))
		require.NoError(t, err)

		// The note got a fresh signature and verifies under the new key.
		notes, err := svc.VerifiedNotes(context.Background())
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.NotEqual(t, posted.Signature, notes[0].Signature)

		assert.True(t, hasEvent(storage.RecordedEvents(), auth.EventPasswordReset))
	})

	t.Run("token is single use", func(t *testing.T) {
		t.Parallel()
		svc, _, delivery := newTestService(t, testConfig())
		reg := registerAccount(t, svc, "alice", "alice@example.com", password)

		tok := issueToken(t, svc, delivery, reg.TOTPSecret)
		req := auth.RecoveryRequest{
			Username:    "alice",
			Password:    password,
			TOTPCode:    currentCode(t, reg.TOTPSecret),
			Token:       tok,
			NewPassword: newPassword,
		}
		require.NoError(t, svc.CompleteRecovery(context.Background(), req))

		req.Password = newPassword
		err := svc.CompleteRecovery(context.Background(), req)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("expired token is refused", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.RecoveryTokenTTL = 50 * time.Millisecond
		svc, _, delivery := newTestService(t, cfg)
		reg := registerAccount(t, svc, "alice", "alice@example.com", password)

		tok := issueToken(t, svc, delivery, reg.TOTPSecret)
		time.Sleep(100 * time.Millisecond)

		err := svc.CompleteRecovery(context.Background(), auth.RecoveryRequest{
			Username:    "alice",
			Password:    password,
			TOTPCode:    currentCode(t, reg.TOTPSecret),
			Token:       tok,
			NewPassword: newPassword,
		})
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})

	t.Run("tampered token is refused", func(t *testing.T) {
		t.Parallel()
		svc, _, delivery := newTestService(t, testConfig())
		reg := registerAccount(t, svc, "alice", "alice@example.com", password)

		tok := issueToken(t, svc, delivery, reg.TOTPSecret)
		err := svc.CompleteRecovery(context.Background(), auth.RecoveryRequest{
			Username:    "alice",
			Password:    password,
			TOTPCode:    currentCode(t, reg.TOTPSecret),
			Token:       tok + "x",
			NewPassword: newPassword,
		})
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("missing token is refused", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestService(t, testConfig())
		reg := registerAccount(t, svc, "alice", "alice@example.com", password)

		err := svc.CompleteRecovery(context.Background(), auth.RecoveryRequest{
			Username:    "alice",
			Password:    password,
			TOTPCode:    currentCode(t, reg.TOTPSecret),
			Token:       "bogus",
			NewPassword: newPassword,
		})
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("weak replacement password is refused up front", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestService(t, testConfig())

		err := svc.CompleteRecovery(context.Background(), auth.RecoveryRequest{
			Username:    "alice",
			NewPassword: "weak",
		})
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.True(t, verrs.Has("new_password"))
	})
}
