package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sealnote/sealnote/auth"
	"github.com/sealnote/sealnote/pkg/totp"
)

// captureDelivery records the last recovery token handed to it.
type captureDelivery struct {
	email string
	token string
}

func (d *captureDelivery) DeliverRecoveryToken(_ context.Context, email, token string) error {
	d.email = email
	d.token = token
	return nil
}

func testConfig() auth.Config {
	return auth.Config{
		ServerSecret:     "test-server-secret",
		ResponseFloor:    0,
		LockoutWindow:    10 * time.Minute,
		LockoutThreshold: 3,
		RecoveryTokenTTL: 10 * time.Minute,
		TOTPIssuer:       "sealnote",
		BcryptCost:       bcrypt.MinCost,
	}
}

func newTestService(t *testing.T, cfg auth.Config) (*auth.Service, *auth.MemoryStorage, *captureDelivery) {
	t.Helper()
	storage := auth.NewMemoryStorage()
	delivery := &captureDelivery{}
	svc, err := auth.New(cfg, storage.Accounts(), storage.Notes(), storage.AuditLog(),
		auth.WithTokenDelivery(delivery))
	require.NoError(t, err)
	return svc, storage, delivery
}

// registerAccount creates an account and returns its registration,
// including the plaintext TOTP secret needed to mint valid codes.
func registerAccount(t *testing.T, svc *auth.Service, username, email, password string) *auth.Registration {
	t.Helper()
	reg, err := svc.Register(context.Background(), username, email, password)
	require.NoError(t, err)
	return reg
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCodeAt(secret, time.Now())
	require.NoError(t, err)
	return code
}

func hasEvent(events []auth.Event, eventType auth.EventType) bool {
	for _, e := range events {
		if e.Type == eventType {
			return true
		}
	}
	return false
}
