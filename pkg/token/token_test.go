package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealnote/sealnote/pkg/token"
)

type recoveryClaims struct {
	Email string `json:"email"`
}

const testSecret = "test-server-secret"

func TestGenerateParse(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")
	tok, err := token.Generate(recoveryClaims{Email: "a@x.com"}, testSecret, salt)
	require.NoError(t, err)
	assert.Contains(t, tok, ".")

	claims, err := token.Parse[recoveryClaims](tok, testSecret, salt, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestParseWrongSalt(t *testing.T) {
	t.Parallel()

	tok, err := token.Generate(recoveryClaims{Email: "a@x.com"}, testSecret, []byte("0123456789abcdef"))
	require.NoError(t, err)

	_, err = token.Parse[recoveryClaims](tok, testSecret, []byte("fedcba9876543210"), 10*time.Minute)
	assert.ErrorIs(t, err, token.ErrSignatureInvalid)
}

func TestParseWrongSecret(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")
	tok, err := token.Generate(recoveryClaims{Email: "a@x.com"}, testSecret, salt)
	require.NoError(t, err)

	_, err = token.Parse[recoveryClaims](tok, "other-secret", salt, 10*time.Minute)
	assert.ErrorIs(t, err, token.ErrSignatureInvalid)
}

func TestParseExpired(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")
	maxAge := 600 * time.Second

	// Issued 601 seconds ago: structurally valid signature, expired age.
	tok, err := token.GenerateAt(recoveryClaims{Email: "a@x.com"}, testSecret, salt, time.Now().Add(-601*time.Second))
	require.NoError(t, err)

	_, err = token.Parse[recoveryClaims](tok, testSecret, salt, maxAge)
	assert.ErrorIs(t, err, token.ErrTokenExpired)

	// Just inside the window still parses.
	tok, err = token.GenerateAt(recoveryClaims{Email: "a@x.com"}, testSecret, salt, time.Now().Add(-599*time.Second))
	require.NoError(t, err)

	_, err = token.Parse[recoveryClaims](tok, testSecret, salt, maxAge)
	assert.NoError(t, err)
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")

	tests := []struct {
		name string
		tok  string
	}{
		{"no separator", "justonepart"},
		{"too many separators", "a.b.c"},
		{"bad payload encoding", "!!!.c2ln"},
		{"bad signature encoding", "cGF5bG9hZA.!!!"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := token.Parse[recoveryClaims](tt.tok, testSecret, salt, time.Minute)
			assert.ErrorIs(t, err, token.ErrInvalidToken)
		})
	}
}

func TestGenerateRequiresSalt(t *testing.T) {
	t.Parallel()

	_, err := token.Generate(recoveryClaims{Email: "a@x.com"}, testSecret, nil)
	assert.ErrorIs(t, err, token.ErrSaltRequired)
}

func TestTamperedPayloadRejected(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")
	tok, err := token.Generate(recoveryClaims{Email: "a@x.com"}, testSecret, salt)
	require.NoError(t, err)

	other, err := token.Generate(recoveryClaims{Email: "b@y.com"}, testSecret, salt)
	require.NoError(t, err)

	// Payload from one token with the signature of another.
	spliced := strings.SplitN(other, ".", 2)[0] + "." + strings.SplitN(tok, ".", 2)[1]
	_, err = token.Parse[recoveryClaims](spliced, testSecret, salt, time.Minute)
	assert.ErrorIs(t, err, token.ErrSignatureInvalid)
}
