package keysig_test

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealnote/sealnote/pkg/keysig"
)

func TestSignVerify(t *testing.T) {
	t.Parallel()

	key, err := keysig.GenerateKey()
	require.NoError(t, err)

	message := []byte("<p>a signed note</p>")
	sig, err := keysig.Sign(message, key)
	require.NoError(t, err)

	assert.True(t, keysig.Verify(message, sig, &key.PublicKey))

	t.Run("message mutated", func(t *testing.T) {
		t.Parallel()
		tampered := append([]byte(nil), message...)
		tampered[0] ^= 0x01
		assert.False(t, keysig.Verify(tampered, sig, &key.PublicKey))
	})

	t.Run("signature mutated", func(t *testing.T) {
		t.Parallel()
		tampered := append([]byte(nil), sig...)
		tampered[0] ^= 0x01
		assert.False(t, keysig.Verify(message, tampered, &key.PublicKey))
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		other, err := keysig.GenerateKey()
		require.NoError(t, err)
		assert.False(t, keysig.Verify(message, sig, &other.PublicKey))
	})

	t.Run("uses maximal salt length", func(t *testing.T) {
		t.Parallel()
		// For a 2048-bit key with SHA-256 the largest salt is
		// modulusBytes - hashLen - 2 = 256 - 32 - 2.
		digest := sha256.Sum256(message)
		err := rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, digest[:], sig,
			&rsa.PSSOptions{SaltLength: 222, Hash: crypto.SHA256})
		assert.NoError(t, err)
	})
}

func TestPEMRoundTrip(t *testing.T) {
	t.Parallel()

	key, err := keysig.GenerateKey()
	require.NoError(t, err)

	privPEM, err := keysig.MarshalPrivateKey(key)
	require.NoError(t, err)
	assert.Contains(t, string(privPEM), "BEGIN PRIVATE KEY")

	pubPEM, err := keysig.MarshalPublicKey(&key.PublicKey)
	require.NoError(t, err)
	assert.Contains(t, string(pubPEM), "BEGIN PUBLIC KEY")

	parsedPriv, err := keysig.ParsePrivateKey(privPEM)
	require.NoError(t, err)
	assert.True(t, key.Equal(parsedPriv))

	parsedPub, err := keysig.ParsePublicKey(pubPEM)
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(parsedPub))

	// Signature made before a marshal round trip verifies after it.
	sig, err := keysig.Sign([]byte("note"), parsedPriv)
	require.NoError(t, err)
	assert.True(t, keysig.Verify([]byte("note"), sig, parsedPub))
}

func TestParseInvalidPEM(t *testing.T) {
	t.Parallel()

	_, err := keysig.ParsePrivateKey([]byte("not pem at all"))
	assert.ErrorIs(t, err, keysig.ErrInvalidPEM)

	_, err = keysig.ParsePublicKey([]byte("-----BEGIN GARBAGE-----\nAAAA\n-----END GARBAGE-----"))
	assert.ErrorIs(t, err, keysig.ErrInvalidPEM)
}
