package keysig

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
)

// KeyBits is the RSA modulus size for generated keypairs.
// The public exponent is fixed at 65537 by crypto/rsa.
const KeyBits = 2048

// pssOptions requests the largest salt the key size permits.
// PSSSaltLengthAuto makes SignPSS use the maximal salt and VerifyPSS
// auto-detect it.
var pssOptions = &rsa.PSSOptions{
	SaltLength: rsa.PSSSaltLengthAuto,
	Hash:       crypto.SHA256,
}

// GenerateKey creates a new RSA-2048 keypair.
func GenerateKey() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, errors.Join(ErrKeyGenerationFailed, err)
	}
	return key, nil
}

// Sign produces an RSA-PSS signature over message using SHA-256 and
// MGF1(SHA-256).
func Sign(message []byte, key *rsa.PrivateKey) ([]byte, error) {
	if key == nil {
		return nil, ErrNilKey
	}
	digest := sha256.Sum256(message)
	sig, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, digest[:], pssOptions)
	if err != nil {
		return nil, errors.Join(ErrSignFailed, err)
	}
	return sig, nil
}

// Verify reports whether signature is a valid RSA-PSS signature over
// message under the given public key.
func Verify(message, signature []byte, pub *rsa.PublicKey) bool {
	if pub == nil {
		return false
	}
	digest := sha256.Sum256(message)
	return rsa.VerifyPSS(pub, crypto.SHA256, digest[:], signature, pssOptions) == nil
}
