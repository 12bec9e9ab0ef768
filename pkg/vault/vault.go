package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

const (
	// KeySize is the required key size for AES-256.
	KeySize = 32

	// IVSize is the GCM nonce length. A fresh random IV is generated on
	// every Seal call; IV reuse under the same key is forbidden.
	IVSize = 12

	// TagSize is the GCM authentication tag length.
	TagSize = 16
)

// SealedBox holds an authenticated ciphertext split into its stored
// components. All four fields must be persisted together, atomically:
// losing any one of them makes the ciphertext permanently unrecoverable.
//
// Salt is not produced by Seal. It carries the KDF salt the wrapping key
// was derived with, so the key can be re-derived at Open time.
type SealedBox struct {
	Ciphertext []byte
	IV         []byte
	Tag        []byte
	Salt       []byte
}

// Seal encrypts plaintext with AES-256-GCM under the given 32-byte key,
// generating a fresh random 12-byte IV.
func Seal(plaintext, key []byte) (SealedBox, error) {
	aead, err := newGCM(key, ErrSealFailed)
	if err != nil {
		return SealedBox{}, err
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return SealedBox{}, errors.Join(ErrSealFailed, err)
	}

	sealed := aead.Seal(nil, iv, plaintext, nil)

	// GCM appends the tag to the ciphertext; keep the components separate
	// so each is stored in its own column.
	split := len(sealed) - TagSize
	return SealedBox{
		Ciphertext: sealed[:split],
		IV:         iv,
		Tag:        sealed[split:],
	}, nil
}

// Open decrypts a SealedBox, verifying the authentication tag. Any
// mismatch, whether from a wrong key or corrupted components, returns
// ErrIntegrity and never silently wrong plaintext.
func Open(box SealedBox, key []byte) ([]byte, error) {
	aead, err := newGCM(key, ErrOpenFailed)
	if err != nil {
		return nil, err
	}
	if len(box.IV) != IVSize {
		return nil, errors.Join(ErrOpenFailed, ErrInvalidIVSize)
	}

	sealed := make([]byte, 0, len(box.Ciphertext)+len(box.Tag))
	sealed = append(sealed, box.Ciphertext...)
	sealed = append(sealed, box.Tag...)

	plaintext, err := aead.Open(nil, box.IV, sealed, nil)
	if err != nil {
		return nil, ErrIntegrity
	}
	return plaintext, nil
}

func newGCM(key []byte, wrap error) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, errors.Join(wrap, ErrInvalidKeyLength)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(wrap, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(wrap, err)
	}
	return aead, nil
}
