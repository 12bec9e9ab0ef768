package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// Digits is the code length (RFC 6238 standard).
	Digits = 6

	// Period is the code validity window in seconds (RFC 6238 standard).
	Period = 30

	// SkewSteps is the accepted clock drift in 30-second steps on either
	// side of "now". One step each way: codes from the previous, current
	// and next window verify.
	SkewSteps = 1

	// secretBytes gives a 160-bit secret (RFC 4226 recommendation).
	secretBytes = 20
)

var (
	// secretKeyRegex enforces Base32 format: uppercase A-Z, digits 2-7,
	// optional padding.
	secretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	codeRegex = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, Digits))
)

// GenerateSecret generates a new Base32-encoded shared secret.
func GenerateSecret() (string, error) {
	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecret, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// ProvisioningURI builds an otpauth:// URI for the given secret following
// the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
//
// Rendering the URI as a scannable image is the caller's concern.
func ProvisioningURI(secret, accountLabel, issuer string) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	if !secretKeyRegex.MatchString(secret) {
		return "", ErrInvalidSecret
	}
	if accountLabel == "" {
		return "", ErrMissingAccountLabel
	}
	if issuer == "" {
		return "", ErrMissingIssuer
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(issuer),
		url.PathEscape(accountLabel),
	)

	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// Verify reports whether code is valid for the secret at the given time,
// accepting SkewSteps steps of drift on either side.
func Verify(secret, code string, now time.Time) (bool, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !secretKeyRegex.MatchString(secret) {
		return false, ErrInvalidSecret
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil {
		return false, errors.Join(ErrFailedToVerify, err)
	}

	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false, ErrInvalidCodeFormat
	}

	counter := now.Unix() / Period
	for i := -SkewSteps; i <= SkewSteps; i++ {
		candidate := fmt.Sprintf("%06d", hotp(key, counter+int64(i)))
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(code)) == 1 {
			return true, nil
		}
	}
	return false, nil
}

// GenerateCodeAt returns the code for the 30-second window containing t.
// Used by enrollment previews and tests.
func GenerateCodeAt(secret string, t time.Time) (string, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !secretKeyRegex.MatchString(secret) {
		return "", ErrInvalidSecret
	}
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerate, err)
	}
	return fmt.Sprintf("%06d", hotp(key, t.Unix()/Period)), nil
}

// hotp implements the RFC 4226 HMAC-based one-time password algorithm
// with HMAC-SHA1 and dynamic truncation.
func hotp(key []byte, counter int64) int {
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	code := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]&0xff) << 16) |
		(int(sum[offset+2]&0xff) << 8) |
		int(sum[offset+3]&0xff)

	return code % int(math.Pow10(Digits))
}
