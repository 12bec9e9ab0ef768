// Package qrcode renders TOTP provisioning URIs as scannable PNG images
// for authenticator-app enrollment.
package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent   = errors.New("content cannot be empty")
	ErrGenerateFailed = errors.New("failed to generate QR code")
)

// defaultSize is the image size in pixels used when none is specified.
const defaultSize = 256

// EncodePNG renders content as a PNG QR code.
func EncodePNG(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrGenerateFailed, err)
	}
	return png, nil
}

// EncodeDataURI renders content as a base64 data URI suitable for
// embedding directly in an <img> tag during enrollment.
func EncodeDataURI(content string, size int) (string, error) {
	png, err := EncodePNG(content, size)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)), nil
}
