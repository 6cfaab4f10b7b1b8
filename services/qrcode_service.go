// Package services
// File: services/qrcode_service.go
package services

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

// QRCodeEncoder has the signature of qrcode.Encode so tests can swap it.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// GenerateQRCode renders content (the public registration link) as a PNG.
func GenerateQRCode(content string, size int, encoder QRCodeEncoder) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("invalid dimensions: size must be positive")
	}
	if content == "" {
		return nil, errors.New("nothing to encode")
	}
	if encoder == nil {
		encoder = qrcode.Encode
	}
	return encoder(content, qrcode.Medium, size)
}
