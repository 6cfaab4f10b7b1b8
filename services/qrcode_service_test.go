//go:build unit
// +build unit

// file: services/qrcode_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
)

// Mock encoder function (successful)
func mockQRCodeEncoderSuccess(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	return []byte("qr:" + content), nil
}

// Mock encoder function (failure)
func mockQRCodeEncoderFailure(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	return nil, errors.New("QR code generation failed")
}

// Test: Generate QR Code Successfully
func TestGenerateQRCode_Success(t *testing.T) {
	data, err := GenerateQRCode("https://drops.example.com/register", 200, mockQRCodeEncoderSuccess)

	assert.NoError(t, err)
	assert.Equal(t, "qr:https://drops.example.com/register", string(data))
}

// Test: the real encoder produces a PNG
func TestGenerateQRCode_DefaultEncoder(t *testing.T) {
	data, err := GenerateQRCode("https://drops.example.com/register", 128, nil)

	assert.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

// Test: Fail QR Code Generation Due to Negative Dimensions
func TestGenerateQRCode_InvalidDimensions(t *testing.T) {
	data, err := GenerateQRCode("https://drops.example.com", -100, mockQRCodeEncoderSuccess)

	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, "invalid dimensions: size must be positive", err.Error())
}

func TestGenerateQRCode_EmptyContent(t *testing.T) {
	_, err := GenerateQRCode("", 100, mockQRCodeEncoderSuccess)
	assert.Error(t, err)
}

// Test: QR Code Generation Fails Due to Encoder Error
func TestGenerateQRCode_EncoderFails(t *testing.T) {
	data, err := GenerateQRCode("https://drops.example.com", 200, mockQRCodeEncoderFailure)

	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, "QR code generation failed", err.Error())
}
