// Package services
// File: services/credentials.go
package services

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// AdminCredentials holds the server side secret for the admin password check.
// A bcrypt hash takes precedence over a plain password.
type AdminCredentials struct {
	hash  []byte
	plain []byte
}

// NewAdminCredentials accepts either value; both may be empty.
func NewAdminCredentials(plain, hash string) *AdminCredentials {
	return &AdminCredentials{hash: []byte(hash), plain: []byte(plain)}
}

// Configured reports whether any secret is set.
func (a *AdminCredentials) Configured() bool {
	return len(a.hash) > 0 || len(a.plain) > 0
}

// Check compares password with the configured secret.
func (a *AdminCredentials) Check(password string) bool {
	if len(a.hash) > 0 {
		return ComparePasswords(string(a.hash), password)
	}
	if len(a.plain) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(a.plain, []byte(password)) == 1
}

// ComparePasswords checks if the given password matches the hashed password.
func ComparePasswords(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}
