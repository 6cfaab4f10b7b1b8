// Package services
// File: services/identity.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go-drop-registry/models"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid identity token")

// IdentityClaims are the claims issued by the identity provider.
type IdentityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 identity tokens and turns them into principals.
type TokenVerifier struct {
	secret   []byte
	issuer   string
	audience string
	isAdmin  func(email string) bool
}

// NewTokenVerifier builds a verifier. issuer and audience are only enforced
// when non-empty. isAdmin decides the admin flag from the e-mail claim.
func NewTokenVerifier(secret, issuer, audience string, isAdmin func(email string) bool) *TokenVerifier {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &TokenVerifier{secret: []byte(secret), issuer: issuer, audience: audience, isAdmin: isAdmin}
}

// Verify parses and validates raw, which may carry a "Bearer " prefix.
func (v *TokenVerifier) Verify(raw string) (models.Principal, error) {
	if len(v.secret) == 0 {
		return models.Principal{}, fmt.Errorf("%w: verifier has no secret", ErrInvalidToken)
	}
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return models.Principal{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &IdentityClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return models.Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return models.Principal{
		UID:     claims.Subject,
		Email:   claims.Email,
		IsAdmin: v.isAdmin(claims.Email),
	}, nil
}

// Issue signs a token for p. The server does not mint tokens for users; it is
// used by tests and local tooling standing in for the identity provider.
func (v *TokenVerifier) Issue(p models.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
