// Package middleware provides request filters and security checks for the application.
// File: middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go-drop-registry/logger"
	"go-drop-registry/models"
)

// session keys holding the signed in principal
const (
	SessionUID     = "uid"
	SessionEmail   = "email"
	SessionIsAdmin = "isAdmin"
)

// principalKey is the gin context key set by AuthRequired.
const principalKey = "principal"

// TokenVerifier turns an identity token into a principal.
type TokenVerifier interface {
	Verify(raw string) (models.Principal, error)
}

// -------------- authentication middleware --------------

// AuthRequired ensures the caller is signed in.
// How it works:
//   - A bearer token in the Authorization header is verified and wins.
//   - Otherwise the principal stored in the cookie session is used.
//   - If neither is present the request is answered with 401 JSON and aborted.
//
// Usage:
//
//	api.POST("/registrations", AuthRequired(verifier), handler)
func AuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") && verifier != nil {
			p, err := verifier.Verify(header)
			if err != nil {
				logger.Warn.Printf("AuthRequired: bearer token rejected: %v", err)
				unauthorized(c, "Your sign-in has expired. Please sign in again.")
				return
			}
			c.Set(principalKey, p)
			c.Next()
			return
		}

		p, ok := SessionPrincipal(c)
		if !ok {
			logger.Debug.Printf("AuthRequired: no principal for %s %s", c.Request.Method, c.Request.URL.Path)
			unauthorized(c, "Please sign in to continue.")
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// CurrentPrincipal returns the principal set by AuthRequired.
func CurrentPrincipal(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}

// SessionPrincipal reads the principal from the cookie session.
func SessionPrincipal(c *gin.Context) (models.Principal, bool) {
	session := sessions.Default(c)
	uid, _ := session.Get(SessionUID).(string)
	if uid == "" {
		return models.Principal{}, false
	}
	email, _ := session.Get(SessionEmail).(string)
	isAdmin, _ := session.Get(SessionIsAdmin).(bool)
	return models.Principal{UID: uid, Email: email, IsAdmin: isAdmin}, true
}

// SaveSessionPrincipal stores p in the cookie session.
func SaveSessionPrincipal(c *gin.Context, p models.Principal) error {
	session := sessions.Default(c)
	session.Set(SessionUID, p.UID)
	session.Set(SessionEmail, p.Email)
	session.Set(SessionIsAdmin, p.IsAdmin)
	return session.Save()
}

// ClearSession drops everything in the cookie session.
func ClearSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

func unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": msg})
	c.Abort() // 🔴 prevents further execution
}
