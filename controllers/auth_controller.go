// Package controllers controllers/auth_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go-drop-registry/logger"
	"go-drop-registry/middleware"
)

// PasswordChecker compares a password with the server-held admin secret.
type PasswordChecker interface {
	Configured() bool
	Check(password string) bool
}

// AuthController handles sign in, sign out and the admin password check.
type AuthController struct {
	Verifier    middleware.TokenVerifier
	Credentials PasswordChecker
}

// NewAuthController initializes a new instance of AuthController
func NewAuthController(verifier middleware.TokenVerifier, creds PasswordChecker) *AuthController {
	return &AuthController{Verifier: verifier, Credentials: creds}
}

// CreateSession exchanges an identity token for a cookie session.
func (ac *AuthController) CreateSession(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": "Missing identity token."})
		return
	}
	p, err := ac.Verifier.Verify(header)
	if err != nil {
		logger.Warn.Printf("CreateSession: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": "Sign in failed. Please try again."})
		return
	}
	if err := middleware.SaveSessionPrincipal(c, p); err != nil {
		logger.Error.Printf("CreateSession: error saving session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "InternalError", "message": "Internal error, please try again."})
		return
	}
	logger.Info.Printf("CreateSession: uid=%s email=%s admin=%t signed in", p.UID, p.Email, p.IsAdmin)
	c.JSON(http.StatusOK, p)
}

// Logout clears the session.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := middleware.ClearSession(c); err != nil {
		logger.Error.Printf("Logout: Error saving session during logout: %v", err)
	} else {
		logger.Info.Println("Logout: Session cleared successfully")
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type passwordBody struct {
	Password string `json:"password"`
}

// VerifyAdminPassword checks the admin password. It is stateless: success
// grants nothing beyond the answer.
func (ac *AuthController) VerifyAdminPassword(c *gin.Context) {
	if ac.Credentials == nil || !ac.Credentials.Configured() {
		logger.Error.Println("VerifyAdminPassword: no admin password configured")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Admin password is not configured."})
		return
	}
	var body passwordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Password is required."})
		return
	}
	if !ac.Credentials.Check(body.Password) {
		logger.Warn.Printf("VerifyAdminPassword: failed attempt from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Incorrect password."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
