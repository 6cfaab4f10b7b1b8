//go:build unit
// +build unit

// file: controllers/auth_controller_test.go
package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-drop-registry/middleware"
	"go-drop-registry/models"
	"go-drop-registry/services"
)

func setupAuthRouter(t *testing.T, creds PasswordChecker) (*gin.Engine, *services.TokenVerifier) {
	t.Helper()
	router := setupTestRouter(t)
	verifier := services.NewTokenVerifier("test-jwt-secret", "", "", func(email string) bool {
		return email == "lead@organisers.gg"
	})
	ac := NewAuthController(verifier, creds)
	router.POST("/auth/session", ac.CreateSession)
	router.POST("/auth/logout", ac.Logout)
	router.POST("/api/verify-admin-password", ac.VerifyAdminPassword)
	router.GET("/api/me", middleware.AuthRequired(verifier), func(c *gin.Context) {
		p, _ := middleware.CurrentPrincipal(c)
		c.JSON(http.StatusOK, p)
	})
	return router, verifier
}

func TestCreateSession_ThenCookieAuth(t *testing.T) {
	router, verifier := setupAuthRouter(t, nil)
	token, err := verifier.Issue(models.Principal{UID: "u1", Email: "lead@organisers.gg"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"u1","email":"lead@organisers.gg","isAdmin":true}`, w.Body.String())

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "testsession" {
			session = c
		}
	}
	require.NotNil(t, session)

	me := doJSON(router, "GET", "/api/me", nil, session)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"uid":"u1"`)
}

func TestCreateSession_BadToken(t *testing.T) {
	router, _ := setupAuthRouter(t, nil)

	req := httptest.NewRequest("POST", "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "POST", "/auth/session", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	router, _ := setupAuthRouter(t, nil)
	cookie := principalSession(router, team)

	w := doJSON(router, "POST", "/auth/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestVerifyAdminPassword(t *testing.T) {
	router, _ := setupAuthRouter(t, services.NewAdminCredentials("", hashPassword("open-sesame")))

	w := doJSON(router, "POST", "/api/verify-admin-password", map[string]string{"password": "open-sesame"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = doJSON(router, "POST", "/api/verify-admin-password", map[string]string{"password": "guess"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Incorrect password."}`, w.Body.String())
}

func TestVerifyAdminPassword_NotConfigured(t *testing.T) {
	router, _ := setupAuthRouter(t, services.NewAdminCredentials("", ""))

	w := doJSON(router, "POST", "/api/verify-admin-password", map[string]string{"password": "x"}, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
