//go:build unit
// +build unit

// file: controllers/main_test.go
package controllers

import (
	"io"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"go-drop-registry/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.UseWriter(io.Discard)

	code := m.Run()
	os.Exit(code)
}
