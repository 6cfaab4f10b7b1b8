// Package controllers file: controllers/page_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go-drop-registry/logger"
	"go-drop-registry/services"
)

// ApplicationURL is the public address encoded in the QR code.
var ApplicationURL string

// SetConfig sets the global application URL.
func SetConfig(appURL string) {
	ApplicationURL = appURL
	logger.Info.Printf("SetConfig: Global config updated: ApplicationURL=%s", appURL)
}

// HealthReporter reports the last store check.
type HealthReporter interface {
	LastCheck() (ok bool, at time.Time, err error)
}

// Health answers 200 while the store heartbeat succeeds and 503 otherwise.
// Without a reporter it only says the process is up.
func Health(reporter HealthReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if reporter == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		ok, at, err := reporter.LastCheck()
		body := gin.H{"status": "ok", "checkedAt": at}
		if !ok {
			body["status"] = "degraded"
			logger.Warn.Printf("Health: store check failing: %v", err)
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}

// GetQRCode serves a QR code of the public registration URL.
func GetQRCode(encoder services.QRCodeEncoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger.Info.Println("GetQRCode: Generating QR code")

		qrBytes, err := services.GenerateQRCode(ApplicationURL, 300, encoder)
		if err != nil {
			logger.Error.Printf("GetQRCode: Error generating QR code: %v", err)
			c.String(http.StatusInternalServerError, "QR generation failed")
			return
		}

		c.Header("Content-Disposition", "inline; filename=\"qrcode.png\"")
		c.Data(http.StatusOK, "image/png", qrBytes)
	}
}
