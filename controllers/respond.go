// Package controllers
// File: controllers/respond.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go-drop-registry/logger"
	"go-drop-registry/services"
)

// StatusFor maps a rejection kind onto its HTTP status.
func StatusFor(kind services.RejectionKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindWindowClosed, services.KindSlotInactive:
		return http.StatusForbidden
	case services.KindSlotFull, services.KindSelectionConflict:
		return http.StatusConflict
	case services.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError answers with {"error": kind, "message": text}.
func respondError(c *gin.Context, where string, err error) {
	rej, ok := services.AsRejection(err)
	if !ok {
		logger.Error.Printf("%s: unexpected error: %v", where, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "InternalError", "message": "Something went wrong. Please try again."})
		return
	}
	if rej.Kind == services.KindStoreUnavailable {
		logger.Error.Printf("%s: %v", where, err)
	}
	c.JSON(StatusFor(rej.Kind), gin.H{"error": string(rej.Kind), "message": rej.Message})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": string(services.KindValidation), "message": msg})
}
