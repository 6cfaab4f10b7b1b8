// Package controllers provides the HTTP handlers of the registration portal.
// File: controllers/registration_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go-drop-registry/logger"
	"go-drop-registry/middleware"
	"go-drop-registry/models"
	"go-drop-registry/services"
)

// ---------------- Registration Controller ----------------

// RegistrationController serves the team facing API.
type RegistrationController struct {
	Service services.RegistrationServiceInterface
}

// NewRegistrationController initializes a new instance of RegistrationController
func NewRegistrationController(service services.RegistrationServiceInterface) *RegistrationController {
	return &RegistrationController{Service: service}
}

// Status returns the window state and the occupancy of every slot.
func (rc *RegistrationController) Status(c *gin.Context) {
	ov, err := rc.Service.Overview(c.Request.Context())
	if err != nil {
		respondError(c, "Status", err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// Slots returns only the slot summaries.
func (rc *RegistrationController) Slots(c *gin.Context) {
	ov, err := rc.Service.Overview(c.Request.Context())
	if err != nil {
		respondError(c, "Slots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": ov.Day, "slots": ov.Slots})
}

// Options lists the slots and the three drop catalogs.
func (rc *RegistrationController) Options(c *gin.Context) {
	catalogs := models.Catalogs()
	c.JSON(http.StatusOK, gin.H{
		"slots":    models.SlotNames,
		"catalogs": catalogs[:],
	})
}

// Taken lists the drops already claimed in a slot today.
func (rc *RegistrationController) Taken(c *gin.Context) {
	taken, err := rc.Service.TakenSelections(c.Request.Context(), c.Param("slot"))
	if err != nil {
		respondError(c, "Taken", err)
		return
	}
	c.JSON(http.StatusOK, taken)
}

// Teams lists every team registered in a slot, without contacts.
func (rc *RegistrationController) Teams(c *gin.Context) {
	slot := c.Param("slot")
	teams, err := rc.Service.TeamRegistry(c.Request.Context(), slot)
	if err != nil {
		respondError(c, "Teams", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": slot, "teams": teams})
}

// Submit registers the caller's team.
func (rc *RegistrationController) Submit(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": "Please sign in to continue."})
		return
	}

	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn.Printf("Submit: bad body from uid=%s: %v", p.UID, err)
		badRequest(c, "Please fill in all fields.")
		return
	}

	reg, err := rc.Service.Submit(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, "Submit", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "registration": reg})
}

// Me returns the signed in principal.
func (rc *RegistrationController) Me(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	c.JSON(http.StatusOK, p)
}
