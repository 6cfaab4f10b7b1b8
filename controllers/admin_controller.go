// Package controllers provides HTTP handlers for various admin operations.
// File: controllers/admin_controller.go
package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go-drop-registry/logger"
	"go-drop-registry/middleware"
	"go-drop-registry/models"
	"go-drop-registry/services"
)

// SheetExporter publishes the day's registrations to a spreadsheet.
type SheetExporter interface {
	Export(ctx context.Context, day string, bySlot map[string][]models.Registration) (int, error)
}

// ---------------- Admin Controller ----------------

// AdminController exposes the organiser operations. Every route sits behind
// AuthRequired and AdminRequired.
type AdminController struct {
	Service  services.RegistrationServiceInterface
	Exporter SheetExporter
}

// NewAdminController initializes a new instance of AdminController.
// exporter may be nil when Google Sheets is not configured.
func NewAdminController(service services.RegistrationServiceInterface, exporter SheetExporter) *AdminController {
	return &AdminController{Service: service, Exporter: exporter}
}

func actor(c *gin.Context) string {
	p, _ := middleware.CurrentPrincipal(c)
	return p.Email
}

// ---------------- window ----------------

// Status returns the raw status record, creating it if needed.
func (ac *AdminController) Status(c *gin.Context) {
	st, err := ac.Service.Status(c.Request.Context())
	if err != nil {
		respondError(c, "AdminStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": st, "window": st.Window()})
}

// Open opens registration for today.
func (ac *AdminController) Open(c *gin.Context) {
	if err := ac.Service.OpenRegistration(c.Request.Context()); err != nil {
		respondError(c, "Open", err)
		return
	}
	logger.Info.Printf("Open: registration opened by %s", actor(c))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Close closes registration and clears the schedule.
func (ac *AdminController) Close(c *gin.Context) {
	if err := ac.Service.CloseRegistration(c.Request.Context()); err != nil {
		respondError(c, "Close", err)
		return
	}
	logger.Info.Printf("Close: registration closed by %s", actor(c))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResetDay wipes the registrations and starts a new closed day.
func (ac *AdminController) ResetDay(c *gin.Context) {
	deleted, err := ac.Service.ResetDay(c.Request.Context())
	if err != nil {
		respondError(c, "ResetDay", err)
		return
	}
	logger.Info.Printf("ResetDay: %d registrations removed by %s", deleted, actor(c))
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}

type scheduleBody struct {
	NextRegistrationStart time.Time `json:"nextRegistrationStart" binding:"required"`
}

// Schedule sets the next registration start shown as a countdown.
func (ac *AdminController) Schedule(c *gin.Context) {
	var body scheduleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Please pick a valid start time.")
		return
	}
	if err := ac.Service.ScheduleNextStart(c.Request.Context(), body.NextRegistrationStart); err != nil {
		respondError(c, "Schedule", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ---------------- slots ----------------

type limitBody struct {
	Limit int `json:"limit" binding:"required"`
}

// SetSlotLimit changes a slot's capacity.
func (ac *AdminController) SetSlotLimit(c *gin.Context) {
	var body limitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Slot limit must be at least 1.")
		return
	}
	if err := ac.Service.SetSlotLimit(c.Request.Context(), c.Param("slot"), body.Limit); err != nil {
		respondError(c, "SetSlotLimit", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type activeBody struct {
	Active *bool `json:"active" binding:"required"`
}

// SetSlotActive enables or disables a slot.
func (ac *AdminController) SetSlotActive(c *gin.Context) {
	var body activeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Please say whether the slot is active.")
		return
	}
	if err := ac.Service.SetSlotActive(c.Request.Context(), c.Param("slot"), *body.Active); err != nil {
		respondError(c, "SetSlotActive", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ---------------- registrants ----------------

// Registrations returns the day's registrations grouped by slot.
func (ac *AdminController) Registrations(c *gin.Context) {
	day, err := ac.Service.DayRegistrants(c.Request.Context())
	if err != nil {
		respondError(c, "Registrations", err)
		return
	}
	c.JSON(http.StatusOK, day)
}

// Contacts returns the comma joined e-mails and phone numbers of a slot.
func (ac *AdminController) Contacts(c *gin.Context) {
	contacts, err := ac.Service.Contacts(c.Request.Context(), c.Param("slot"))
	if err != nil {
		respondError(c, "Contacts", err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// ExportCSV downloads one slot's table for the day.
func (ac *AdminController) ExportCSV(c *gin.Context) {
	slot := c.Param("slot")
	regs, err := ac.Service.SlotRegistrants(c.Request.Context(), slot)
	if err != nil {
		respondError(c, "ExportCSV", err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteCSV(&buf, regs); err != nil {
		logger.Error.Printf("ExportCSV: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "InternalError", "message": "Export failed."})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ExportFileName(slot, "csv")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportSheets rewrites the configured spreadsheet tab.
func (ac *AdminController) ExportSheets(c *gin.Context) {
	if ac.Exporter == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "NotConfigured", "message": "Google Sheets export is not configured."})
		return
	}
	day, err := ac.Service.DayRegistrants(c.Request.Context())
	if err != nil {
		respondError(c, "ExportSheets", err)
		return
	}
	n, err := ac.Exporter.Export(c.Request.Context(), day.Day, day.BySlot)
	if err != nil {
		logger.Error.Printf("ExportSheets: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "ExportFailed", "message": "Could not write to Google Sheets."})
		return
	}
	logger.Info.Printf("ExportSheets: %d registrations for %s exported by %s", n, day.Day, actor(c))
	c.JSON(http.StatusOK, gin.H{"success": true, "exported": n})
}
