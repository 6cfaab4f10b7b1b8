// controllers/admin_controller_test.go
//go:build unit
// +build unit

package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go-drop-registry/middleware"
	"go-drop-registry/models"
	"go-drop-registry/services"
)

var organiser = models.Principal{UID: "uid-admin", Email: "lead@organisers.gg", IsAdmin: true}

type fakeExporter struct {
	day    string
	bySlot map[string][]models.Registration
	err    error
}

func (f *fakeExporter) Export(_ context.Context, day string, bySlot map[string][]models.Registration) (int, error) {
	f.day, f.bySlot = day, bySlot
	n := 0
	for _, regs := range bySlot {
		n += len(regs)
	}
	return n, f.err
}

func setupAdminRouter(t *testing.T, svc services.RegistrationServiceInterface, exp SheetExporter, who models.Principal) (*gin.Engine, *http.Cookie) {
	t.Helper()
	router := setupTestRouter(t)
	cookie := principalSession(router, who)

	ac := NewAdminController(svc, exp)
	admin := router.Group("/admin", middleware.AuthRequired(nil), middleware.AdminRequired())
	{
		admin.GET("/status", ac.Status)
		admin.POST("/registration/open", ac.Open)
		admin.POST("/registration/close", ac.Close)
		admin.POST("/day/reset", ac.ResetDay)
		admin.PUT("/slots/:slot/limit", ac.SetSlotLimit)
		admin.PUT("/slots/:slot/active", ac.SetSlotActive)
		admin.PUT("/schedule", ac.Schedule)
		admin.GET("/registrations", ac.Registrations)
		admin.GET("/slots/:slot/contacts", ac.Contacts)
		admin.GET("/slots/:slot/export.csv", ac.ExportCSV)
		admin.POST("/export/sheets", ac.ExportSheets)
	}
	return router, cookie
}

func TestAdmin_NonAdminForbidden(t *testing.T) {
	svc := new(services.MockRegistrationService)
	router, cookie := setupAdminRouter(t, svc, nil, team)

	w := doJSON(router, "POST", "/admin/registration/open", nil, cookie)

	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertNotCalled(t, "OpenRegistration", mock.Anything)
}

func TestAdmin_OpenCloseReset(t *testing.T) {
	svc := new(services.MockRegistrationService)
	svc.On("OpenRegistration", mock.Anything).Return(nil)
	svc.On("CloseRegistration", mock.Anything).Return(nil)
	svc.On("ResetDay", mock.Anything).Return(int64(7), nil)
	router, cookie := setupAdminRouter(t, svc, nil, organiser)

	assert.Equal(t, http.StatusOK, doJSON(router, "POST", "/admin/registration/open", nil, cookie).Code)
	assert.Equal(t, http.StatusOK, doJSON(router, "POST", "/admin/registration/close", nil, cookie).Code)

	w := doJSON(router, "POST", "/admin/day/reset", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"deleted":7}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestAdmin_StoreDownIs503(t *testing.T) {
	svc := new(services.MockRegistrationService)
	svc.On("OpenRegistration", mock.Anything).
		Return(&services.Rejection{Kind: services.KindStoreUnavailable, Message: "down", Err: errors.New("dial tcp")})
	router, cookie := setupAdminRouter(t, svc, nil, organiser)

	w := doJSON(router, "POST", "/admin/registration/open", nil, cookie)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "dial tcp")
}

func TestAdmin_SlotSettings(t *testing.T) {
	svc := new(services.MockRegistrationService)
	svc.On("SetSlotLimit", mock.Anything, models.Slot5PM, 12).Return(nil)
	svc.On("SetSlotActive", mock.Anything, models.Slot5PM, false).Return(nil)
	router, cookie := setupAdminRouter(t, svc, nil, organiser)

	slotPath := "/admin/slots/5%20PM%20-%207%20PM"
	assert.Equal(t, http.StatusOK, doJSON(router, "PUT", slotPath+"/limit", map[string]int{"limit": 12}, cookie).Code)
	assert.Equal(t, http.StatusOK, doJSON(router, "PUT", slotPath+"/active", map[string]bool{"active": false}, cookie).Code)

	// missing fields never reach the service
	assert.Equal(t, http.StatusBadRequest, doJSON(router, "PUT", slotPath+"/limit", map[string]int{}, cookie).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(router, "PUT", slotPath+"/active", map[string]int{}, cookie).Code)
	svc.AssertExpectations(t)
}

func TestAdmin_Schedule(t *testing.T) {
	at := time.Date(2026, 10, 18, 13, 30, 0, 0, time.UTC)
	svc := new(services.MockRegistrationService)
	svc.On("ScheduleNextStart", mock.Anything, mock.MatchedBy(func(got time.Time) bool { return got.Equal(at) })).Return(nil)
	router, cookie := setupAdminRouter(t, svc, nil, organiser)

	w := doJSON(router, "PUT", "/admin/schedule", map[string]string{"nextRegistrationStart": "2026-10-18T19:00:00+05:30"}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "PUT", "/admin/schedule", map[string]string{"nextRegistrationStart": "tomorrow"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "ScheduleNextStart", 1)
}

func TestAdmin_ContactsAndCSV(t *testing.T) {
	regs := []models.Registration{
		{TeamName: "Alpha", Dropdown1Selection: "Pochinki", Dropdown2Selection: "Pecado", Dropdown3Selection: "Cave"},
	}
	svc := new(services.MockRegistrationService)
	svc.On("Contacts", mock.Anything, models.Slot1PM).
		Return(services.Contacts{Slot: models.Slot1PM, Emails: "a@x.gg, b@x.gg", Phones: "1, 2"}, nil)
	svc.On("SlotRegistrants", mock.Anything, models.Slot1PM).Return(regs, nil)
	router, cookie := setupAdminRouter(t, svc, nil, organiser)

	w := doJSON(router, "GET", "/admin/slots/1%20PM%20-%203%20PM/contacts", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"emails":"a@x.gg, b@x.gg"`)

	w = doJSON(router, "GET", "/admin/slots/1%20PM%20-%203%20PM/export.csv", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="1-PM---3-PM-registrations.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "3,Alpha,Pochinki,Pecado,Cave")
}

func TestAdmin_ExportSheets(t *testing.T) {
	day := services.DayRegistrants{Day: "2026-10-17", BySlot: map[string][]models.Registration{
		models.Slot1PM: {{TeamName: "Alpha"}, {TeamName: "Bravo"}},
	}}
	svc := new(services.MockRegistrationService)
	svc.On("DayRegistrants", mock.Anything).Return(day, nil)

	t.Run("not configured", func(t *testing.T) {
		router, cookie := setupAdminRouter(t, svc, nil, organiser)
		assert.Equal(t, http.StatusNotImplemented, doJSON(router, "POST", "/admin/export/sheets", nil, cookie).Code)
	})
	t.Run("exported", func(t *testing.T) {
		exp := &fakeExporter{}
		router, cookie := setupAdminRouter(t, svc, exp, organiser)
		w := doJSON(router, "POST", "/admin/export/sheets", nil, cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"exported":2}`, w.Body.String())
		assert.Equal(t, "2026-10-17", exp.day)
	})
	t.Run("sheets error", func(t *testing.T) {
		router, cookie := setupAdminRouter(t, svc, &fakeExporter{err: errors.New("quota")}, organiser)
		assert.Equal(t, http.StatusBadGateway, doJSON(router, "POST", "/admin/export/sheets", nil, cookie).Code)
	})
}
