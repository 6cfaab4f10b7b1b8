// Package store persists the admin status singleton and team registrations.
// File: store/store_interface.go
package store

import (
	"context"
	"errors"
	"time"

	"go-drop-registry/models"
)

// collection names shared by every backend
const (
	StatusCollection       = "adminStatus"
	RegistrationCollection = "registrations"
)

// ErrClosed is returned by a store after Close.
var ErrClosed = errors.New("store: closed")

// Interface is the document store the registration service talks to. It is
// implemented by the MongoDB, Firestore and in-memory stores so services can
// be tested without a database.
type Interface interface {
	// GetStatus returns the stored status and whether it exists.
	GetStatus(ctx context.Context) (models.AdminStatus, bool, error)
	// EnsureStatus creates the status from defaults if absent and returns
	// whatever is stored afterwards.
	EnsureStatus(ctx context.Context, defaults models.AdminStatus) (models.AdminStatus, error)
	// UpdateStatus writes the set fields of u in a single document write.
	UpdateStatus(ctx context.Context, u StatusUpdate) error

	ListRegistrations(ctx context.Context, f RegistrationFilter) ([]models.Registration, error)
	CreateRegistration(ctx context.Context, r models.Registration) error
	// DeleteAllRegistrations removes every registration regardless of date.
	DeleteAllRegistrations(ctx context.Context) (int64, error)

	// WatchStatus calls fn with the current status and again after each change.
	WatchStatus(ctx context.Context, fn StatusHandler) (*Subscription, error)
	// WatchRegistrations calls fn with the registrations matching f and again
	// after each change to the collection.
	WatchRegistrations(ctx context.Context, f RegistrationFilter, fn RegistrationsHandler) (*Subscription, error)

	Close(ctx context.Context) error
}

// StatusHandler receives status snapshots. exists is false until the
// singleton has been created.
type StatusHandler func(status models.AdminStatus, exists bool)

// RegistrationsHandler receives registration query snapshots.
type RegistrationsHandler func(regs []models.Registration)

// RegistrationFilter selects registrations by equality. Empty fields match all.
type RegistrationFilter struct {
	TimeSlot string
	Date     string
}

// Matches reports whether r passes the filter.
func (f RegistrationFilter) Matches(r models.Registration) bool {
	if f.TimeSlot != "" && r.TimeSlot != f.TimeSlot {
		return false
	}
	if f.Date != "" && r.Date != f.Date {
		return false
	}
	return true
}

// ---------------- status updates ----------------

// StatusUpdate is a partial write of the status singleton. Nil fields are
// left untouched. Slot map entries are written one key at a time.
type StatusUpdate struct {
	IsRegistrationOpen         *bool
	Day                        *string
	SlotLimits                 map[string]int
	ActiveSlots                map[string]bool
	NextRegistrationStart      *time.Time
	ClearNextRegistrationStart bool
}

// Apply returns s with the update applied. Backends without partial writes
// of their own use it.
func (u StatusUpdate) Apply(s models.AdminStatus) models.AdminStatus {
	s = s.WithDefaults()
	if u.IsRegistrationOpen != nil {
		s.IsRegistrationOpen = *u.IsRegistrationOpen
	}
	if u.Day != nil {
		s.Day = *u.Day
	}
	for slot, n := range u.SlotLimits {
		s.SlotLimits[slot] = n
	}
	for slot, on := range u.ActiveSlots {
		s.ActiveSlots[slot] = on
	}
	if u.ClearNextRegistrationStart {
		s.NextRegistrationStart = nil
	}
	if u.NextRegistrationStart != nil {
		t := *u.NextRegistrationStart
		s.NextRegistrationStart = &t
	}
	return s
}

// IsEmpty reports whether the update writes nothing.
func (u StatusUpdate) IsEmpty() bool {
	return u.IsRegistrationOpen == nil && u.Day == nil && len(u.SlotLimits) == 0 &&
		len(u.ActiveSlots) == 0 && u.NextRegistrationStart == nil && !u.ClearNextRegistrationStart
}
