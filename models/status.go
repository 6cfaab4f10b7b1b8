// Package models
// File: models/status.go
package models

import "time"

// StatusDocumentID is the key of the AdminStatus singleton.
const StatusDocumentID = "global"

// ---------------------- admin status ----------------------

// AdminStatus is the single control record for the registration window.
type AdminStatus struct {
	IsRegistrationOpen    bool            `json:"isRegistrationOpen" bson:"isRegistrationOpen" firestore:"isRegistrationOpen"`
	Day                   string          `json:"day" bson:"day" firestore:"day"`
	SlotLimits            map[string]int  `json:"slotLimits" bson:"slotLimits" firestore:"slotLimits"`
	ActiveSlots           map[string]bool `json:"activeSlots" bson:"activeSlots" firestore:"activeSlots"`
	NextRegistrationStart *time.Time      `json:"nextRegistrationStart" bson:"nextRegistrationStart" firestore:"nextRegistrationStart"`
}

// DefaultAdminStatus is the record created when none exists: closed, every
// slot active with the default limit, nothing scheduled.
func DefaultAdminStatus(day string) AdminStatus {
	s := AdminStatus{Day: day}
	return s.WithDefaults()
}

// WithDefaults returns a copy whose limit and active maps cover every slot.
// Missing limits read as DefaultSlotLimit, missing flags as active.
func (s AdminStatus) WithDefaults() AdminStatus {
	limits := make(map[string]int, len(SlotNames))
	active := make(map[string]bool, len(SlotNames))
	for _, slot := range SlotNames {
		limits[slot] = DefaultSlotLimit
		active[slot] = true
	}
	for slot, n := range s.SlotLimits {
		limits[slot] = n
	}
	for slot, on := range s.ActiveSlots {
		active[slot] = on
	}
	s.SlotLimits = limits
	s.ActiveSlots = active
	if s.NextRegistrationStart != nil {
		t := *s.NextRegistrationStart
		s.NextRegistrationStart = &t
	}
	return s
}

// LimitFor returns the capacity of slot.
func (s AdminStatus) LimitFor(slot string) int {
	if n, ok := s.SlotLimits[slot]; ok {
		return n
	}
	return DefaultSlotLimit
}

// IsSlotActive reports whether slot accepts registrations.
func (s AdminStatus) IsSlotActive(slot string) bool {
	if on, ok := s.ActiveSlots[slot]; ok {
		return on
	}
	return true
}

// ---------------------- window state ----------------------

// WindowState is the derived state of the registration window.
type WindowState string

const (
	WindowClosedNoSchedule WindowState = "CLOSED_NO_SCHEDULE"
	WindowClosedScheduled  WindowState = "CLOSED_SCHEDULED"
	WindowOpen             WindowState = "OPEN"
)

// Window derives the window state from the flag and the scheduled start.
func (s AdminStatus) Window() WindowState {
	switch {
	case s.IsRegistrationOpen:
		return WindowOpen
	case s.NextRegistrationStart != nil:
		return WindowClosedScheduled
	default:
		return WindowClosedNoSchedule
	}
}
