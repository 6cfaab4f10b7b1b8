// Package models
// File: models/registration.go
package models

import "time"

// ------------------------ registration ------------------------

// Registration is one team's claim on a slot for a day.
type Registration struct {
	ID                 string    `json:"id" bson:"_id" firestore:"-"`
	TeamName           string    `json:"teamName" bson:"teamName" firestore:"teamName"`
	ManagerEmail       string    `json:"managerEmail" bson:"managerEmail" firestore:"managerEmail"`
	Whatsapp           string    `json:"whatsapp" bson:"whatsapp" firestore:"whatsapp"`
	TimeSlot           string    `json:"timeSlot" bson:"timeSlot" firestore:"timeSlot"`
	Dropdown1Selection string    `json:"dropdown1Selection" bson:"dropdown1Selection" firestore:"dropdown1Selection"`
	Dropdown2Selection string    `json:"dropdown2Selection" bson:"dropdown2Selection" firestore:"dropdown2Selection"`
	Dropdown3Selection string    `json:"dropdown3Selection" bson:"dropdown3Selection" firestore:"dropdown3Selection"`
	Date               string    `json:"date" bson:"date" firestore:"date"`
	CreatedAt          time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UserID             string    `json:"userId" bson:"userId" firestore:"userId"`
}

// TeamEntry is the public view of a registration shown on the team registry.
type TeamEntry struct {
	TeamName           string `json:"teamName"`
	Dropdown1Selection string `json:"dropdown1Selection"`
	Dropdown2Selection string `json:"dropdown2Selection"`
	Dropdown3Selection string `json:"dropdown3Selection"`
}

// Public strips contact details.
func (r Registration) Public() TeamEntry {
	return TeamEntry{
		TeamName:           r.TeamName,
		Dropdown1Selection: r.Dropdown1Selection,
		Dropdown2Selection: r.Dropdown2Selection,
		Dropdown3Selection: r.Dropdown3Selection,
	}
}

// TakenSelections holds the drop values already claimed in one slot and day,
// one set per dropdown.
type TakenSelections struct {
	Dropdown1 []string `json:"dropdown1"`
	Dropdown2 []string `json:"dropdown2"`
	Dropdown3 []string `json:"dropdown3"`
}

// CollectTaken gathers the claimed values from regs.
func CollectTaken(regs []Registration) TakenSelections {
	t := TakenSelections{Dropdown1: []string{}, Dropdown2: []string{}, Dropdown3: []string{}}
	for _, r := range regs {
		t.Dropdown1 = append(t.Dropdown1, r.Dropdown1Selection)
		t.Dropdown2 = append(t.Dropdown2, r.Dropdown2Selection)
		t.Dropdown3 = append(t.Dropdown3, r.Dropdown3Selection)
	}
	return t
}

// Collides reports whether any of the three choices is already claimed at
// the same dropdown position.
func (t TakenSelections) Collides(d1, d2, d3 string) bool {
	return contains(t.Dropdown1, d1) || contains(t.Dropdown2, d2) || contains(t.Dropdown3, d3)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ------------------------ principal ------------------------

// Principal is the authenticated caller.
type Principal struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// SlotSummary is the per-slot occupancy shown to teams and admins.
type SlotSummary struct {
	Slot      string `json:"slot"`
	Active    bool   `json:"active"`
	Limit     int    `json:"limit"`
	Count     int    `json:"count"`
	Remaining int    `json:"remaining"`
	Full      bool   `json:"full"`
}
