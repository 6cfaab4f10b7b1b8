// Package models defines data structures used across the application.
// File: models/slot.go
package models

import "strings"

// ----------------------- time slots -----------------------

// the six daily play slots, in display order
const (
	Slot1PM  = "1 PM - 3 PM"
	Slot3PM  = "3 PM - 5 PM"
	Slot5PM  = "5 PM - 7 PM"
	Slot7PM  = "7 PM - 9 PM"
	Slot9PM  = "9 PM - 11 PM"
	Slot11PM = "11 PM - 1 AM"
)

// SlotNames lists every slot in display order.
var SlotNames = []string{Slot1PM, Slot3PM, Slot5PM, Slot7PM, Slot9PM, Slot11PM}

// DefaultSlotLimit is the capacity of a slot with no configured limit.
const DefaultSlotLimit = 16

// IsValidSlot reports whether name is one of the six slots.
func IsValidSlot(name string) bool {
	for _, s := range SlotNames {
		if s == name {
			return true
		}
	}
	return false
}

// SlotFileName turns a slot name into a file-name friendly prefix,
// e.g. "1 PM - 3 PM" becomes "1-PM---3-PM".
func SlotFileName(slot string) string {
	return strings.ReplaceAll(slot, " ", "-")
}

// ----------------------- map drop catalogs -----------------------

// MapCatalog is the fixed list of drop locations for one map.
type MapCatalog struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Contains reports whether option is in the catalog, exact match only.
func (m MapCatalog) Contains(option string) bool {
	for _, o := range m.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Erangel is the first drop selection.
var Erangel = MapCatalog{
	Name: "Erangel",
	Options: []string{
		"Sosnovka Military Base", "Mylta Power", "Small Mylta Power", "Georgopol",
		"Georgopol Crates", "Pochinki", "Yasnaya Polyana", "School", "Rozhok",
		"Hospital", "Shelter", "Prison", "Mansion", "Novorepnoye", "Ferry Pier",
		"Primorsk", "Lipovka", "Severny", "Kameshki", "Shooting Range", "Ruins",
		"Stalber", "Quarry", "Gatka", "Farm", "Zharki", "Mylta",
	},
}

// Miramar is the second drop selection.
var Miramar = MapCatalog{
	Name: "Miramar",
	Options: []string{
		"Hacienda del Patrón", "Los Leones", "Pecado", "Chumacera", "San Martin",
		"Monte Nuevo", "Imapala", "El Azahar", "Valle del Mar", "Cruz del Valle",
		"Water Treatment", "Campo Militar", "Ruins", "Prison", "Ladrilleria",
	},
}

// Sanhok is the third drop selection.
var Sanhok = MapCatalog{
	Name: "Sanhok",
	Options: []string{
		"Bootcamp", "Paradise Resort", "Pai Nan", "Camp Alpha", "Camp Bravo",
		"Camp Charlie", "Ruins", "Quarry", "Ha Tinh", "Sahmee (Sah Mee)", "Cave",
		"Docks", "Mount Tyna",
	},
}

// Catalogs returns the three catalogs indexed by dropdown position.
func Catalogs() [3]MapCatalog {
	return [3]MapCatalog{Erangel, Miramar, Sanhok}
}
