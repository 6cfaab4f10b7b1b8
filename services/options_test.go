//go:build unit
// +build unit

// file: services/options_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go-drop-registry/models"
)

func TestResolveOption(t *testing.T) {
	tests := []struct {
		name    string
		catalog models.MapCatalog
		input   string
		want    string
		wantErr bool
	}{
		{"exact", models.Erangel, "Georgopol", "Georgopol", false},
		{"case insensitive", models.Erangel, "GEORGOPOL", "Georgopol", false},
		{"surrounding space", models.Sanhok, "  Cave ", "Cave", false},
		{"prefix", models.Sanhok, "Paradise", "Paradise Resort", false},
		{"accents ignored", models.Miramar, "hacienda del patron", "Hacienda del Patrón", false},
		{"exact beats longer match", models.Erangel, "Mylta", "Mylta", false},
		{"accents ignored in prefix", models.Miramar, "hacienda", "Hacienda del Patrón", false},
		{"word prefix", models.Sanhok, "boot", "Bootcamp", false},
		{"word inside option", models.Miramar, "treat", "Water Treatment", false},
		{"ambiguous", models.Sanhok, "Camp", "", true},
		{"ambiguous short prefix", models.Sanhok, "Cam", "", true},
		{"ambiguous across options", models.Erangel, "Mylt", "", true},
		{"single letter", models.Erangel, "y", "", true},
		{"single capital", models.Erangel, "P", "", true},
		{"two letters", models.Sanhok, "Pc", "", true},
		{"subsequence is not a prefix", models.Erangel, "Pchnk", "", true},
		{"unknown", models.Miramar, "Atlantis", "", true},
		{"empty", models.Erangel, "", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveOption(tc.catalog, tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
