//go:build unit
// +build unit

// file: services/countdown_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountdownText(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}

	assert.Equal(t, "", CountdownText(nil, now))
	assert.Equal(t, "0h 0m 59s until next registration starts", CountdownText(at(59*time.Second), now))
	assert.Equal(t, "26h 1m 0s until next registration starts", CountdownText(at(26*time.Hour+time.Minute), now))
	assert.Equal(t, RegistrationOpenText, CountdownText(at(0), now))
	assert.Equal(t, RegistrationOpenText, CountdownText(at(-time.Hour), now))
}
