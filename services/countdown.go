// Package services
// File: services/countdown.go
package services

import (
	"fmt"
	"time"
)

// RegistrationOpenText is shown once the scheduled start has passed.
const RegistrationOpenText = "Registration is now open!"

// CountdownText renders the time left until next as "Xh Ym Zs until next
// registration starts". It is display only and never opens the window.
// An empty string means nothing is scheduled.
func CountdownText(next *time.Time, now time.Time) string {
	if next == nil {
		return ""
	}
	diff := next.Sub(now)
	if diff <= 0 {
		return RegistrationOpenText
	}
	total := int(diff / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%dh %dm %ds until next registration starts", h, m, s)
}
