// Package services
// File: services/clock.go
package services

import "time"

// Clock supplies the current instant and the event's calendar day.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// NewClock returns a wall clock for loc (UTC when nil).
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Location: loc}
}

// Today formats the current date in the clock's zone as YYYY-MM-DD.
func (c Clock) Today() string {
	return c.now().In(c.location()).Format("2006-01-02")
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c Clock) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
