// Package service contains the business logic for the ELD backend.
// Services validate inputs, enforce business rules, and orchestrate repo,
// engine, and provider calls. No SQL and no HTTP live here.
package service

import "time"

// Clock supplies "now" so services stay deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, reading the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ResolveZone loads the named time zone, falling back to fallback when the
// name is empty or unknown. A driver record carrying a bad zone identifier
// must degrade to the terminal default, never fail the request.
func ResolveZone(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}
