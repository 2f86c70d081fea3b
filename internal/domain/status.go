// Package domain contains the core data types for the ELD backend.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (hos, repo, service, handler).
package domain

import (
	"fmt"
	"time"
)

// DutyStatus is one of the four FMCSA duty statuses a driver can be in.
// The set is closed; records with any other value are rejected at the edge.
type DutyStatus string

const (
	StatusOffDuty      DutyStatus = "off_duty"
	StatusSleeperBerth DutyStatus = "sleeper_berth"
	StatusDriving      DutyStatus = "driving"
	StatusOnDuty       DutyStatus = "on_duty"
)

// ParseDutyStatus validates a raw string against the closed status set.
func ParseDutyStatus(raw string) (DutyStatus, error) {
	switch DutyStatus(raw) {
	case StatusOffDuty, StatusSleeperBerth, StatusDriving, StatusOnDuty:
		return DutyStatus(raw), nil
	}
	return "", fmt.Errorf("%w: unknown duty status %q", ErrValidation, raw)
}

// Rest reports whether the status counts as rest for HOS break/reset rules.
func (s DutyStatus) Rest() bool {
	return s == StatusOffDuty || s == StatusSleeperBerth
}

// StatusInterval is one contiguous span of a single duty status.
// It is an immutable value; consumers drop invalid intervals rather than
// erroring, since zero-length spans are expected noise from clock skew.
type StatusInterval struct {
	Status DutyStatus `json:"status"`
	Start  time.Time  `json:"start_time"`
	End    time.Time  `json:"end_time"`
}

// Valid reports whether the interval has strictly positive duration.
func (i StatusInterval) Valid() bool {
	return i.End.After(i.Start)
}

// Duration returns End - Start.
func (i StatusInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}
