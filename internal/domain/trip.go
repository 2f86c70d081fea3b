package domain

import (
	"time"

	"github.com/google/uuid"
)

// Location is a named map point entered at trip creation.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Trip is the top-level aggregate: one haul from a current location through
// pickup to dropoff, owned by a single driver.
//
// The pair CurrentStatus / CurrentStatusStartedAt models the open duty
// interval and is always both set (trip active) or both nil (trip completed).
// Go has no tagged unions, so the invariant lives in the OpenInterval and
// Completed accessors plus the repo transition SQL, which are the only
// writers of the pair.
type Trip struct {
	ID       uuid.UUID `json:"id"`
	DriverID uuid.UUID `json:"driver_id"`

	CurrentLocation Location `json:"current_location"`
	PickupLocation  Location `json:"pickup_location"`
	DropoffLocation Location `json:"dropoff_location"`

	// CycleUsedHours is the on-duty time already consumed in the current
	// 8-day cycle before this trip started, 0.00-70.00.
	CycleUsedHours float64 `json:"cycle_used_hours"`

	CurrentStatus          *DutyStatus `json:"current_status,omitempty"`
	CurrentStatusStartedAt *time.Time  `json:"current_status_started_at,omitempty"`
	CompletedAt            *time.Time  `json:"completed_at,omitempty"`

	Route RouteSummary `json:"route"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OpenInterval returns the trip's open duty interval descriptor, or ok=false
// when the trip is completed. A trip with only half the pair set is corrupt
// data; treating it as closed keeps the timeline code total.
func (t Trip) OpenInterval() (OpenInterval, bool) {
	if t.CurrentStatus == nil || t.CurrentStatusStartedAt == nil {
		return OpenInterval{}, false
	}
	return OpenInterval{Status: *t.CurrentStatus, Since: *t.CurrentStatusStartedAt}, true
}

// Completed reports whether the trip has reached its terminal state.
// Completed trips never accept further status transitions.
func (t Trip) Completed() bool {
	return t.CompletedAt != nil
}

// OpenInterval describes a duty interval that has started but not yet closed.
type OpenInterval struct {
	Status DutyStatus
	Since  time.Time
}

// StatusEvent is one closed duty interval persisted against a trip.
// Events are append-only and never mutated after creation.
type StatusEvent struct {
	ID        uuid.UUID  `json:"id"`
	TripID    uuid.UUID  `json:"trip_id"`
	Status    DutyStatus `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	CreatedAt time.Time  `json:"created_at"`
}

// Interval converts the stored event into the engine's value type.
func (e StatusEvent) Interval() StatusInterval {
	return StatusInterval{Status: e.Status, Start: e.StartTime, End: e.EndTime}
}
