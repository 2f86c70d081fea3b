package domain

import "time"

// LogEntry is one duty-status span inside a single day's log, clamped to
// that day's local boundaries.
type LogEntry struct {
	Status DutyStatus `json:"status"`
	Start  time.Time  `json:"start_time"`
	End    time.Time  `json:"end_time"`
}

// DayLog is the ELD grid for one local calendar day. Entries tile the full
// day: sorted by start, no gaps, no overlaps, with implicit off-duty fill.
// Day logs are derived views, recomputed on demand and never persisted.
type DayLog struct {
	Date    string     `json:"date"` // YYYY-MM-DD in the driver's zone
	Entries []LogEntry `json:"entries"`
}
