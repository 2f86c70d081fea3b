package domain

// LogPageParams carries limit/cursor values from the HTTP layer for the
// completed-logs listing. Pagination is cursor-based (exclusive date cursor,
// newest first) rather than offset-based, because day logs are derived data
// with no stable row numbering.
type LogPageParams struct {
	// Limit is the maximum number of day logs to return, 1-100.
	Limit int
	// Cursor, when non-empty, is a YYYY-MM-DD date; only days strictly
	// before it are returned.
	Cursor string
	// StartDate / EndDate, when non-empty, bound the returned days
	// inclusively (YYYY-MM-DD).
	StartDate string
	EndDate   string
}

// ClampLimit normalizes a raw limit value to the allowed range.
// Zero or negative values fall back to the default of 20; the cap of 100
// prevents unbounded responses.
func ClampLimit(raw int) int {
	if raw < 1 {
		return 20
	}
	if raw > 100 {
		return 100
	}
	return raw
}
