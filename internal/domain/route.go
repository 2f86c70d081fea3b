package domain

// StopType classifies a suggested roadside stop.
type StopType string

const (
	StopFuel  StopType = "fuel"
	StopBreak StopType = "break"
	StopRest  StopType = "rest"
)

// StopSuggestion is one advisory stop on a planned route. Suggestions are
// display hints only; HOS compliance is judged by the evaluator, never by
// this list.
type StopSuggestion struct {
	Type          StopType `json:"type"`
	ETAHours      float64  `json:"eta_hours"`
	DurationHours float64  `json:"duration_hours"`
	Label         string   `json:"label"`
}

// RouteSummary is the pre-computed route attached to a trip. All fields are
// nil/empty when the routing provider was unavailable at creation time; the
// summary can be refreshed later without blocking any trip operation.
type RouteSummary struct {
	DistanceMiles *float64         `json:"distance_miles,omitempty"`
	DurationHours *float64         `json:"duration_hours,omitempty"`
	Polyline      *string          `json:"polyline,omitempty"`
	Stops         []StopSuggestion `json:"stops,omitempty"`
}

// Empty reports whether the summary carries no usable route.
func (r RouteSummary) Empty() bool {
	return r.DistanceMiles == nil || r.DurationHours == nil || r.Polyline == nil
}
