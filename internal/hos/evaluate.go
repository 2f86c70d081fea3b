package hos

import (
	"time"

	"github.com/tripline/eld-backend/internal/domain"
)

// HOS limits under the US property-carrying driver rules.
const (
	resetRest     = 10 * time.Hour    // off-duty/sleeper span that resets the shift
	breakRest     = 30 * time.Minute  // off-duty/sleeper span that satisfies the driving break
	drivingLimit  = 11 * time.Hour    // max driving per shift
	onDutyLimit   = 14 * time.Hour    // max on-duty window per shift
	breakDeadline = 8 * time.Hour     // driving allowed before a 30-minute break
	cycleLimit    = 70.0              // hours in the 70-hour / 8-day cycle
)

// Warning texts are fixed strings rendered directly to drivers.
const (
	warnDrivingLimit = "Driving time exceeds 11-hour limit since last 10-hour rest."
	warnOnDutyLimit  = "On-duty window exceeds 14-hour limit since last 10-hour rest."
	warnBreakNeeded  = "30-minute break required after 8 cumulative driving hours."
	warnCycleLimit   = "Planned work exceeds 70-hour / 8-day cycle limit."
)

// Evaluate walks a chronologically sorted interval sequence and returns the
// HOS warnings it violates, in fixed rule order. cycleUsedHours is the
// on-duty time already consumed in the current 8-day cycle before the trip.
//
// The evaluator is stateless: it is re-run from scratch over the full closed
// history after every status change or completion, so its accumulators never
// outlive one call.
func Evaluate(intervals []domain.StatusInterval, cycleUsedHours float64) []string {
	var (
		drivingSinceBreak time.Duration
		drivingSinceReset time.Duration
		onDutySinceReset  time.Duration
	)

	for _, iv := range intervals {
		d := iv.Duration()

		// A qualifying rest period wipes the whole shift; nothing else
		// about this interval matters.
		if iv.Status.Rest() && d >= resetRest {
			drivingSinceBreak = 0
			drivingSinceReset = 0
			onDutySinceReset = 0
			continue
		}

		if iv.Status.Rest() && d >= breakRest {
			drivingSinceBreak = 0
		}

		if iv.Status == domain.StatusDriving {
			drivingSinceReset += d
			drivingSinceBreak += d
		}

		if iv.Status == domain.StatusDriving || iv.Status == domain.StatusOnDuty {
			onDutySinceReset += d
		}
	}

	var warnings []string
	if drivingSinceReset > drivingLimit {
		warnings = append(warnings, warnDrivingLimit)
	}
	if onDutySinceReset > onDutyLimit {
		warnings = append(warnings, warnOnDutyLimit)
	}
	if drivingSinceBreak > breakDeadline {
		warnings = append(warnings, warnBreakNeeded)
	}
	if cycleUsedHours+onDutySinceReset.Hours() > cycleLimit {
		warnings = append(warnings, warnCycleLimit)
	}
	return warnings
}
