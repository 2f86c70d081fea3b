package hos

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/tripline/eld-backend/internal/domain"
)

const (
	fuelStopIntervalMiles = 1000
	fuelStopHours         = 0.5
	breakEveryHours       = 8.0
	breakHours            = 0.5
	restHours             = 10.0
)

// PlanStops derives advisory fuel/break/rest suggestions for a route from
// its total driving duration and distance. Distance of zero (or unknown)
// simply yields no fuel stops.
//
// The suggestions are display hints on the route preview; the HOS evaluator
// alone decides whether the driver's actual timeline is compliant.
func PlanStops(drivingHours, distanceMiles float64) []domain.StopSuggestion {
	if drivingHours <= 0 {
		return nil
	}

	var stops []domain.StopSuggestion

	// One fuel stop per full 1,000-mile marker strictly inside the route,
	// placed proportionally along the driving time.
	if distanceMiles > 0 {
		count := int(distanceMiles / fuelStopIntervalMiles)
		for i := 1; i <= count; i++ {
			marker := float64(i * fuelStopIntervalMiles)
			if marker >= distanceMiles {
				break
			}
			eta := drivingHours * (marker / distanceMiles)
			eta = math.Min(drivingHours, math.Max(0, eta))
			stops = append(stops, domain.StopSuggestion{
				Type:          domain.StopFuel,
				ETAHours:      round2(eta),
				DurationHours: fuelStopHours,
				Label:         fmt.Sprintf("Fuel stop near %s miles", groupThousands(i*fuelStopIntervalMiles)),
			})
		}
	}

	for at := breakEveryHours; at <= drivingHours; at += breakEveryHours {
		stops = append(stops, domain.StopSuggestion{
			Type:          domain.StopBreak,
			ETAHours:      round2(at),
			DurationHours: breakHours,
			Label:         "30-min break",
		})
	}

	// Flat thresholds: the first reset at the 11-hour mark, the next only at
	// the 70-hour cycle boundary.
	if drivingHours >= 11 {
		stops = append(stops, domain.StopSuggestion{
			Type:          domain.StopRest,
			ETAHours:      11.0,
			DurationHours: restHours,
			Label:         "10-hour off-duty reset",
		})
	}
	if drivingHours >= 70 {
		stops = append(stops, domain.StopSuggestion{
			Type:          domain.StopRest,
			ETAHours:      70.0,
			DurationHours: restHours,
			Label:         "10-hour cycle reset (70-hour limit)",
		})
	}

	sort.SliceStable(stops, func(i, j int) bool {
		if stops[i].ETAHours != stops[j].ETAHours {
			return stops[i].ETAHours < stops[j].ETAHours
		}
		return stops[i].Type < stops[j].Type
	})
	return stops
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// groupThousands renders 12500 as "12,500" for stop labels.
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
