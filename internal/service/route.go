package service

import (
	"context"
	"log/slog"
	"math"

	"github.com/tripline/eld-backend/internal/domain"
	"github.com/tripline/eld-backend/internal/hos"
	"github.com/tripline/eld-backend/internal/routing"
)

const (
	metersPerMile = 1609.344
	// pickupDropoffBufferHours pads the provider's pure driving time with
	// loading/unloading time at the pickup and dropoff docks.
	pickupDropoffBufferHours = 1.0
)

// RouteProvider is the directions collaborator contract.
// Implemented by routing.Directions; mocked in tests.
type RouteProvider interface {
	FetchRoute(ctx context.Context, waypoints []routing.Waypoint) (routing.Route, error)
}

// buildRouteSummary asks the provider for a route through the trip's three
// waypoints and derives the persisted summary: miles, planned hours with the
// dock buffer, polyline, and advisory stops.
//
// Routing is strictly best-effort: any provider failure is logged and
// degrades to an empty summary. It must never block trip creation or a
// status transition.
func buildRouteSummary(ctx context.Context, provider RouteProvider, current, pickup, dropoff domain.Location) domain.RouteSummary {
	route, err := provider.FetchRoute(ctx, []routing.Waypoint{
		{Lat: current.Lat, Lng: current.Lng},
		{Lat: pickup.Lat, Lng: pickup.Lng},
		{Lat: dropoff.Lat, Lng: dropoff.Lng},
	})
	if err != nil {
		slog.WarnContext(ctx, "unable to build route summary", "error", err)
		return domain.RouteSummary{}
	}

	drivingHours := route.DurationSeconds / 3600
	miles := round2(route.DistanceMeters / metersPerMile)
	planned := round2(drivingHours + pickupDropoffBufferHours)

	return domain.RouteSummary{
		DistanceMiles: &miles,
		DurationHours: &planned,
		Polyline:      &route.Polyline,
		Stops:         hos.PlanStops(drivingHours, miles),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
