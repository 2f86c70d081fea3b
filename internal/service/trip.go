package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tripline/eld-backend/internal/domain"
	"github.com/tripline/eld-backend/internal/hos"
	"github.com/tripline/eld-backend/internal/repo"
)

// TripService implements the trip lifecycle: creation with a best-effort
// route summary, status transitions, and completion. Every transition
// re-runs the HOS evaluator over the full closed history and returns the
// resulting warnings.
type TripService struct {
	trips       repo.TripRepo
	events      repo.EventRepo
	transitions repo.TransitionRepo
	routes      RouteProvider
	clock       Clock
}

// NewTripService constructs a TripService with its collaborators.
func NewTripService(trips repo.TripRepo, events repo.EventRepo, transitions repo.TransitionRepo, routes RouteProvider, clock Clock) *TripService {
	return &TripService{trips: trips, events: events, transitions: transitions, routes: routes, clock: clock}
}

// CreateTrip carries the validated input for a new trip.
type CreateTrip struct {
	CurrentLocation domain.Location
	PickupLocation  domain.Location
	DropoffLocation domain.Location
	CycleUsedHours  float64
	StartStatus     domain.DutyStatus
	StartTime       time.Time
}

// Create validates and persists a new trip for the driver, attaching a
// best-effort route summary. A driver has at most one active trip, and a new
// trip cannot start before the driver's most recent completed trip ended.
func (s *TripService) Create(ctx context.Context, driverID uuid.UUID, input CreateTrip) (domain.Trip, error) {
	if err := validateCreateTrip(input); err != nil {
		return domain.Trip{}, err
	}

	_, err := s.trips.GetActive(ctx, driverID)
	if err == nil {
		return domain.Trip{}, fmt.Errorf("%w: an active trip already exists; complete it before creating a new one", domain.ErrValidation)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	latest, err := s.trips.LatestCompletedAt(ctx, driverID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	if latest != nil && input.StartTime.Before(*latest) {
		return domain.Trip{}, fmt.Errorf("%w: start time must be on or after your most recent completed trip time", domain.ErrValidation)
	}

	status := input.StartStatus
	startedAt := input.StartTime
	trip := domain.Trip{
		DriverID:               driverID,
		CurrentLocation:        input.CurrentLocation,
		PickupLocation:         input.PickupLocation,
		DropoffLocation:        input.DropoffLocation,
		CycleUsedHours:         input.CycleUsedHours,
		CurrentStatus:          &status,
		CurrentStatusStartedAt: &startedAt,
		Route:                  buildRouteSummary(ctx, s.routes, input.CurrentLocation, input.PickupLocation, input.DropoffLocation),
	}

	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// Preview builds a route summary for the given waypoints without touching
// any trip. Used by the trip-planning form before the trip exists.
func (s *TripService) Preview(ctx context.Context, input CreateTrip) (domain.RouteSummary, error) {
	if err := validateCreateTrip(input); err != nil {
		return domain.RouteSummary{}, err
	}
	return buildRouteSummary(ctx, s.routes, input.CurrentLocation, input.PickupLocation, input.DropoffLocation), nil
}

// GetByID returns a single trip scoped to the driver.
func (s *TripService) GetByID(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, driverID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// Active returns the driver's current active trip, or nil when every trip is
// completed. Having no active trip is a normal state, not an error.
func (s *TripService) Active(ctx context.Context, driverID uuid.UUID) (*domain.Trip, error) {
	trip, err := s.trips.GetActive(ctx, driverID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service.TripService.Active: %w", err)
	}
	return &trip, nil
}

// Route returns the trip's stored route summary, retrying the provider once
// when the stored summary is empty (the provider may have been down at
// creation time). A refresh that fails again just returns the empty summary.
func (s *TripService) Route(ctx context.Context, driverID, tripID uuid.UUID) (domain.RouteSummary, error) {
	trip, err := s.trips.GetByID(ctx, driverID, tripID)
	if err != nil {
		return domain.RouteSummary{}, fmt.Errorf("service.TripService.Route: %w", err)
	}

	if !trip.Route.Empty() {
		return trip.Route, nil
	}

	refreshed := buildRouteSummary(ctx, s.routes, trip.CurrentLocation, trip.PickupLocation, trip.DropoffLocation)
	if refreshed.Empty() {
		return trip.Route, nil
	}

	updated, err := s.trips.UpdateRoute(ctx, trip.ID, refreshed)
	if err != nil {
		return domain.RouteSummary{}, fmt.Errorf("service.TripService.Route: %w", err)
	}
	return updated.Route, nil
}

// Transition is the result of a status change or completion: the interval
// that was closed, the trip afterwards, and the HOS warnings recomputed over
// the full closed history.
type Transition struct {
	Event    domain.StatusEvent
	Trip     domain.Trip
	Warnings []string
}

// RecordStatus closes the trip's open interval at effectiveAt and opens a
// new one with the given status. The close-and-open is a single transaction;
// a partial write would corrupt the timeline.
func (s *TripService) RecordStatus(ctx context.Context, driverID, tripID uuid.UUID, status domain.DutyStatus, effectiveAt time.Time) (Transition, error) {
	trip, closed, err := s.closableInterval(ctx, driverID, tripID, effectiveAt)
	if err != nil {
		return Transition{}, err
	}

	event, updated, err := s.transitions.Advance(ctx, trip.ID, closed, domain.OpenInterval{Status: status, Since: effectiveAt})
	if err != nil {
		return Transition{}, fmt.Errorf("service.TripService.RecordStatus: %w", err)
	}

	warnings, err := s.warnings(ctx, updated)
	if err != nil {
		return Transition{}, fmt.Errorf("service.TripService.RecordStatus: %w", err)
	}
	return Transition{Event: event, Trip: updated, Warnings: warnings}, nil
}

// Complete closes the trip's open interval at effectiveAt and moves the trip
// to its terminal state. Completed trips never accept further transitions.
func (s *TripService) Complete(ctx context.Context, driverID, tripID uuid.UUID, effectiveAt time.Time) (Transition, error) {
	trip, closed, err := s.closableInterval(ctx, driverID, tripID, effectiveAt)
	if err != nil {
		return Transition{}, err
	}

	event, updated, err := s.transitions.Complete(ctx, trip.ID, closed, effectiveAt)
	if err != nil {
		return Transition{}, fmt.Errorf("service.TripService.Complete: %w", err)
	}

	warnings, err := s.warnings(ctx, updated)
	if err != nil {
		return Transition{}, fmt.Errorf("service.TripService.Complete: %w", err)
	}
	return Transition{Event: event, Trip: updated, Warnings: warnings}, nil
}

// closableInterval loads the trip and applies the transition guards: the
// trip must be active, must have an open interval, and effectiveAt must be
// strictly after the open interval's start.
func (s *TripService) closableInterval(ctx context.Context, driverID, tripID uuid.UUID, effectiveAt time.Time) (domain.Trip, domain.StatusInterval, error) {
	trip, err := s.trips.GetByID(ctx, driverID, tripID)
	if err != nil {
		return domain.Trip{}, domain.StatusInterval{}, fmt.Errorf("service.TripService: %w", err)
	}

	if trip.Completed() {
		return domain.Trip{}, domain.StatusInterval{}, fmt.Errorf("%w: trip is already completed", domain.ErrValidation)
	}
	open, ok := trip.OpenInterval()
	if !ok {
		return domain.Trip{}, domain.StatusInterval{}, fmt.Errorf("%w: trip has no active status to close", domain.ErrValidation)
	}
	if !effectiveAt.After(open.Since) {
		return domain.Trip{}, domain.StatusInterval{}, fmt.Errorf("%w: effective time must be after the current status start time", domain.ErrValidation)
	}

	return trip, domain.StatusInterval{Status: open.Status, Start: open.Since, End: effectiveAt}, nil
}

// warnings re-runs the HOS evaluator over the trip's full closed history.
func (s *TripService) warnings(ctx context.Context, trip domain.Trip) ([]string, error) {
	events, err := s.events.ListByTrip(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	intervals := make([]domain.StatusInterval, 0, len(events))
	for _, e := range events {
		intervals = append(intervals, e.Interval())
	}
	return hos.Evaluate(intervals, trip.CycleUsedHours), nil
}

// validateCreateTrip enforces the field rules shared by Create and Preview.
func validateCreateTrip(input CreateTrip) error {
	for _, loc := range []struct {
		field string
		loc   domain.Location
	}{
		{"current_location", input.CurrentLocation},
		{"pickup_location", input.PickupLocation},
		{"dropoff_location", input.DropoffLocation},
	} {
		if strings.TrimSpace(loc.loc.Name) == "" {
			return fmt.Errorf("%w: %s name is required", domain.ErrValidation, loc.field)
		}
	}
	if input.CycleUsedHours < 0 || input.CycleUsedHours > 70 {
		return fmt.Errorf("%w: cycle_used_hours must be between 0 and 70", domain.ErrValidation)
	}
	if _, err := domain.ParseDutyStatus(string(input.StartStatus)); err != nil {
		return err
	}
	if input.StartTime.IsZero() {
		return fmt.Errorf("%w: start_time is required", domain.ErrValidation)
	}
	return nil
}
