// Package repo contains all database access logic for the ELD backend.
// Each resource has its own file with an interface and a Postgres
// implementation. No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tripline/eld-backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const tripColumns = `
	id, driver_id,
	current_location_name, current_location_lat, current_location_lng,
	pickup_location_name, pickup_location_lat, pickup_location_lng,
	dropoff_location_name, dropoff_location_lat, dropoff_location_lng,
	cycle_used_hours,
	current_status, current_status_started_at, completed_at,
	route_distance_miles, route_duration_hours, route_polyline, route_stops,
	created_at, updated_at`

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id and timestamps populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a trip scoped to its owning driver.
	// Returns domain.ErrNotFound when the trip does not exist or belongs to
	// a different driver; the two cases are indistinguishable to callers.
	GetByID(ctx context.Context, driverID, id uuid.UUID) (domain.Trip, error)

	// GetActive returns the driver's most recently created non-completed
	// trip. Returns domain.ErrNotFound when the driver has no active trip.
	GetActive(ctx context.Context, driverID uuid.UUID) (domain.Trip, error)

	// LatestCompletedAt returns the completion time of the driver's most
	// recently completed trip, or nil when none exists.
	LatestCompletedAt(ctx context.Context, driverID uuid.UUID) (*time.Time, error)

	// UpdateRoute overwrites the stored route summary and returns the
	// updated trip. Returns domain.ErrNotFound when the trip is missing.
	UpdateRoute(ctx context.Context, id uuid.UUID, route domain.RouteSummary) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (
			driver_id,
			current_location_name, current_location_lat, current_location_lng,
			pickup_location_name, pickup_location_lat, pickup_location_lng,
			dropoff_location_name, dropoff_location_lat, dropoff_location_lng,
			cycle_used_hours,
			current_status, current_status_started_at,
			route_distance_miles, route_duration_hours, route_polyline, route_stops
		)
		VALUES (
			@driver_id,
			@cur_name, @cur_lat, @cur_lng,
			@pickup_name, @pickup_lat, @pickup_lng,
			@dropoff_name, @dropoff_lat, @dropoff_lng,
			@cycle_used_hours,
			@current_status, @current_status_started_at,
			@route_distance_miles, @route_duration_hours, @route_polyline, @route_stops
		)
		RETURNING` + tripColumns

	stopsJSON, err := marshalStops(trip.Route.Stops)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}

	args := pgx.NamedArgs{
		"driver_id":                 trip.DriverID,
		"cur_name":                  trip.CurrentLocation.Name,
		"cur_lat":                   trip.CurrentLocation.Lat,
		"cur_lng":                   trip.CurrentLocation.Lng,
		"pickup_name":               trip.PickupLocation.Name,
		"pickup_lat":                trip.PickupLocation.Lat,
		"pickup_lng":                trip.PickupLocation.Lng,
		"dropoff_name":              trip.DropoffLocation.Name,
		"dropoff_lat":               trip.DropoffLocation.Lat,
		"dropoff_lng":               trip.DropoffLocation.Lng,
		"cycle_used_hours":          trip.CycleUsedHours,
		"current_status":            trip.CurrentStatus, // nil becomes NULL
		"current_status_started_at": trip.CurrentStatusStartedAt,
		"route_distance_miles":      trip.Route.DistanceMiles,
		"route_duration_hours":      trip.Route.DurationHours,
		"route_polyline":            trip.Route.Polyline,
		"route_stops":               stopsJSON,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, driverID, id uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT` + tripColumns + `
		FROM trips
		WHERE id = @id AND driver_id = @driver_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "driver_id": driverID})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetActive(ctx context.Context, driverID uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT` + tripColumns + `
		FROM trips
		WHERE driver_id = @driver_id AND completed_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"driver_id": driverID})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetActive: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) LatestCompletedAt(ctx context.Context, driverID uuid.UUID) (*time.Time, error) {
	const q = `
		SELECT completed_at
		FROM trips
		WHERE driver_id = @driver_id AND completed_at IS NOT NULL
		ORDER BY completed_at DESC
		LIMIT 1`

	var completedAt time.Time
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"driver_id": driverID}).Scan(&completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repo.TripRepo.LatestCompletedAt: %w", err)
	}
	return &completedAt, nil
}

func (r *pgTripRepo) UpdateRoute(ctx context.Context, id uuid.UUID, route domain.RouteSummary) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET route_distance_miles = @distance,
		    route_duration_hours = @duration,
		    route_polyline       = @polyline,
		    route_stops          = @stops,
		    updated_at           = now()
		WHERE id = @id
		RETURNING` + tripColumns

	stopsJSON, err := marshalStops(route.Stops)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateRoute: %w", err)
	}

	args := pgx.NamedArgs{
		"id":       id,
		"distance": route.DistanceMiles,
		"duration": route.DurationHours,
		"polyline": route.Polyline,
		"stops":    stopsJSON,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateRoute: %w", err)
	}
	return result, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID, nullable open-interval pair, and jsonb conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		driverID  pgtype.UUID
		status    pgtype.Text
		startedAt pgtype.Timestamptz
		completed pgtype.Timestamptz
		distance  pgtype.Float8
		duration  pgtype.Float8
		polyline  pgtype.Text
		stopsRaw  []byte
	)

	err := s.Scan(
		&id, &driverID,
		&t.CurrentLocation.Name, &t.CurrentLocation.Lat, &t.CurrentLocation.Lng,
		&t.PickupLocation.Name, &t.PickupLocation.Lat, &t.PickupLocation.Lng,
		&t.DropoffLocation.Name, &t.DropoffLocation.Lat, &t.DropoffLocation.Lng,
		&t.CycleUsedHours,
		&status, &startedAt, &completed,
		&distance, &duration, &polyline, &stopsRaw,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.DriverID = uuid.UUID(driverID.Bytes)
	if status.Valid {
		st := domain.DutyStatus(status.String)
		t.CurrentStatus = &st
	}
	if startedAt.Valid {
		at := startedAt.Time
		t.CurrentStatusStartedAt = &at
	}
	if completed.Valid {
		at := completed.Time
		t.CompletedAt = &at
	}
	if distance.Valid {
		v := distance.Float64
		t.Route.DistanceMiles = &v
	}
	if duration.Valid {
		v := duration.Float64
		t.Route.DurationHours = &v
	}
	if polyline.Valid {
		v := polyline.String
		t.Route.Polyline = &v
	}
	if len(stopsRaw) > 0 {
		if err := json.Unmarshal(stopsRaw, &t.Route.Stops); err != nil {
			return domain.Trip{}, fmt.Errorf("decode route_stops: %w", err)
		}
	}

	return t, nil
}

// marshalStops encodes the stop list for the jsonb column.
// A nil slice stays NULL so an absent route leaves the column empty.
func marshalStops(stops []domain.StopSuggestion) ([]byte, error) {
	if stops == nil {
		return nil, nil
	}
	b, err := json.Marshal(stops)
	if err != nil {
		return nil, fmt.Errorf("encode route_stops: %w", err)
	}
	return b, nil
}
