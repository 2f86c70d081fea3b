package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tripline/eld-backend/internal/domain"
)

const eventColumns = `id, trip_id, status, start_time, end_time, created_at`

// EventRepo defines read access to the append-only closed duty history.
// Writes happen only through TransitionRepo, atomically with the trip update.
type EventRepo interface {
	// ListByTrip returns a trip's closed intervals ordered by start_time.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.StatusEvent, error)

	// ListCompletedByDriver returns every closed interval belonging to the
	// driver's completed trips, across all trips, ordered by start_time.
	ListCompletedByDriver(ctx context.Context, driverID uuid.UUID) ([]domain.StatusEvent, error)
}

// pgEventRepo is the Postgres implementation of EventRepo.
type pgEventRepo struct {
	db db
}

// NewEventRepo constructs an EventRepo backed by the provided db connection.
func NewEventRepo(db db) EventRepo {
	return &pgEventRepo{db: db}
}

func (r *pgEventRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.StatusEvent, error) {
	const q = `
		SELECT ` + eventColumns + `
		FROM status_events
		WHERE trip_id = @trip_id
		ORDER BY start_time`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.ListByTrip: %w", err)
	}
	return events, nil
}

func (r *pgEventRepo) ListCompletedByDriver(ctx context.Context, driverID uuid.UUID) ([]domain.StatusEvent, error) {
	const q = `
		SELECT e.id, e.trip_id, e.status, e.start_time, e.end_time, e.created_at
		FROM status_events e
		JOIN trips t ON t.id = e.trip_id
		WHERE t.driver_id = @driver_id AND t.completed_at IS NOT NULL
		ORDER BY e.start_time`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"driver_id": driverID})
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.ListCompletedByDriver: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.ListCompletedByDriver: %w", err)
	}
	return events, nil
}

func collectEvents(rows pgx.Rows) ([]domain.StatusEvent, error) {
	var events []domain.StatusEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return events, nil
}

// scanEvent maps a single database row into a domain.StatusEvent.
func scanEvent(s scanner) (domain.StatusEvent, error) {
	var (
		e      domain.StatusEvent
		id     pgtype.UUID
		tripID pgtype.UUID
		status string
	)

	err := s.Scan(&id, &tripID, &status, &e.StartTime, &e.EndTime, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StatusEvent{}, domain.ErrNotFound
		}
		return domain.StatusEvent{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.TripID = uuid.UUID(tripID.Bytes)
	e.Status = domain.DutyStatus(status)
	return e, nil
}
