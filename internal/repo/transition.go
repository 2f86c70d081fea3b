package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tripline/eld-backend/internal/domain"
)

// txStarter is satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx (which
// starts a nested transaction via savepoints, which the integration tests
// rely on for rollback isolation).
type txStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TransitionRepo performs the one write path that must be atomic: closing a
// trip's open duty interval into a status_events row and, in the same
// transaction, either advancing the open interval or marking the trip
// completed. A partial write (event without trip update, or vice versa)
// would corrupt the timeline irrecoverably, so both statements share one
// transaction and the trip update is guarded to only touch active trips.
type TransitionRepo interface {
	// Advance closes the given interval and opens a new one on the trip.
	// Returns the created event and the updated trip.
	Advance(ctx context.Context, tripID uuid.UUID, closed domain.StatusInterval, next domain.OpenInterval) (domain.StatusEvent, domain.Trip, error)

	// Complete closes the given interval and transitions the trip to its
	// terminal state (completed_at set, open-interval pair cleared).
	Complete(ctx context.Context, tripID uuid.UUID, closed domain.StatusInterval, completedAt time.Time) (domain.StatusEvent, domain.Trip, error)
}

// pgTransitionRepo is the Postgres implementation of TransitionRepo.
type pgTransitionRepo struct {
	db txStarter
}

// NewTransitionRepo constructs a TransitionRepo. In production pass
// *pgxpool.Pool; in tests pass a pgx.Tx so the whole transition rolls back
// with the test's enclosing transaction.
func NewTransitionRepo(db txStarter) TransitionRepo {
	return &pgTransitionRepo{db: db}
}

func (r *pgTransitionRepo) Advance(ctx context.Context, tripID uuid.UUID, closed domain.StatusInterval, next domain.OpenInterval) (domain.StatusEvent, domain.Trip, error) {
	const q = `
		UPDATE trips
		SET current_status            = @status,
		    current_status_started_at = @started_at,
		    updated_at                = now()
		WHERE id = @id AND completed_at IS NULL
		RETURNING` + tripColumns

	args := pgx.NamedArgs{
		"id":         tripID,
		"status":     string(next.Status),
		"started_at": next.Since,
	}

	event, trip, err := r.transition(ctx, tripID, closed, q, args)
	if err != nil {
		return domain.StatusEvent{}, domain.Trip{}, fmt.Errorf("repo.TransitionRepo.Advance: %w", err)
	}
	return event, trip, nil
}

func (r *pgTransitionRepo) Complete(ctx context.Context, tripID uuid.UUID, closed domain.StatusInterval, completedAt time.Time) (domain.StatusEvent, domain.Trip, error) {
	const q = `
		UPDATE trips
		SET current_status            = NULL,
		    current_status_started_at = NULL,
		    completed_at              = @completed_at,
		    updated_at                = now()
		WHERE id = @id AND completed_at IS NULL
		RETURNING` + tripColumns

	args := pgx.NamedArgs{
		"id":           tripID,
		"completed_at": completedAt,
	}

	event, trip, err := r.transition(ctx, tripID, closed, q, args)
	if err != nil {
		return domain.StatusEvent{}, domain.Trip{}, fmt.Errorf("repo.TransitionRepo.Complete: %w", err)
	}
	return event, trip, nil
}

// transition runs the shared insert-event-then-update-trip transaction.
// The trip update's "completed_at IS NULL" guard turns a concurrent
// completion into ErrNotFound, rolling back the inserted event with it.
func (r *pgTransitionRepo) transition(ctx context.Context, tripID uuid.UUID, closed domain.StatusInterval, tripQ string, tripArgs pgx.NamedArgs) (domain.StatusEvent, domain.Trip, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.StatusEvent{}, domain.Trip{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertQ = `
		INSERT INTO status_events (trip_id, status, start_time, end_time)
		VALUES (@trip_id, @status, @start_time, @end_time)
		RETURNING ` + eventColumns

	row := tx.QueryRow(ctx, insertQ, pgx.NamedArgs{
		"trip_id":    tripID,
		"status":     string(closed.Status),
		"start_time": closed.Start,
		"end_time":   closed.End,
	})
	event, err := scanEvent(row)
	if err != nil {
		return domain.StatusEvent{}, domain.Trip{}, fmt.Errorf("insert event: %w", err)
	}

	trip, err := scanTrip(tx.QueryRow(ctx, tripQ, tripArgs))
	if err != nil {
		return domain.StatusEvent{}, domain.Trip{}, fmt.Errorf("update trip: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.StatusEvent{}, domain.Trip{}, fmt.Errorf("commit: %w", err)
	}
	return event, trip, nil
}
