package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tripline/eld-backend/internal/domain"
	"github.com/tripline/eld-backend/internal/hos"
	"github.com/tripline/eld-backend/internal/repo"
)

// maxLogRangeDays caps the completed-logs date filter window.
const maxLogRangeDays = 30

// LogService derives ELD day logs from the persisted duty history.
// Logs are always recomputed from the closed events plus the open interval;
// nothing here is stored.
type LogService struct {
	trips  repo.TripRepo
	events repo.EventRepo
	clock  Clock
}

// NewLogService constructs a LogService.
func NewLogService(trips repo.TripRepo, events repo.EventRepo, clock Clock) *LogService {
	return &LogService{trips: trips, events: events, clock: clock}
}

// TripLogs returns the day-partitioned ELD logs for one trip in the given
// zone. The open interval (if any) is included up to completed_at for a
// finished trip, or up to now for a running one.
func (s *LogService) TripLogs(ctx context.Context, driverID, tripID uuid.UUID, loc *time.Location) ([]domain.DayLog, error) {
	trip, err := s.trips.GetByID(ctx, driverID, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.LogService.TripLogs: %w", err)
	}

	events, err := s.events.ListByTrip(ctx, trip.ID)
	if err != nil {
		return nil, fmt.Errorf("service.LogService.TripLogs: %w", err)
	}

	intervals := make([]domain.StatusInterval, 0, len(events))
	for _, e := range events {
		intervals = append(intervals, e.Interval())
	}

	asOf := s.clock.Now()
	if trip.CompletedAt != nil {
		asOf = *trip.CompletedAt
	}
	var open *domain.OpenInterval
	if oi, ok := trip.OpenInterval(); ok {
		open = &oi
	}

	timeline := hos.AssembleTimeline(intervals, open, asOf)
	return hos.BuildDayLogs(timeline, loc), nil
}

// LogPage is one page of the completed-logs listing, newest day first.
type LogPage struct {
	Logs       []domain.DayLog
	HasMore    bool
	NextCursor string
}

// CompletedLogs returns day logs across all of the driver's completed trips,
// newest first, filtered and paged per params. Date strings are YYYY-MM-DD
// and are compared lexicographically, which matches chronological order.
func (s *LogService) CompletedLogs(ctx context.Context, driverID uuid.UUID, params domain.LogPageParams, loc *time.Location) (LogPage, error) {
	if err := validateLogRange(params); err != nil {
		return LogPage{}, err
	}

	events, err := s.events.ListCompletedByDriver(ctx, driverID)
	if err != nil {
		return LogPage{}, fmt.Errorf("service.LogService.CompletedLogs: %w", err)
	}

	intervals := make([]domain.StatusInterval, 0, len(events))
	for _, e := range events {
		intervals = append(intervals, e.Interval())
	}

	logs := hos.BuildDayLogs(hos.AssembleTimeline(intervals, nil, time.Time{}), loc)

	// Newest day first for the listing.
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}

	filtered := make([]domain.DayLog, 0, len(logs))
	for _, log := range logs {
		if params.StartDate != "" && log.Date < params.StartDate {
			continue
		}
		if params.EndDate != "" && log.Date > params.EndDate {
			continue
		}
		if params.Cursor != "" && log.Date >= params.Cursor {
			continue
		}
		filtered = append(filtered, log)
	}

	limit := domain.ClampLimit(params.Limit)
	page := LogPage{Logs: filtered}
	if len(filtered) > limit {
		page.Logs = filtered[:limit]
		page.HasMore = true
		page.NextCursor = page.Logs[len(page.Logs)-1].Date
	}
	return page, nil
}

// validateLogRange checks the optional date window: end must not precede
// start, and the window is capped at maxLogRangeDays.
func validateLogRange(params domain.LogPageParams) error {
	if params.StartDate == "" || params.EndDate == "" {
		return nil
	}
	start, err := time.Parse("2006-01-02", params.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start_date must be in YYYY-MM-DD format", domain.ErrValidation)
	}
	end, err := time.Parse("2006-01-02", params.EndDate)
	if err != nil {
		return fmt.Errorf("%w: end_date must be in YYYY-MM-DD format", domain.ErrValidation)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end_date must be on or after start_date", domain.ErrValidation)
	}
	if end.Sub(start) > maxLogRangeDays*24*time.Hour {
		return fmt.Errorf("%w: date range cannot exceed %d days", domain.ErrValidation, maxLogRangeDays)
	}
	return nil
}
