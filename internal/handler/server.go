// Package handler implements the HTTP handlers for the ELD API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, logs.go, geocode.go) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tripline/eld-backend/internal/domain"
	"github.com/tripline/eld-backend/internal/middleware"
	"github.com/tripline/eld-backend/internal/routing"
	"github.com/tripline/eld-backend/internal/service"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, driverID uuid.UUID, input service.CreateTrip) (domain.Trip, error)
	Preview(ctx context.Context, input service.CreateTrip) (domain.RouteSummary, error)
	GetByID(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error)
	Active(ctx context.Context, driverID uuid.UUID) (*domain.Trip, error)
	Route(ctx context.Context, driverID, tripID uuid.UUID) (domain.RouteSummary, error)
	RecordStatus(ctx context.Context, driverID, tripID uuid.UUID, status domain.DutyStatus, effectiveAt time.Time) (service.Transition, error)
	Complete(ctx context.Context, driverID, tripID uuid.UUID, effectiveAt time.Time) (service.Transition, error)
}

// LogServicer defines the day-log operations the log handlers depend on.
type LogServicer interface {
	TripLogs(ctx context.Context, driverID, tripID uuid.UUID, loc *time.Location) ([]domain.DayLog, error)
	CompletedLogs(ctx context.Context, driverID uuid.UUID, params domain.LogPageParams, loc *time.Location) (service.LogPage, error)
}

// GeocodeServicer defines the location-search operations the geocode
// handlers depend on.
type GeocodeServicer interface {
	Search(ctx context.Context, query string) ([]routing.Place, error)
	Reverse(ctx context.Context, lat, lng float64) (routing.Place, error)
}

// Server implements all API endpoints. Methods are in domain-specific files
// but all operate on this struct.
type Server struct {
	trips   TripServicer
	logs    LogServicer
	geocode GeocodeServicer

	// defaultZone is used for day-log partitioning when the request does
	// not carry a ?tz= parameter.
	defaultZone *time.Location
}

// NewServer constructs the Server with all its dependencies. defaultZone may
// be nil, in which case UTC is used.
func NewServer(trips TripServicer, logs LogServicer, geocode GeocodeServicer, defaultZone *time.Location) *Server {
	if defaultZone == nil {
		defaultZone = time.UTC
	}
	return &Server{trips: trips, logs: logs, geocode: geocode, defaultZone: defaultZone}
}

// Routes registers every /api endpoint on r. Driver identity is required for
// the whole surface; health and the OpenAPI document are mounted outside
// this group by main.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewDriverID())

		r.Get("/geocode/search", s.GeocodeSearch)
		r.Get("/geocode/reverse", s.GeocodeReverse)

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", s.CreateTrip)
			r.Post("/preview", s.PreviewTrip)
			r.Get("/active", s.ActiveTrip)

			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Get("/route", s.TripRoute)
				r.Post("/status-events", s.RecordStatusEvent)
				r.Post("/complete", s.CompleteTrip)
				r.Get("/eld-logs", s.TripLogs)
			})
		})

		r.Get("/eld-logs", s.CompletedLogs)
	})
}
