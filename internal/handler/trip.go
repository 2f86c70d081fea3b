package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tripline/eld-backend/internal/domain"
	"github.com/tripline/eld-backend/internal/middleware"
	"github.com/tripline/eld-backend/internal/service"
)

// createTripRequest is the POST /api/trips and /api/trips/preview body.
type createTripRequest struct {
	CurrentLocation domain.Location `json:"current_location"`
	PickupLocation  domain.Location `json:"pickup_location"`
	DropoffLocation domain.Location `json:"dropoff_location"`
	CycleUsedHours  float64         `json:"cycle_used_hours"`
	StartStatus     string          `json:"start_status"`
	StartTime       time.Time       `json:"start_time"`
}

func (req createTripRequest) toInput() service.CreateTrip {
	return service.CreateTrip{
		CurrentLocation: req.CurrentLocation,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		CycleUsedHours:  req.CycleUsedHours,
		StartStatus:     domain.DutyStatus(req.StartStatus),
		StartTime:       req.StartTime,
	}
}

// transitionResponse is the body for status-event and completion endpoints.
type transitionResponse struct {
	Event    domain.StatusEvent `json:"event"`
	Trip     domain.Trip        `json:"trip"`
	Warnings []string           `json:"warnings"`
}

func toTransitionResponse(t service.Transition) transitionResponse {
	warnings := t.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return transitionResponse{Event: t.Event, Trip: t.Trip, Warnings: warnings}
}

// CreateTrip handles POST /api/trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized", "driver identity missing")
		return
	}

	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid JSON body")
		return
	}

	created, err := s.trips.Create(r.Context(), driverID, req.toInput())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, created)
}

// PreviewTrip handles POST /api/trips/preview. It builds a route summary for
// the submitted waypoints without creating anything.
func (s *Server) PreviewTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid JSON body")
		return
	}

	summary, err := s.trips.Preview(r.Context(), req.toInput())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, summary)
}

// ActiveTrip handles GET /api/trips/active. The trip field is null when the
// driver has no active trip; that is a normal response, not a 404.
func (s *Server) ActiveTrip(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized", "driver identity missing")
		return
	}

	trip, err := s.trips.Active(r.Context(), driverID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"trip": trip})
}

// GetTrip handles GET /api/trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	driverID, tripID, ok := s.tripScope(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), driverID, tripID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, trip)
}

// TripRoute handles GET /api/trips/{tripID}/route.
func (s *Server) TripRoute(w http.ResponseWriter, r *http.Request) {
	driverID, tripID, ok := s.tripScope(w, r)
	if !ok {
		return
	}

	summary, err := s.trips.Route(r.Context(), driverID, tripID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, summary)
}

// RecordStatusEvent handles POST /api/trips/{tripID}/status-events.
func (s *Server) RecordStatusEvent(w http.ResponseWriter, r *http.Request) {
	driverID, tripID, ok := s.tripScope(w, r)
	if !ok {
		return
	}

	var req struct {
		Status      string    `json:"status"`
		EffectiveAt time.Time `json:"effective_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid JSON body")
		return
	}

	status, err := domain.ParseDutyStatus(req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if req.EffectiveAt.IsZero() {
		badRequest(w, r, "effective_at is required")
		return
	}

	result, err := s.trips.RecordStatus(r.Context(), driverID, tripID, status, req.EffectiveAt)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toTransitionResponse(result))
}

// CompleteTrip handles POST /api/trips/{tripID}/complete.
func (s *Server) CompleteTrip(w http.ResponseWriter, r *http.Request) {
	driverID, tripID, ok := s.tripScope(w, r)
	if !ok {
		return
	}

	var req struct {
		EffectiveAt time.Time `json:"effective_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid JSON body")
		return
	}
	if req.EffectiveAt.IsZero() {
		badRequest(w, r, "effective_at is required")
		return
	}

	result, err := s.trips.Complete(r.Context(), driverID, tripID, req.EffectiveAt)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toTransitionResponse(result))
}

// tripScope extracts the driver ID from the context and the trip ID from the
// path, writing the error response itself when either is unusable.
func (s *Server) tripScope(w http.ResponseWriter, r *http.Request) (driverID, tripID uuid.UUID, ok bool) {
	driverID, ok = middleware.DriverID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized", "driver identity missing")
		return uuid.Nil, uuid.Nil, false
	}

	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		badRequest(w, r, "trip id must be a valid UUID")
		return uuid.Nil, uuid.Nil, false
	}
	return driverID, tripID, true
}
