package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripline/eld-backend/internal/domain"
	"github.com/tripline/eld-backend/internal/handler"
	"github.com/tripline/eld-backend/internal/middleware"
	"github.com/tripline/eld-backend/internal/routing"
	"github.com/tripline/eld-backend/internal/service"
)

// ---- mocks -----------------------------------------------------------------

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create       func(ctx context.Context, driverID uuid.UUID, input service.CreateTrip) (domain.Trip, error)
	preview      func(ctx context.Context, input service.CreateTrip) (domain.RouteSummary, error)
	getByID      func(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error)
	active       func(ctx context.Context, driverID uuid.UUID) (*domain.Trip, error)
	route        func(ctx context.Context, driverID, tripID uuid.UUID) (domain.RouteSummary, error)
	recordStatus func(ctx context.Context, driverID, tripID uuid.UUID, status domain.DutyStatus, effectiveAt time.Time) (service.Transition, error)
	complete     func(ctx context.Context, driverID, tripID uuid.UUID, effectiveAt time.Time) (service.Transition, error)
}

func (m *mockTripServicer) Create(ctx context.Context, driverID uuid.UUID, input service.CreateTrip) (domain.Trip, error) {
	return m.create(ctx, driverID, input)
}
func (m *mockTripServicer) Preview(ctx context.Context, input service.CreateTrip) (domain.RouteSummary, error) {
	return m.preview(ctx, input)
}
func (m *mockTripServicer) GetByID(ctx context.Context, driverID, tripID uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, driverID, tripID)
}
func (m *mockTripServicer) Active(ctx context.Context, driverID uuid.UUID) (*domain.Trip, error) {
	return m.active(ctx, driverID)
}
func (m *mockTripServicer) Route(ctx context.Context, driverID, tripID uuid.UUID) (domain.RouteSummary, error) {
	return m.route(ctx, driverID, tripID)
}
func (m *mockTripServicer) RecordStatus(ctx context.Context, driverID, tripID uuid.UUID, status domain.DutyStatus, effectiveAt time.Time) (service.Transition, error) {
	return m.recordStatus(ctx, driverID, tripID, status, effectiveAt)
}
func (m *mockTripServicer) Complete(ctx context.Context, driverID, tripID uuid.UUID, effectiveAt time.Time) (service.Transition, error) {
	return m.complete(ctx, driverID, tripID, effectiveAt)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockLogServicer struct {
	tripLogs      func(ctx context.Context, driverID, tripID uuid.UUID, loc *time.Location) ([]domain.DayLog, error)
	completedLogs func(ctx context.Context, driverID uuid.UUID, params domain.LogPageParams, loc *time.Location) (service.LogPage, error)
}

func (m *mockLogServicer) TripLogs(ctx context.Context, driverID, tripID uuid.UUID, loc *time.Location) ([]domain.DayLog, error) {
	return m.tripLogs(ctx, driverID, tripID, loc)
}
func (m *mockLogServicer) CompletedLogs(ctx context.Context, driverID uuid.UUID, params domain.LogPageParams, loc *time.Location) (service.LogPage, error) {
	return m.completedLogs(ctx, driverID, params, loc)
}

var _ handler.LogServicer = (*mockLogServicer)(nil)

type mockGeocodeServicer struct {
	search  func(ctx context.Context, query string) ([]routing.Place, error)
	reverse func(ctx context.Context, lat, lng float64) (routing.Place, error)
}

func (m *mockGeocodeServicer) Search(ctx context.Context, query string) ([]routing.Place, error) {
	return m.search(ctx, query)
}
func (m *mockGeocodeServicer) Reverse(ctx context.Context, lat, lng float64) (routing.Place, error) {
	return m.reverse(ctx, lat, lng)
}

var _ handler.GeocodeServicer = (*mockGeocodeServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into a chi router the
// same way main.go does in production, driver-ID middleware included.
func newHTTPHandler(trips handler.TripServicer, logs handler.LogServicer, geocode handler.GeocodeServicer) http.Handler {
	srv := handler.NewServer(trips, logs, geocode, time.UTC)
	r := chi.NewRouter()
	r.Get("/healthz", srv.GetHealth)
	srv.Routes(r)
	return r
}

// authedRequest builds a request carrying the driver identity header.
func authedRequest(method, target string, body io.Reader, driverID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(middleware.DriverIDHeader, driverID.String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func tripFixture(driverID uuid.UUID) domain.Trip {
	status := domain.StatusOffDuty
	started := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	return domain.Trip{
		ID:              uuid.New(),
		DriverID:        driverID,
		CurrentLocation: domain.Location{Name: "Chicago, IL", Lat: 41.88, Lng: -87.63},
		PickupLocation:  domain.Location{Name: "Des Moines, IA", Lat: 41.59, Lng: -93.62},
		DropoffLocation: domain.Location{Name: "Denver, CO", Lat: 39.74, Lng: -104.99},
		CycleUsedHours:  10,
		CurrentStatus:   &status, CurrentStatusStartedAt: &started,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func createTripBody(t *testing.T) *bytes.Buffer {
	return jsonBody(t, map[string]any{
		"current_location": map[string]any{"name": "Chicago, IL", "lat": 41.88, "lng": -87.63},
		"pickup_location":  map[string]any{"name": "Des Moines, IA", "lat": 41.59, "lng": -93.62},
		"dropoff_location": map[string]any{"name": "Denver, CO", "lat": 39.74, "lng": -104.99},
		"cycle_used_hours": 10,
		"start_status":     "off_duty",
		"start_time":       "2025-06-01T08:00:00Z",
	})
}

// ---- POST /api/trips -------------------------------------------------------

func TestCreateTrip_201(t *testing.T) {
	driverID := uuid.New()
	fixture := tripFixture(driverID)
	trips := &mockTripServicer{
		create: func(_ context.Context, gotDriver uuid.UUID, input service.CreateTrip) (domain.Trip, error) {
			assert.Equal(t, driverID, gotDriver)
			assert.Equal(t, domain.StatusOffDuty, input.StartStatus)
			assert.Equal(t, "Denver, CO", input.DropoffLocation.Name)
			return fixture, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(trips, nil, nil).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/trips", createTripBody(t), driverID))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp domain.Trip
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
	require.NotNil(t, resp.CurrentStatus)
	assert.Equal(t, domain.StatusOffDuty, *resp.CurrentStatus)
}

func TestCreateTrip_422_ActiveTripExists(t *testing.T) {
	trips := &mockTripServicer{
		create: func(_ context.Context, _ uuid.UUID, _ service.CreateTrip) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("%w: an active trip already exists; complete it before creating a new one", domain.ErrValidation)
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(trips, nil, nil).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/trips", createTripBody(t), uuid.New()))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "validation_error", resp.Error.Code)
	assert.Equal(t, "an active trip already exists; complete it before creating a new one", resp.Error.Message)
}

func TestCreateTrip_400_MalformedBody(t *testing.T) {
	rec := httptest.NewRecorder()
	newHTTPHandler(&mockTripServicer{}, nil, nil).ServeHTTP(rec,
		authedRequest(http.MethodPost, "/api/trips", bytes.NewBufferString("{not json"), uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTrip_401_NoDriverHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trips", createTripBody(t))
	newHTTPHandler(&mockTripServicer{}, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ---- GET /api/trips/active -------------------------------------------------

func TestActiveTrip_200(t *testing.T) {
	driverID := uuid.New()
	fixture := tripFixture(driverID)
	trips := &mockTripServicer{
		active: func(_ context.Context, _ uuid.UUID) (*domain.Trip, error) {
			return &fixture, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(trips, nil, nil).ServeHTTP(rec, authedRequest(http.MethodGet, "/api/trips/active", nil, driverID))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Trip *domain.Trip `json:"trip"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Trip)
	assert.Equal(t, fixture.ID, resp.Trip.ID)
}

func TestActiveTrip_200_NullWhenNone(t *testing.T) {
	trips := &mockTripServicer{
		active: func(_ context.Context, _ uuid.UUID) (*domain.Trip, error) {
			return nil, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(trips, nil, nil).ServeHTTP(rec, authedRequest(http.MethodGet, "/api/trips/active", nil, uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"trip":null}`, rec.Body.String())
}

// ---- GET /api/trips/{id} ---------------------------------------------------

func TestGetTrip_404(t *testing.T) {
	trips := &mockTripServicer{
		getByID: func(_ context.Context, _, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", domain.ErrNotFound)
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(trips, nil, nil).ServeHTTP(rec,
		authedRequest(http.MethodGet, "/api/trips/"+uuid.NewString(), nil, uuid.New()))

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "not_found", resp.Error.Code)
}

func TestGetTrip_400_BadUUID(t *testing.T) {
	rec := httptest.NewRecorder()
	newHTTPHandler(&mockTripServicer{}, nil, nil).ServeHTTP(rec,
		authedRequest(http.MethodGet, "/api/trips/not-a-uuid", nil, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- POST /api/trips/{id}/status-events ------------------------------------

func TestRecordStatusEvent_201_WithWarnings(t *testing.T) {
	driverID := uuid.New()
	fixture := tripFixture(driverID)
	effectiveAt := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

	trips := &mockTripServicer{
		recordStatus: func(_ context.Context, _, tripID uuid.UUID, status domain.DutyStatus, gotAt time.Time) (service.Transition, error) {
			assert.Equal(t, fixture.ID, tripID)
			assert.Equal(t, domain.StatusOffDuty, status)
			assert.True(t, gotAt.Equal(effectiveAt))
			return service.Transition{
				Event:    domain.StatusEvent{ID: uuid.New(), TripID: tripID, Status: domain.StatusDriving},
				Trip:     fixture,
				Warnings: []string{"Driving time exceeds 11-hour limit since last 10-hour rest."},
			}, nil
		},
	}

	body := jsonBody(t, map[string]any{"status": "off_duty", "effective_at": effectiveAt.Format(time.RFC3339)})
	rec := httptest.NewRecorder()
	newHTTPHandler(trips, nil, nil).ServeHTTP(rec,
		authedRequest(http.MethodPost, "/api/trips/"+fixture.ID.String()+"/status-events", body, driverID))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Event    domain.StatusEvent `json:"event"`
		Warnings []string           `json:"warnings"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, domain.StatusDriving, resp.Event.Status)
	assert.Len(t, resp.Warnings, 1)
}

func TestRecordStatusEvent_422_UnknownStatus(t *testing.T) {
	body := jsonBody(t, map[string]any{"status": "parked", "effective_at": "2025-06-01T20:00:00Z"})
	rec := httptest.NewRecorder()
	newHTTPHandler(&mockTripServicer{}, nil, nil).ServeHTTP(rec,
		authedRequest(http.MethodPost, "/api/trips/"+uuid.NewString()+"/status-events", body, uuid.New()))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRecordStatusEvent_400_MissingEffectiveAt(t *testing.T) {
	body := jsonBody(t, map[string]any{"status": "driving"})
	rec := httptest.NewRecorder()
	newHTTPHandler(&mockTripServicer{}, nil, nil).ServeHTTP(rec,
		authedRequest(http.MethodPost, "/api/trips/"+uuid.NewString()+"/status-events", body, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordStatusEvent_422_CompletedTrip(t *testing.T) {
	trips := &mockTripServicer{
		recordStatus: func(_ context.Context, _, _ uuid.UUID, _ domain.DutyStatus, _ time.Time) (service.Transition, error) {
			return service.Transition{}, fmt.Errorf("%w: trip is already completed", domain.ErrValidation)
		},
	}

	body := jsonBody(t, map[string]any{"status": "driving", "effective_at": "2025-06-01T20:00:00Z"})
	rec := httptest.NewRecorder()
	newHTTPHandler(trips, nil, nil).ServeHTTP(rec,
		authedRequest(http.MethodPost, "/api/trips/"+uuid.NewString()+"/status-events", body, uuid.New()))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "trip is already completed", resp.Error.Message)
}

// ---- POST /api/trips/{id}/complete -----------------------------------------

func TestCompleteTrip_200(t *testing.T) {
	driverID := uuid.New()
	fixture := tripFixture(driverID)
	completedAt := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	fixture.CurrentStatus = nil
	fixture.CurrentStatusStartedAt = nil
	fixture.CompletedAt = &completedAt

	trips := &mockTripServicer{
		complete: func(_ context.Context, _, tripID uuid.UUID, _ time.Time) (service.Transition, error) {
			return service.Transition{
				Event: domain.StatusEvent{ID: uuid.New(), TripID: tripID},
				Trip:  fixture,
			}, nil
		},
	}

	body := jsonBody(t, map[string]any{"effective_at": completedAt.Format(time.RFC3339)})
	rec := httptest.NewRecorder()
	newHTTPHandler(trips, nil, nil).ServeHTTP(rec,
		authedRequest(http.MethodPost, "/api/trips/"+fixture.ID.String()+"/complete", body, driverID))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Trip     domain.Trip `json:"trip"`
		Warnings []string    `json:"warnings"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Trip.CompletedAt)
	assert.NotNil(t, resp.Warnings, "warnings must serialize as [] not null")
}

// ---- GET /api/trips/{id}/route ---------------------------------------------

func TestTripRoute_200(t *testing.T) {
	miles := 500.0
	hours := 11.0
	polyline := `[[41.88,-87.63],[39.74,-104.99]]`
	trips := &mockTripServicer{
		route: func(_ context.Context, _, _ uuid.UUID) (domain.RouteSummary, error) {
			return domain.RouteSummary{
				DistanceMiles: &miles,
				DurationHours: &hours,
				Polyline:      &polyline,
				Stops: []domain.StopSuggestion{
					{Type: domain.StopBreak, ETAHours: 8, DurationHours: 0.5, Label: "30-min break"},
				},
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(trips, nil, nil).ServeHTTP(rec,
		authedRequest(http.MethodGet, "/api/trips/"+uuid.NewString()+"/route", nil, uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.RouteSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.DistanceMiles)
	assert.Equal(t, 500.0, *resp.DistanceMiles)
	require.Len(t, resp.Stops, 1)
	assert.Equal(t, domain.StopBreak, resp.Stops[0].Type)
}

// ---- POST /api/trips/preview -----------------------------------------------

func TestPreviewTrip_200(t *testing.T) {
	miles := 500.0
	hours := 11.0
	polyline := `[]`
	trips := &mockTripServicer{
		preview: func(_ context.Context, input service.CreateTrip) (domain.RouteSummary, error) {
			assert.Equal(t, "Chicago, IL", input.CurrentLocation.Name)
			return domain.RouteSummary{DistanceMiles: &miles, DurationHours: &hours, Polyline: &polyline}, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(trips, nil, nil).ServeHTTP(rec,
		authedRequest(http.MethodPost, "/api/trips/preview", createTripBody(t), uuid.New()))

	assert.Equal(t, http.StatusOK, rec.Code)
}
