package handler

import (
	"net/http"
	"strconv"

	"github.com/tripline/eld-backend/internal/domain"
	"github.com/tripline/eld-backend/internal/middleware"
	"github.com/tripline/eld-backend/internal/service"
)

// TripLogs handles GET /api/trips/{tripID}/eld-logs.
// ?tz= names an IANA zone for day partitioning; unknown or absent zones fall
// back to the server default.
func (s *Server) TripLogs(w http.ResponseWriter, r *http.Request) {
	driverID, tripID, ok := s.tripScope(w, r)
	if !ok {
		return
	}

	loc := service.ResolveZone(r.URL.Query().Get("tz"), s.defaultZone)

	logs, err := s.logs.TripLogs(r.Context(), driverID, tripID, loc)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if logs == nil {
		logs = []domain.DayLog{}
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"trip_id": tripID,
		"logs":    logs,
	})
}

// CompletedLogs handles GET /api/eld-logs, the paged listing across all of
// the driver's completed trips.
func (s *Server) CompletedLogs(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized", "driver identity missing")
		return
	}

	q := r.URL.Query()
	params := domain.LogPageParams{
		Cursor:    q.Get("cursor"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, r, "limit must be an integer")
			return
		}
		params.Limit = limit
	}

	loc := service.ResolveZone(q.Get("tz"), s.defaultZone)

	page, err := s.logs.CompletedLogs(r.Context(), driverID, params, loc)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if page.Logs == nil {
		page.Logs = []domain.DayLog{}
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"logs":        page.Logs,
		"has_more":    page.HasMore,
		"next_cursor": page.NextCursor,
	})
}
