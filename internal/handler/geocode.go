package handler

import (
	"net/http"
	"strconv"
)

// GeocodeSearch handles GET /api/geocode/search?q=.
// Queries shorter than three characters return an empty result set without
// touching the provider.
func (s *Server) GeocodeSearch(w http.ResponseWriter, r *http.Request) {
	results, err := s.geocode.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"results": results})
}

// GeocodeReverse handles GET /api/geocode/reverse?lat=&lng=.
func (s *Server) GeocodeReverse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		badRequest(w, r, "lat must be a number")
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		badRequest(w, r, "lng must be a number")
		return
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		badRequest(w, r, "coordinates out of range")
		return
	}

	place, err := s.geocode.Reverse(r.Context(), lat, lng)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"result": place})
}
