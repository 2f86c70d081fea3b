// Package routing contains the HTTP adapters for the external map providers:
// OpenRouteService for directions and Nominatim for geocoding. Both are
// best-effort collaborators: every failure surfaces as domain.ErrUnavailable
// and callers decide whether that degrades or rejects the request.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tripline/eld-backend/internal/cache"
	"github.com/tripline/eld-backend/internal/domain"
)

// Waypoint is a single (lat, lng) route point.
type Waypoint struct {
	Lat float64
	Lng float64
}

// Route is the raw answer from the directions provider.
type Route struct {
	DistanceMeters  float64
	DurationSeconds float64
	// Polyline is the route geometry as a JSON-encoded [[lat,lng],...] array,
	// stored verbatim and passed through to map clients.
	Polyline string
}

// Directions calls the OpenRouteService directions endpoint.
type Directions struct {
	client    *http.Client
	url       string
	apiKey    string
	userAgent string
	// snapRadius lets waypoints that are slightly off-road (map picks often
	// land on parcels) snap to the nearest routable edge, in meters.
	snapRadius int
	cache      *cache.TTL
}

// NewDirections constructs a Directions adapter. cache may be nil.
func NewDirections(url, apiKey, userAgent string, snapRadius int, c *cache.TTL) *Directions {
	return &Directions{
		client:     &http.Client{Timeout: 10 * time.Second},
		url:        url,
		apiKey:     apiKey,
		userAgent:  userAgent,
		snapRadius: snapRadius,
		cache:      c,
	}
}

// orsFeatureCollection is the subset of the ORS GeoJSON response we read.
type orsFeatureCollection struct {
	Features []struct {
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lng, lat] pairs
		} `json:"geometry"`
	} `json:"features"`
}

// FetchRoute requests a driving route through the given waypoints.
// Any transport error, non-2xx status, or response without usable geometry
// returns domain.ErrUnavailable.
func (d *Directions) FetchRoute(ctx context.Context, waypoints []Waypoint) (Route, error) {
	if d.apiKey == "" {
		return Route{}, fmt.Errorf("%w: directions API key not configured", domain.ErrUnavailable)
	}

	// ORS expects [lng, lat] ordering.
	coords := make([][]float64, len(waypoints))
	radiuses := make([]int, len(waypoints))
	for i, wp := range waypoints {
		coords[i] = []float64{wp.Lng, wp.Lat}
		radiuses[i] = d.snapRadius
	}

	payload, err := json.Marshal(map[string]any{
		"coordinates": coords,
		"radiuses":    radiuses,
	})
	if err != nil {
		return Route{}, fmt.Errorf("routing.Directions.FetchRoute: encode request: %w", err)
	}

	body, err := d.post(ctx, payload)
	if err != nil {
		return Route{}, fmt.Errorf("routing.Directions.FetchRoute: %w", err)
	}

	route, err := parseRoute(body)
	if err != nil {
		return Route{}, fmt.Errorf("routing.Directions.FetchRoute: %w", err)
	}
	return route, nil
}

// post sends the directions request, consulting the response cache first.
func (d *Directions) post(ctx context.Context, payload []byte) ([]byte, error) {
	key := cache.Key("route", payload)
	if cached, ok := d.cache.Get(ctx, key); ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", d.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, application/geo+json")
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: directions request failed with HTTP %d", domain.ErrUnavailable, resp.StatusCode)
	}

	d.cache.Set(ctx, key, body)
	return body, nil
}

// parseRoute extracts distance, duration, and a [[lat,lng],...] polyline from
// the ORS GeoJSON body. Malformed coordinate pairs are skipped; a response
// with no usable pairs at all counts as unavailable.
func parseRoute(body []byte) (Route, error) {
	var fc orsFeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return Route{}, fmt.Errorf("%w: decode response: %v", domain.ErrUnavailable, err)
	}
	if len(fc.Features) == 0 {
		return Route{}, fmt.Errorf("%w: no route in response", domain.ErrUnavailable)
	}

	feature := fc.Features[0]
	polyline := make([][2]float64, 0, len(feature.Geometry.Coordinates))
	for _, pt := range feature.Geometry.Coordinates {
		if len(pt) < 2 {
			continue
		}
		polyline = append(polyline, [2]float64{pt[1], pt[0]})
	}
	if len(polyline) == 0 {
		return Route{}, fmt.Errorf("%w: route has no geometry", domain.ErrUnavailable)
	}

	encoded, err := json.Marshal(polyline)
	if err != nil {
		return Route{}, fmt.Errorf("encode polyline: %w", err)
	}

	return Route{
		DistanceMeters:  feature.Properties.Summary.Distance,
		DurationSeconds: feature.Properties.Summary.Duration,
		Polyline:        string(encoded),
	}, nil
}
