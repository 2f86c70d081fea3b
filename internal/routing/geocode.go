package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tripline/eld-backend/internal/cache"
	"github.com/tripline/eld-backend/internal/domain"
)

// Place is one geocoding answer.
type Place struct {
	AddressName string  `json:"addressName"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// Geocoder calls a Nominatim-compatible geocoding service.
type Geocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
	cache     *cache.TTL
}

// NewGeocoder constructs a Geocoder for the given Nominatim base URL
// (e.g. "https://nominatim.openstreetmap.org"). cache may be nil.
func NewGeocoder(baseURL, userAgent string, c *cache.TTL) *Geocoder {
	return &Geocoder{
		client:    &http.Client{Timeout: 10 * time.Second},
		baseURL:   baseURL,
		userAgent: userAgent,
		cache:     c,
	}
}

// nominatimPlace is the subset of a Nominatim result we read.
// Lat/lon arrive as strings.
type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search resolves a free-text query to up to five candidate places.
// Items with unparsable coordinates are skipped rather than failing the call.
func (g *Geocoder) Search(ctx context.Context, query string) ([]Place, error) {
	params := url.Values{
		"format": {"json"},
		"q":      {query},
		"limit":  {"5"},
	}

	body, err := g.get(ctx, "search", params)
	if err != nil {
		return nil, fmt.Errorf("routing.Geocoder.Search: %w", err)
	}

	var items []nominatimPlace
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("routing.Geocoder.Search: %w: decode response: %v", domain.ErrUnavailable, err)
	}

	results := make([]Place, 0, len(items))
	for _, item := range items {
		lat, latErr := strconv.ParseFloat(item.Lat, 64)
		lng, lngErr := strconv.ParseFloat(item.Lon, 64)
		if latErr != nil || lngErr != nil {
			continue
		}
		name := item.DisplayName
		if name == "" {
			name = "Selected location"
		}
		results = append(results, Place{AddressName: name, Lat: lat, Lng: lng})
	}
	return results, nil
}

// Reverse resolves coordinates to the nearest address.
func (g *Geocoder) Reverse(ctx context.Context, lat, lng float64) (Place, error) {
	params := url.Values{
		"format": {"json"},
		"lat":    {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(lng, 'f', -1, 64)},
	}

	body, err := g.get(ctx, "reverse", params)
	if err != nil {
		return Place{}, fmt.Errorf("routing.Geocoder.Reverse: %w", err)
	}

	var item nominatimPlace
	if err := json.Unmarshal(body, &item); err != nil {
		return Place{}, fmt.Errorf("routing.Geocoder.Reverse: %w: decode response: %v", domain.ErrUnavailable, err)
	}

	name := item.DisplayName
	if name == "" {
		name = "Unknown"
	}
	return Place{AddressName: name, Lat: lat, Lng: lng}, nil
}

func (g *Geocoder) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	full := g.baseURL + "/" + endpoint + "?" + params.Encode()

	key := cache.Key("nominatim", []byte(full))
	if cached, ok := g.cache.Get(ctx, key); ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: geocode request failed with HTTP %d", domain.ErrUnavailable, resp.StatusCode)
	}

	g.cache.Set(ctx, key, body)
	return body, nil
}
