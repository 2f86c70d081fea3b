package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripline/eld-backend/internal/routing"
)

// Geocoder is the geocoding collaborator contract.
// Implemented by routing.Geocoder; mocked in tests.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]routing.Place, error)
	Reverse(ctx context.Context, lat, lng float64) (routing.Place, error)
}

// GeocodeService fronts the geocoding provider with the business rules the
// UI relies on: short queries return nothing without a provider call, and
// results are always a non-nil slice.
type GeocodeService struct {
	geocoder Geocoder
}

// NewGeocodeService constructs a GeocodeService.
func NewGeocodeService(g Geocoder) *GeocodeService {
	return &GeocodeService{geocoder: g}
}

// Search resolves a free-text location query. Queries shorter than three
// characters yield an empty result set; they are too short to geocode usefully.
func (s *GeocodeService) Search(ctx context.Context, query string) ([]routing.Place, error) {
	query = strings.TrimSpace(query)
	if len(query) < 3 {
		return []routing.Place{}, nil
	}

	results, err := s.geocoder.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service.GeocodeService.Search: %w", err)
	}
	if results == nil {
		results = []routing.Place{}
	}
	return results, nil
}

// Reverse resolves coordinates to the nearest address.
func (s *GeocodeService) Reverse(ctx context.Context, lat, lng float64) (routing.Place, error) {
	place, err := s.geocoder.Reverse(ctx, lat, lng)
	if err != nil {
		return routing.Place{}, fmt.Errorf("service.GeocodeService.Reverse: %w", err)
	}
	return place, nil
}
