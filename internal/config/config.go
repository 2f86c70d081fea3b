// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// ORSAPIKey authenticates against OpenRouteService. Optional: with no
	// key, route summaries degrade to empty and trips still work.
	ORSAPIKey string

	// ORSDirectionsURL is the OpenRouteService driving-hgv directions
	// endpoint. Defaults to the public API.
	ORSDirectionsURL string

	// ORSSnapRadiusMeters is how far waypoints may be snapped to the road
	// network. Defaults to 5000.
	ORSSnapRadiusMeters int

	// GeocodeBaseURL is the Nominatim-compatible geocoding base URL.
	// Defaults to the public OSM instance.
	GeocodeBaseURL string

	// GeocodeUserAgent identifies this service to Nominatim, which requires
	// a meaningful User-Agent from API consumers.
	GeocodeUserAgent string

	// RedisURL enables provider-response caching when set. Optional: with
	// no Redis every geocode/route request goes straight to the provider.
	RedisURL string

	// DefaultTimezone names the IANA zone used for day-log partitioning
	// when a request does not specify one. Defaults to UTC.
	DefaultTimezone string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		ORSAPIKey:        os.Getenv("ORS_API_KEY"),
		ORSDirectionsURL: getEnv("ORS_DIRECTIONS_URL", "https://api.openrouteservice.org/v2/directions/driving-hgv/geojson"),
		GeocodeBaseURL:   getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeUserAgent: getEnv("GEOCODE_USER_AGENT", "eld-backend/1.0"),
		RedisURL:         os.Getenv("REDIS_URL"),
		DefaultTimezone:  getEnv("DEFAULT_TIMEZONE", "UTC"),
	}

	radius := getEnv("ORS_SNAP_RADIUS_METERS", "5000")
	parsed, err := strconv.Atoi(radius)
	if err != nil || parsed <= 0 {
		return Config{}, fmt.Errorf("ORS_SNAP_RADIUS_METERS must be a positive integer, got %q", radius)
	}
	cfg.ORSSnapRadiusMeters = parsed

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
