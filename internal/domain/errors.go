package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist or is not owned by the requesting driver.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. status change not after the current open interval,
// event submitted against a completed trip).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnavailable is returned by external adapters (routing, geocoding) when
// the provider is unreachable, returns an error status, or produces an
// unusable payload. Trip creation treats it as a degraded route summary;
// geocode handlers map it to HTTP 503.
var ErrUnavailable = errors.New("provider unavailable")
