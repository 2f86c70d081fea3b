package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// driverIDKey is the context key for the authenticated driver's ID.
// Unexported struct key so no other package can collide with it.
type driverIDKey struct{}

// DriverIDHeader carries the driver's identity from the edge. Authentication
// happens upstream; this service only needs the resulting UUID.
const DriverIDHeader = "X-Driver-ID"

// NewDriverID returns a middleware that extracts the driver UUID from the
// X-Driver-ID header and stores it in the request context. Requests with a
// missing or malformed header are rejected with 401 before reaching any
// handler.
func NewDriverID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(DriverIDHeader)
			if raw == "" {
				unauthorized(w, "missing "+DriverIDHeader+" header")
				return
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				unauthorized(w, DriverIDHeader+" header must be a valid UUID")
				return
			}
			ctx := context.WithValue(r.Context(), driverIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DriverID returns the driver ID placed in the context by NewDriverID.
// ok is false when the middleware did not run for this request.
func DriverID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(driverIDKey{}).(uuid.UUID)
	return id, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": message},
	})
}
