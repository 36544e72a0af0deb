// Package geocoding resolves free-text place names to confirmed coordinates.
package geocoding

import (
	"context"
	"errors"

	"github.com/waypointcli/waypoint/internal/routing"
)

// DefaultLimit is the maximum number of candidates offered to the user.
const DefaultLimit = 5

// Sentinel errors for geocoding operations.
var (
	// ErrNoMatches indicates the provider returned no usable candidates.
	ErrNoMatches = errors.New("no geocoding results")
	// ErrReenter indicates the user rejected every candidate and wants to type a new query.
	ErrReenter = errors.New("re-enter location")
	// ErrProviderUnavailable indicates the geocoding provider could not be reached or failed.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("geocoding request unauthorized")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidRequest indicates the provider rejected the query.
	ErrInvalidRequest = errors.New("invalid geocoding request")
)

// Geocoder looks up candidates for a free-text query.
type Geocoder interface {
	// Search returns at most limit candidates in the provider's relevance order.
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)
	// Name returns the provider identifier for logging.
	Name() string
}

// Candidate is one disambiguation option returned by the provider.
type Candidate struct {
	Name string
	Lat  float64
	Lon  float64
}

// ResolvedPoint is a candidate confirmed by the user.
type ResolvedPoint struct {
	Name string
	Lat  float64
	Lon  float64
}

// Coordinate returns the point as a routing waypoint.
func (p ResolvedPoint) Coordinate() routing.Coordinate {
	return routing.Coordinate{Lat: p.Lat, Lon: p.Lon}
}

// Error provides detailed error information from the geocoding provider.
type Error struct {
	Provider   string // Provider that generated the error
	Code       string // Error code
	StatusCode int    // HTTP status, zero for transport failures
	Message    string // Human-readable error message
	Err        error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
