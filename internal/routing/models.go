// Package routing requests routes through an ordered list of waypoints.
package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the routing provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no valid route exists between the given points.
	ErrNoRouteFound = errors.New("no route found for the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("routing request unauthorized")
	// ErrInvalidRequest indicates the provider rejected the request parameters.
	ErrInvalidRequest = errors.New("invalid routing request")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrTooFewPoints indicates fewer than two waypoints were supplied.
	ErrTooFewPoints = errors.New("at least 2 points are required")
	// ErrUnknownProfile indicates a vehicle profile outside car, bike and foot.
	ErrUnknownProfile = errors.New("unknown vehicle profile")
	// ErrMalformedResponse indicates the provider answered 200 with an unusable body.
	ErrMalformedResponse = errors.New("malformed routing response")
)

// Provider defines the interface for routing providers.
type Provider interface {
	// Route computes a route visiting points in order.
	Route(ctx context.Context, points []Coordinate, profile Profile) (*Route, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Profile represents a vehicle profile.
type Profile string

const (
	// ProfileCar is the default driving profile.
	ProfileCar Profile = "car"
	// ProfileBike is the cycling profile.
	ProfileBike Profile = "bike"
	// ProfileFoot is the walking profile.
	ProfileFoot Profile = "foot"
)

// Profiles lists the supported profiles in prompt order.
var Profiles = []Profile{ProfileCar, ProfileBike, ProfileFoot}

// ParseProfile matches s case-insensitively. Blank input selects ProfileCar.
func ParseProfile(s string) (Profile, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ProfileCar, nil
	}
	for _, p := range Profiles {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProfile, s)
}

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Point returns the coordinate as an orb point ({lon, lat}).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// Route is the primary path returned by the provider.
type Route struct {
	DistanceMeters  float64        // Total distance in meters
	DurationSeconds int            // Total duration in whole seconds
	Instructions    []Instruction  // Turn-by-turn instructions in travel order
	Geometry        orb.LineString // Decoded path geometry ({lon, lat} points)
	BoundingBox     *BoundingBox   // Geographic bounding box
}

// BoundingBox represents a geographic bounding box.
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Bound returns the box as an orb.Bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// BoundingBoxFromBound converts an orb.Bound.
func BoundingBoxFromBound(b orb.Bound) *BoundingBox {
	return &BoundingBox{
		MinLon: b.Min.Lon(),
		MinLat: b.Min.Lat(),
		MaxLon: b.Max.Lon(),
		MaxLat: b.Max.Lat(),
	}
}

// Instruction represents a turn-by-turn instruction.
type Instruction struct {
	Text           string  // Human-readable instruction text
	DistanceMeters float64 // Distance for this segment
}

// Error provides detailed error information from the routing provider.
type Error struct {
	Provider   string // Provider that generated the error
	Code       string // Error code from the provider
	StatusCode int    // HTTP status, zero when no response was received
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
