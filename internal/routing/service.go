package routing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Provider is the routing data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service validates route requests and forwards them to the provider once.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Request computes a route through points in the given order.
// The provider is never called with fewer than two points.
func (s *Service) Request(ctx context.Context, points []Coordinate, profile Profile) (*Route, error) {
	if len(points) < 2 {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "TOO_FEW_POINTS",
			Message:  fmt.Sprintf("route needs at least 2 points, got %d", len(points)),
			Err:      ErrTooFewPoints,
		}
	}

	for i, p := range points {
		if err := validateCoordinates(p); err != nil {
			return nil, &Error{
				Provider: s.provider.Name(),
				Code:     "INVALID_POINT",
				Message:  fmt.Sprintf("invalid coordinates for point %d: %v", i+1, err),
				Err:      ErrInvalidCoordinates,
			}
		}
	}

	if _, err := ParseProfile(string(profile)); err != nil {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_PROFILE",
			Message:  fmt.Sprintf("unsupported profile %q", profile),
			Err:      ErrInvalidRequest,
		}
	}

	s.logger.Debug().
		Int("point_count", len(points)).
		Str("profile", string(profile)).
		Str("provider", s.provider.Name()).
		Msg("requesting route from provider")

	route, err := s.provider.Route(ctx, points, profile)
	if err != nil {
		s.logger.Error().Err(err).
			Int("point_count", len(points)).
			Str("profile", string(profile)).
			Msg("failed to fetch route")
		return nil, err
	}

	s.logger.Debug().
		Float64("distance_m", route.DistanceMeters).
		Int("duration_s", route.DurationSeconds).
		Int("instruction_count", len(route.Instructions)).
		Msg("received route")

	return route, nil
}

// validateCoordinates checks if coordinates are within valid ranges.
func validateCoordinates(c Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lon)
	}
	return nil
}
