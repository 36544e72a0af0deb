// Package session drives one interactive routing session from profile
// selection to the optional saved report.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/waypointcli/waypoint/internal/geocoding"
	"github.com/waypointcli/waypoint/internal/report"
	"github.com/waypointcli/waypoint/internal/routing"
)

// ErrRouteFailed wraps any failure of the route request.
var ErrRouteFailed = errors.New("route request failed")

// State is a step of the session.
type State int

// Session states in the order they are entered.
const (
	StateCollectingProfile State = iota
	StateCollectingLocations
	StateRequesting
	StatePresenting
	StateSaving
	StateDone
)

func (s State) String() string {
	switch s {
	case StateCollectingProfile:
		return "collecting_profile"
	case StateCollectingLocations:
		return "collecting_locations"
	case StateRequesting:
		return "requesting"
	case StatePresenting:
		return "presenting"
	case StateSaving:
		return "saving"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Console is the terminal the session talks to.
type Console interface {
	geocoding.Prompter
	Confirm(prompt string) (bool, error)
	Print(text string)
}

// Resolver turns a typed location into a confirmed point.
type Resolver interface {
	Resolve(ctx context.Context, query string) (geocoding.ResolvedPoint, error)
}

// Router requests the route for the collected points.
type Router interface {
	Request(ctx context.Context, points []routing.Coordinate, profile routing.Profile) (*routing.Route, error)
}

// Saver persists the printed report.
type Saver interface {
	Save(text string) (string, error)
}

// Config holds the collaborators of a session.
type Config struct {
	Console  Console
	Resolver Resolver
	Router   Router
	Saver    Saver
	Logger   zerolog.Logger
}

// Session is a single run of the interactive dialogue.
type Session struct {
	console  Console
	resolver Resolver
	router   Router
	saver    Saver
	logger   zerolog.Logger

	state   State
	profile routing.Profile
	points  []geocoding.ResolvedPoint
}

// New creates a session in StateCollectingProfile.
func New(cfg Config) *Session {
	return &Session{
		console:  cfg.Console,
		resolver: cfg.Resolver,
		router:   cfg.Router,
		saver:    cfg.Saver,
		logger:   cfg.Logger,
		state:    StateCollectingProfile,
	}
}

// State returns the current step.
func (s *Session) State() State {
	return s.state
}

// Points returns the confirmed points collected so far.
func (s *Session) Points() []geocoding.ResolvedPoint {
	return s.points
}

// Run executes the session. Route failures are returned wrapped in
// ErrRouteFailed; a closed input stream surfaces console.ErrInputClosed.
// A failed save is reported to the user and does not fail the session.
func (s *Session) Run(ctx context.Context) error {
	if err := s.collectProfile(); err != nil {
		return err
	}

	s.transition(StateCollectingLocations)
	if err := s.collectLocations(ctx); err != nil {
		return err
	}

	s.transition(StateRequesting)
	route, err := s.requestRoute(ctx)
	if err != nil {
		s.transition(StateDone)
		return err
	}

	s.transition(StatePresenting)
	text, err := s.present(route)
	if err != nil {
		return err
	}

	s.transition(StateSaving)
	if err := s.save(text); err != nil {
		return err
	}

	s.transition(StateDone)
	return nil
}

func (s *Session) transition(next State) {
	s.logger.Debug().
		Stringer("from", s.state).
		Stringer("to", next).
		Msg("session state change")
	s.state = next
}

func (s *Session) collectProfile() error {
	for {
		answer, err := s.console.Ask("Vehicle profile (car/bike/foot) [car]: ")
		if err != nil {
			return err
		}

		profile, err := routing.ParseProfile(answer)
		if err != nil {
			s.console.Warn("Unknown vehicle profile %q. Choose car, bike or foot.", answer)
			continue
		}

		s.profile = profile
		return nil
	}
}

func (s *Session) collectLocations(ctx context.Context) error {
	s.console.Println("")
	s.console.Println("Enter locations in order. Leave blank to finish.")

	for {
		prompt := "Start: "
		if len(s.points) > 0 {
			prompt = fmt.Sprintf("Stop %d: ", len(s.points))
		}

		query, err := s.console.Ask(prompt)
		if err != nil {
			return err
		}

		if query == "" {
			if len(s.points) < 2 {
				s.console.Warn("Need at least 2 locations. Please enter more.")
				continue
			}
			return nil
		}

		point, err := s.resolver.Resolve(ctx, query)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if recoverable(err) {
				s.logger.Debug().Err(err).Str("query", query).Msg("location not resolved, asking again")
				continue
			}
			return err
		}

		s.points = append(s.points, point)
	}
}

// recoverable reports whether a resolve error means "ask for this stop again".
func recoverable(err error) bool {
	var geoErr *geocoding.Error
	return errors.Is(err, geocoding.ErrReenter) ||
		errors.Is(err, geocoding.ErrNoMatches) ||
		errors.As(err, &geoErr)
}

func (s *Session) requestRoute(ctx context.Context) (*routing.Route, error) {
	coords := make([]routing.Coordinate, 0, len(s.points))
	for _, p := range s.points {
		coords = append(coords, p.Coordinate())
	}

	s.console.Println("")
	s.console.Info("Requesting route for %d point(s)...", len(coords))

	route, err := s.router.Request(ctx, coords, s.profile)
	if err != nil {
		var routeErr *routing.Error
		if errors.As(err, &routeErr) {
			s.console.Error("%s", routeErr.Message)
		} else {
			s.console.Error("Route error: %v", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrRouteFailed, err)
	}

	return route, nil
}

// present prints the summary and, on request, the instructions. It returns
// exactly the report text that was printed.
func (s *Session) present(route *routing.Route) (string, error) {
	text := report.FormatSummary(s.points, s.profile, route)
	s.console.Println("")
	s.console.Print(text)

	s.console.Println("")
	showSteps, err := s.console.Confirm("Show full step-by-step? (y/N): ")
	if err != nil {
		return "", err
	}
	if showSteps {
		instructions := report.FormatInstructions(route)
		s.console.Println("")
		s.console.Print(instructions)
		text += "\n" + instructions
	}

	return text, nil
}

func (s *Session) save(text string) error {
	s.console.Println("")
	wantSave, err := s.console.Confirm("Save report to file? (y/N): ")
	if err != nil {
		return err
	}
	if !wantSave {
		return nil
	}

	path, err := s.saver.Save(text)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to save report")
		s.console.Error("Failed to save report: %v", err)
		return nil
	}

	s.console.Success("Report saved to %s", path)
	return nil
}
