package geocoding

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
)

// Prompter is the terminal dialogue the resolver drives.
type Prompter interface {
	Ask(prompt string) (string, error)
	Println(format string, args ...any)
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// ResolverConfig holds configuration for the resolver.
type ResolverConfig struct {
	// Geocoder is the candidate lookup provider.
	Geocoder Geocoder

	// Prompter is used for the disambiguation menu.
	Prompter Prompter

	// Limit caps the number of candidates shown (default: 5).
	Limit int

	// Logger for resolver operations.
	Logger zerolog.Logger
}

// Resolver turns a query into a user-confirmed point.
type Resolver struct {
	geocoder Geocoder
	prompter Prompter
	limit    int
	logger   zerolog.Logger
}

// NewResolver creates a new resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &Resolver{
		geocoder: cfg.Geocoder,
		prompter: cfg.Prompter,
		limit:    limit,
		logger:   cfg.Logger,
	}
}

// Resolve looks up query and asks the user to pick one candidate.
//
// It returns ErrNoMatches when nothing was found, ErrReenter when the user
// chose 0, and a *Error when the provider call failed. Provider failures and
// empty results are reported to the user before returning. Errors from the
// prompter (such as a closed input stream) are returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, query string) (ResolvedPoint, error) {
	r.logger.Debug().
		Str("query", query).
		Str("provider", r.geocoder.Name()).
		Msg("resolving location")

	candidates, err := r.geocoder.Search(ctx, query, r.limit)
	if err != nil {
		r.logger.Error().Err(err).Str("query", query).Msg("geocoding failed")

		var geoErr *Error
		if errors.As(err, &geoErr) {
			r.prompter.Error("%s", geoErr.Message)
		} else {
			r.prompter.Error("Geocode error: %v", err)
		}
		return ResolvedPoint{}, err
	}

	if len(candidates) > r.limit {
		candidates = candidates[:r.limit]
	}

	if len(candidates) == 0 {
		r.prompter.Error("No geocoding results for '%s'.", query)
		return ResolvedPoint{}, ErrNoMatches
	}

	r.prompter.Info("Did you mean:")
	for i, c := range candidates {
		r.prompter.Println("  %d. %s  (%.5f, %.5f)", i+1, c.Name, c.Lat, c.Lon)
	}

	idx, err := r.choose(len(candidates))
	if err != nil {
		return ResolvedPoint{}, err
	}
	if idx == 0 {
		return ResolvedPoint{}, ErrReenter
	}

	chosen := candidates[idx-1]
	r.prompter.Success("✓ %s (%.5f, %.5f)", chosen.Name, chosen.Lat, chosen.Lon)

	return ResolvedPoint(chosen), nil
}

// choose asks until the answer is a number in [0, n]. Blank selects 1.
func (r *Resolver) choose(n int) (int, error) {
	prompt := "Select 1-" + strconv.Itoa(n) + " [1], or 0 to re-enter: "

	for {
		answer, err := r.prompter.Ask(prompt)
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return 1, nil
		}

		if !isDigits(answer) {
			r.prompter.Warn("Please enter a number between 0 and %d.", n)
			continue
		}
		// Atoi only fails on overflow here, which is out of range too.
		idx, err := strconv.Atoi(answer)
		if err != nil || idx > n {
			r.prompter.Warn("Out of range. Choose 1-%d or 0 to re-enter.", n)
			continue
		}
		return idx, nil
	}
}

// isDigits reports whether s is non-empty and made only of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
