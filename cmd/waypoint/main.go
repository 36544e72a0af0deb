// Package main provides the entrypoint for the waypoint route helper.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/waypointcli/waypoint/internal/config"
	"github.com/waypointcli/waypoint/internal/console"
	"github.com/waypointcli/waypoint/internal/geocoding"
	geocodegh "github.com/waypointcli/waypoint/internal/geocoding/graphhopper"
	"github.com/waypointcli/waypoint/internal/provider/resilience"
	"github.com/waypointcli/waypoint/internal/report"
	"github.com/waypointcli/waypoint/internal/routing"
	routegh "github.com/waypointcli/waypoint/internal/routing/graphhopper"
	"github.com/waypointcli/waypoint/internal/session"
	"github.com/waypointcli/waypoint/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "waypoint"

// Process exit codes.
const (
	exitOK           = 0
	exitFailure      = 1
	exitRouteFailure = 2
)

func main() {
	os.Exit(run(context.Background(), os.Stdin, os.Stdout, os.Stderr))
}

// run executes one session and returns the process exit code.
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) int {
	term := newConsole(stdin, stdout)

	cfg, err := config.Load(".")
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			term.Error("Please set the GRAPHHOPPER_KEY environment variable.")
		} else {
			term.Error("Configuration error: %v", err)
		}
		return exitFailure
	}

	sessionID := uuid.NewString()

	// Logs go to stderr so they never interleave with the dialogue on stdout.
	log := zerolog.New(stderr).
		Level(cfg.LogLevel).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Str("session_id", sessionID).
		Logger()

	log.Debug().
		Str("build_time", BuildTime).
		Str("environment", cfg.Environment).
		Str("key_source", cfg.Source).
		Str("base_url", cfg.BaseURL).
		Msg("starting waypoint")

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize telemetry")
		term.Error("Telemetry error: %v", err)
		return exitFailure
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	ctx, span := tp.Tracer.Start(ctx, "waypoint.session",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	registry := resilience.NewRegistry()

	geocoder := geocodegh.NewClient(geocodegh.ClientConfig{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.HTTPTimeout,
		Registry: registry,
		Logger:   log,
	})

	router := routegh.NewClient(routegh.ClientConfig{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.HTTPTimeout,
		Registry: registry,
		Logger:   log,
	})

	s := session.New(session.Config{
		Console: term,
		Resolver: geocoding.NewResolver(geocoding.ResolverConfig{
			Geocoder: geocoder,
			Prompter: term,
			Logger:   log,
		}),
		Router: routing.NewService(routing.ServiceConfig{
			Provider: router,
			Logger:   log,
		}),
		Saver: report.NewSaver(report.SaverConfig{
			Fs:     afero.NewOsFs(),
			Dir:    cfg.ReportDir,
			Logger: log,
		}),
		Logger: log,
	})

	err = s.Run(ctx)
	logProviderHealth(log, registry)

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, session.ErrRouteFailed):
		span.RecordError(err)
		span.SetStatus(codes.Error, "route request failed")
		return exitRouteFailure
	case errors.Is(err, console.ErrInputClosed):
		log.Warn().Stringer("state", s.State()).Msg("input closed before the session finished")
		return exitFailure
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).Stringer("state", s.State()).Msg("session failed")
		return exitFailure
	}
}

// newConsole enables colour only when stdout is a real file.
func newConsole(stdin io.Reader, stdout io.Writer) *console.Console {
	if f, ok := stdout.(*os.File); ok {
		return console.NewTerminal(stdin, f)
	}
	return console.New(stdin, stdout)
}

func logProviderHealth(log zerolog.Logger, registry *resilience.Registry) {
	for _, h := range registry.GetAllHealth() {
		event := log.Debug().
			Str("provider", h.Name).
			Str("circuit_state", h.CircuitState.String()).
			Bool("healthy", h.IsHealthy()).
			Uint32("requests", h.Counts.Requests).
			Uint32("total_failures", h.Counts.TotalFailures)
		if h.LastError != "" {
			event = event.Str("last_error", h.LastError)
		}
		event.Msg("provider health")
	}
}
