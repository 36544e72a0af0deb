// Package graphhopper provides a client for the GraphHopper routing API.
package graphhopper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/waypointcli/waypoint/internal/provider/resilience"
	"github.com/waypointcli/waypoint/internal/routing"
	"github.com/waypointcli/waypoint/pkg/polyline"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "graphhopper-route"

	// DefaultBaseURL is the GraphHopper API base URL.
	DefaultBaseURL = "https://graphhopper.com/api/1"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of an unparseable error body is shown.
	maxErrorBody = 200
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the GraphHopper routing client.
type ClientConfig struct {
	// APIKey is the GraphHopper API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the public API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 15s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a GraphHopper routing API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new GraphHopper routing client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Route requests a route through points in order and returns the first path.
func (c *Client) Route(ctx context.Context, points []routing.Coordinate, profile routing.Profile) (*routing.Route, error) {
	ghReq := routeRequest{
		Points:        make([][]float64, 0, len(points)),
		Profile:       string(profile),
		Instructions:  true,
		Locale:        "en",
		CalcPoints:    true,
		PointsEncoded: true,
	}
	for _, p := range points {
		pt := p.Point()
		ghReq.Points = append(ghReq.Points, pt[:])
	}

	body, err := json.Marshal(ghReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	reqURL := c.baseURL + "/route?" + url.Values{"key": []string{c.apiKey}}.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("profile", string(profile)).
		Int("point_count", len(points)).
		Msg("requesting route from GraphHopper")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  fmt.Sprintf("Route error: %v", err),
			Err:      routing.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &routing.Error{
			Provider:   ProviderName,
			Code:       "READ_FAILED",
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Route error: reading response: %v", err),
			Err:        routing.ErrProviderUnavailable,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp.StatusCode, respBody)
	}

	var ghResp routeResponse
	if err := json.Unmarshal(respBody, &ghResp); err != nil {
		return nil, &routing.Error{
			Provider:   ProviderName,
			Code:       "MALFORMED_RESPONSE",
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Route error: malformed response: %v", err),
			Err:        fmt.Errorf("%w: %w", routing.ErrMalformedResponse, err),
		}
	}

	if len(ghResp.Paths) == 0 {
		return nil, &routing.Error{
			Provider:   ProviderName,
			Code:       "NO_ROUTE",
			StatusCode: resp.StatusCode,
			Message:    "No route found for the given points.",
			Err:        routing.ErrNoRouteFound,
		}
	}

	path := &ghResp.Paths[0]
	if path.Distance == nil || path.Time == nil {
		return nil, &routing.Error{
			Provider:   ProviderName,
			Code:       "MALFORMED_RESPONSE",
			StatusCode: resp.StatusCode,
			Message:    "Route error: malformed response: path is missing distance or time",
			Err:        routing.ErrMalformedResponse,
		}
	}

	route, err := toRoute(path)
	if err != nil {
		return nil, &routing.Error{
			Provider:   ProviderName,
			Code:       "MALFORMED_GEOMETRY",
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Route error: malformed geometry: %v", err),
			Err:        err,
		}
	}

	c.logger.Debug().
		Float64("distance_m", route.DistanceMeters).
		Int("duration_s", route.DurationSeconds).
		Int("geometry_points", len(route.Geometry)).
		Float64("geometry_length_m", polyline.Length(route.Geometry)).
		Msg("received route from GraphHopper")

	return route, nil
}

// handleErrorResponse maps GraphHopper error responses to domain errors.
func handleErrorResponse(statusCode int, body []byte) error {
	routeErr := &routing.Error{
		Provider:   ProviderName,
		Code:       fmt.Sprintf("HTTP_%d", statusCode),
		StatusCode: statusCode,
		Message:    fmt.Sprintf("Route HTTP %d: %s", statusCode, errorDetail(body)),
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		routeErr.Code = "UNAUTHORIZED"
		routeErr.Err = routing.ErrUnauthorized
	case statusCode == http.StatusTooManyRequests:
		routeErr.Code = "RATE_LIMIT"
		routeErr.Err = routing.ErrRateLimitExceeded
	case statusCode == http.StatusBadRequest:
		routeErr.Code = "BAD_REQUEST"
		routeErr.Err = routing.ErrInvalidRequest
	default:
		if statusCode >= 500 {
			routeErr.Code = fmt.Sprintf("SERVER_%d", statusCode)
		}
		routeErr.Err = routing.ErrProviderUnavailable
	}

	return routeErr
}

// errorDetail returns the API message, or the start of the raw body.
func errorDetail(body []byte) string {
	var ghErr errorResponse
	if err := json.Unmarshal(body, &ghErr); err == nil && ghErr.Message != "" {
		return ghErr.Message
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return text
}

// toRoute converts a GraphHopper path to the domain model. Distance and Time
// must be set.
func toRoute(path *routePath) (*routing.Route, error) {
	geometry, err := polyline.Decode(path.Points, path.PointsEncodedMultiplier)
	if err != nil {
		return nil, fmt.Errorf("decoding points: %w", err)
	}

	route := &routing.Route{
		DistanceMeters:  *path.Distance,
		DurationSeconds: int(*path.Time / 1000),
		Geometry:        geometry,
		Instructions:    make([]routing.Instruction, 0, len(path.Instructions)),
	}

	switch {
	case len(path.BBox) >= 4:
		route.BoundingBox = &routing.BoundingBox{
			MinLon: path.BBox[0],
			MinLat: path.BBox[1],
			MaxLon: path.BBox[2],
			MaxLat: path.BBox[3],
		}
	case len(geometry) > 0:
		route.BoundingBox = routing.BoundingBoxFromBound(geometry.Bound())
	}

	for i := range path.Instructions {
		inst := &path.Instructions[i]
		route.Instructions = append(route.Instructions, routing.Instruction{
			Text:           inst.Text,
			DistanceMeters: inst.Distance,
		})
	}

	return route, nil
}

var _ routing.Provider = (*Client)(nil)
