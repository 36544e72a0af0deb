// Package graphhopper provides a client for the GraphHopper geocoding API.
package graphhopper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/waypointcli/waypoint/internal/geocoding"
	"github.com/waypointcli/waypoint/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "graphhopper-geocode"

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

// ClientConfig holds configuration for the GraphHopper geocoding client.
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

// Client is a GraphHopper geocoding API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new GraphHopper geocoding client.
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

// Search returns up to limit candidates for query in API order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]geocoding.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     "EMPTY_QUERY",
			Message:  "Empty location.",
			Err:      geocoding.ErrInvalidRequest,
		}
	}
	if limit <= 0 {
		limit = geocoding.DefaultLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("locale", "en")
	params.Set("key", c.apiKey)

	reqURL := c.baseURL + "/geocode?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("query", query).
		Int("limit", limit).
		Msg("requesting geocode from GraphHopper")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  fmt.Sprintf("Geocode error: %v", err),
			Err:      geocoding.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &geocoding.Error{
			Provider:   ProviderName,
			Code:       "READ_FAILED",
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Geocode error: reading response: %v", err),
			Err:        geocoding.ErrProviderUnavailable,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp.StatusCode, respBody)
	}

	var ghResp geocodeResponse
	if err := json.Unmarshal(respBody, &ghResp); err != nil {
		return nil, &geocoding.Error{
			Provider:   ProviderName,
			Code:       "MALFORMED_RESPONSE",
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Geocode error: malformed response: %v", err),
			Err:        fmt.Errorf("decoding response: %w", err),
		}
	}

	candidates := toCandidates(ghResp.Hits, query, limit)

	c.logger.Debug().
		Int("hit_count", len(ghResp.Hits)).
		Int("candidate_count", len(candidates)).
		Msg("received geocode from GraphHopper")

	return candidates, nil
}

// handleErrorResponse maps GraphHopper error responses to domain errors.
func handleErrorResponse(statusCode int, body []byte) error {
	detail := errorDetail(body)
	geoErr := &geocoding.Error{
		Provider:   ProviderName,
		Code:       fmt.Sprintf("HTTP_%d", statusCode),
		StatusCode: statusCode,
		Message:    fmt.Sprintf("Geocode HTTP %d: %s", statusCode, detail),
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		geoErr.Code = "UNAUTHORIZED"
		geoErr.Err = geocoding.ErrUnauthorized
	case statusCode == http.StatusTooManyRequests:
		geoErr.Code = "RATE_LIMIT"
		geoErr.Err = geocoding.ErrRateLimitExceeded
	case statusCode == http.StatusBadRequest:
		geoErr.Code = "BAD_REQUEST"
		geoErr.Err = geocoding.ErrInvalidRequest
	default:
		if statusCode >= 500 {
			geoErr.Code = fmt.Sprintf("SERVER_%d", statusCode)
		}
		geoErr.Err = geocoding.ErrProviderUnavailable
	}

	return geoErr
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

// toCandidates keeps hits with a full point, in order, up to limit.
func toCandidates(hits []geocodeHit, query string, limit int) []geocoding.Candidate {
	candidates := make([]geocoding.Candidate, 0, min(len(hits), limit))

	for i := range hits {
		hit := &hits[i]
		if hit.Point == nil || hit.Point.Lat == nil || hit.Point.Lng == nil {
			continue
		}
		candidates = append(candidates, geocoding.Candidate{
			Name: displayName(hit, query),
			Lat:  *hit.Point.Lat,
			Lon:  *hit.Point.Lng,
		})
		if len(candidates) == limit {
			break
		}
	}

	return candidates
}

// displayName joins the non-empty name, city, state and country.
func displayName(hit *geocodeHit, query string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{hit.Name, hit.City, hit.State, hit.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return query
	}
	return strings.Join(parts, ", ")
}
