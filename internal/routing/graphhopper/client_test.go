package graphhopper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/waypointcli/waypoint/internal/provider/resilience"
	"github.com/waypointcli/waypoint/internal/routing"
)

var testPoints = []routing.Coordinate{
	{Lat: 38.5, Lon: -120.2},
	{Lat: 40.7, Lon: -120.95},
	{Lat: 43.252, Lon: -126.453},
}

func TestClient_Route_Success(t *testing.T) {
	respBody, err := os.ReadFile("testdata/route_response.json")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/route" {
			t.Errorf("expected path /route, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "mock123" {
			t.Errorf("expected key=mock123, got %q", r.URL.Query().Get("key"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type 'application/json', got '%s'", r.Header.Get("Content-Type"))
		}

		raw, _ := io.ReadAll(r.Body)
		var req routeRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		if req.Profile != "bike" {
			t.Errorf("expected profile bike, got %q", req.Profile)
		}
		if !req.Instructions || !req.CalcPoints || !req.PointsEncoded || req.Locale != "en" {
			t.Errorf("unexpected request options: %+v", req)
		}
		// GraphHopper expects [lon, lat]
		if len(req.Points) != 3 || req.Points[1][0] != -120.95 || req.Points[1][1] != 40.7 {
			t.Errorf("expected 3 points in [lon, lat] order, got %v", req.Points)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(respBody)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})

	route, err := client.Route(context.Background(), testPoints, routing.ProfileBike)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if route.DistanceMeters != 1054320 {
		t.Errorf("expected distance 1054320, got %f", route.DistanceMeters)
	}
	if route.DurationSeconds != 35118 {
		t.Errorf("expected duration 35118 (milliseconds floored), got %d", route.DurationSeconds)
	}

	if len(route.Instructions) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(route.Instructions))
	}
	first := route.Instructions[0]
	if first.Text != "Continue onto Main Street" || first.DistanceMeters != 1520.5 {
		t.Errorf("unexpected first instruction: %+v", first)
	}

	if len(route.Geometry) != 3 {
		t.Fatalf("expected 3 geometry points, got %d", len(route.Geometry))
	}
	if math.Abs(route.Geometry[2].Lat()-43.252) > 1e-9 || math.Abs(route.Geometry[2].Lon()+126.453) > 1e-9 {
		t.Errorf("unexpected last geometry point: %v", route.Geometry[2])
	}

	if route.BoundingBox == nil {
		t.Fatal("expected bounding box to be set")
	}
	if route.BoundingBox.MinLon != -126.453 || route.BoundingBox.MaxLat != 43.252 {
		t.Errorf("unexpected bounding box: %+v", route.BoundingBox)
	}
}

func TestClient_Route_BoundingBoxFromGeometry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"paths":[{"distance":10,"time":1999,"points":"_p~iF~ps|U_ulLnnqC"}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})

	route, err := client.Route(context.Background(), testPoints[:2], routing.ProfileCar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if route.DurationSeconds != 1 {
		t.Errorf("expected 1 second, got %d", route.DurationSeconds)
	}
	if len(route.Instructions) != 0 {
		t.Errorf("expected no instructions, got %d", len(route.Instructions))
	}
	if route.BoundingBox == nil {
		t.Fatal("expected bounding box derived from geometry")
	}
	box := route.BoundingBox
	if math.Abs(box.MinLat-38.5) > 1e-9 || math.Abs(box.MaxLat-40.7) > 1e-9 ||
		math.Abs(box.MinLon+120.95) > 1e-9 || math.Abs(box.MaxLon+120.2) > 1e-9 {
		t.Errorf("unexpected bounding box: %+v", box)
	}
}

func TestClient_Route_NoPaths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"paths":[]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})

	_, err := client.Route(context.Background(), testPoints, routing.ProfileCar)

	var routingErr *routing.Error
	if !errors.As(err, &routingErr) {
		t.Fatalf("expected routing.Error, got %T", err)
	}
	if !errors.Is(routingErr.Err, routing.ErrNoRouteFound) {
		t.Errorf("expected ErrNoRouteFound, got %v", routingErr.Err)
	}
}

func TestClient_Route_ErrorStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"message":"Wrong credentials. Register and get a valid API key at https://www.graphhopper.com/developers/"}`,
			wantErr: routing.ErrUnauthorized,
			wantMsg: "Route HTTP 401: Wrong credentials. Register and get a valid API key at https://www.graphhopper.com/developers/",
		},
		{
			name:    "forbidden",
			status:  http.StatusForbidden,
			body:    `{"message":"Profile not allowed"}`,
			wantErr: routing.ErrUnauthorized,
			wantMsg: "Route HTTP 403: Profile not allowed",
		},
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			body:    `{"message":"API limit reached"}`,
			wantErr: routing.ErrRateLimitExceeded,
			wantMsg: "Route HTTP 429: API limit reached",
		},
		{
			name:    "bad request",
			status:  http.StatusBadRequest,
			body:    `{"message":"Cannot find point 1: 43.252,-126.453","hints":[{"message":"Cannot find point 1"}]}`,
			wantErr: routing.ErrInvalidRequest,
			wantMsg: "Route HTTP 400: Cannot find point 1: 43.252,-126.453",
		},
		{
			name:    "server error",
			status:  http.StatusBadGateway,
			body:    "<html>bad gateway</html>",
			wantErr: routing.ErrProviderUnavailable,
			wantMsg: "Route HTTP 502: <html>bad gateway</html>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(ClientConfig{
				APIKey:     "mock123",
				BaseURL:    server.URL,
				HTTPClient: server.Client(),
				Logger:     zerolog.Nop(),
			})

			_, err := client.Route(context.Background(), testPoints, routing.ProfileCar)

			var routingErr *routing.Error
			if !errors.As(err, &routingErr) {
				t.Fatalf("expected routing.Error, got %T", err)
			}
			if !errors.Is(routingErr.Err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, routingErr.Err)
			}
			if routingErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, routingErr.StatusCode)
			}
			if routingErr.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, routingErr.Message)
			}
		})
	}
}

func TestClient_Route_MalformedGeometry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"paths":[{"distance":10,"time":1000,"points":"_p~iF"}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})

	_, err := client.Route(context.Background(), testPoints, routing.ProfileCar)

	var routingErr *routing.Error
	if !errors.As(err, &routingErr) {
		t.Fatalf("expected routing.Error, got %T", err)
	}
	if routingErr.Code != "MALFORMED_GEOMETRY" {
		t.Errorf("expected MALFORMED_GEOMETRY, got %s", routingErr.Code)
	}
}

func TestClient_Route_MissingSummaryFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no distance or time", body: `{"paths":[{"instructions":[]}]}`},
		{name: "no time", body: `{"paths":[{"distance":10,"points":"_p~iF~ps|U"}]}`},
		{name: "no distance", body: `{"paths":[{"time":1000,"points":"_p~iF~ps|U"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(ClientConfig{
				APIKey:     "mock123",
				BaseURL:    server.URL,
				HTTPClient: server.Client(),
				Logger:     zerolog.Nop(),
			})

			route, err := client.Route(context.Background(), testPoints, routing.ProfileCar)
			if route != nil {
				t.Errorf("expected no route, got %+v", route)
			}

			var routingErr *routing.Error
			if !errors.As(err, &routingErr) {
				t.Fatalf("expected routing.Error, got %T", err)
			}
			if routingErr.Code != "MALFORMED_RESPONSE" {
				t.Errorf("expected MALFORMED_RESPONSE, got %s", routingErr.Code)
			}
			if !errors.Is(err, routing.ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestClient_Route_ZeroDistanceIsAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"paths":[{"distance":0,"time":0,"points":"_p~iF~ps|U"}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})

	route, err := client.Route(context.Background(), testPoints[:2], routing.ProfileFoot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.DistanceMeters != 0 || route.DurationSeconds != 0 {
		t.Errorf("expected zero-length route, got %+v", route)
	}
}

// mockFailingClient simulates network errors.
type mockFailingClient struct{}

func (m *mockFailingClient) Do(req *http.Request) (*http.Response, error) {
	return nil, errors.New("network error")
}

func TestClient_Route_NetworkError(t *testing.T) {
	client := NewClient(ClientConfig{
		APIKey:     "mock123",
		HTTPClient: &mockFailingClient{},
		Logger:     zerolog.Nop(),
	})

	_, err := client.Route(context.Background(), testPoints, routing.ProfileCar)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var routingErr *routing.Error
	if !errors.As(err, &routingErr) {
		t.Fatalf("expected routing.Error, got %T", err)
	}
	if !errors.Is(routingErr.Err, routing.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", routingErr.Err)
	}
	if routingErr.StatusCode != 0 {
		t.Errorf("expected no status code, got %d", routingErr.StatusCode)
	}
}

func TestClient_Route_ServerErrorRecordedInRegistry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"maintenance"}`))
	}))
	defer server.Close()

	registry := resilience.NewRegistry()
	client := NewClient(ClientConfig{
		APIKey:   "mock123",
		BaseURL:  server.URL,
		Registry: registry,
		Logger:   zerolog.Nop(),
	})

	_, err := client.Route(context.Background(), testPoints, routing.ProfileCar)
	if !errors.Is(err, routing.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}

	healthList := registry.GetAllHealth()
	if len(healthList) != 1 || healthList[0].Name != ProviderName {
		t.Fatalf("expected %s to be registered, got %+v", ProviderName, healthList)
	}
	if healthList[0].Counts.TotalFailures != 1 {
		t.Errorf("expected 1 failure, got %d", healthList[0].Counts.TotalFailures)
	}
	if healthList[0].LastError == "" {
		t.Error("expected failure to be recorded")
	}
}

func TestClient_Name(t *testing.T) {
	client := NewClient(ClientConfig{
		APIKey: "test",
		Logger: zerolog.Nop(),
	})

	if client.Name() != ProviderName {
		t.Errorf("expected %s, got %s", ProviderName, client.Name())
	}
}
