package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

// mockProvider is a mock routing provider for testing.
type mockProvider struct {
	name      string
	route     *Route
	err       error
	callCount int
	lastReq   []Coordinate
	lastProf  Profile
}

func (m *mockProvider) Route(ctx context.Context, points []Coordinate, profile Profile) (*Route, error) {
	m.callCount++
	m.lastReq = points
	m.lastProf = profile
	if m.err != nil {
		return nil, m.err
	}
	return m.route, nil
}

func (m *mockProvider) Name() string {
	return m.name
}

func TestService_Request_Success(t *testing.T) {
	provider := &mockProvider{
		name: "test-provider",
		route: &Route{
			DistanceMeters:  1054320,
			DurationSeconds: 35118,
			Instructions: []Instruction{
				{Text: "Continue onto A9", DistanceMeters: 1000},
			},
		},
	}

	service := NewService(ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	points := []Coordinate{
		{Lat: 52.5170, Lon: 13.3889},
		{Lat: 50.1106, Lon: 8.6821},
		{Lat: 48.1374, Lon: 11.5755},
	}
	route, err := service.Request(context.Background(), points, ProfileBike)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.callCount != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.callCount)
	}
	if len(provider.lastReq) != 3 || provider.lastReq[1] != points[1] {
		t.Errorf("expected points forwarded in order, got %+v", provider.lastReq)
	}
	if provider.lastProf != ProfileBike {
		t.Errorf("expected profile bike, got %s", provider.lastProf)
	}
	if route.DistanceMeters != 1054320 {
		t.Errorf("expected distance 1054320, got %f", route.DistanceMeters)
	}
}

func TestService_Request_TooFewPoints(t *testing.T) {
	tests := []struct {
		name   string
		points []Coordinate
	}{
		{name: "no points", points: nil},
		{name: "one point", points: []Coordinate{{Lat: 52.5, Lon: 13.4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{name: "test-provider", route: &Route{}}
			service := NewService(ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

			_, err := service.Request(context.Background(), tt.points, ProfileCar)

			var routingErr *Error
			if !errors.As(err, &routingErr) {
				t.Fatalf("expected routing.Error, got %T", err)
			}
			if !errors.Is(err, ErrTooFewPoints) {
				t.Errorf("expected ErrTooFewPoints, got %v", routingErr.Err)
			}
			if provider.callCount != 0 {
				t.Errorf("provider must not be called, got %d calls", provider.callCount)
			}
		})
	}
}

func TestService_Request_InvalidCoordinates(t *testing.T) {
	tests := []struct {
		name   string
		points []Coordinate
	}{
		{
			name:   "latitude out of range",
			points: []Coordinate{{Lat: 91.0, Lon: 4.9}, {Lat: 52.0, Lon: 5.1}},
		},
		{
			name:   "negative latitude out of range",
			points: []Coordinate{{Lat: -91.0, Lon: 4.9}, {Lat: 52.0, Lon: 5.1}},
		},
		{
			name:   "longitude out of range on last stop",
			points: []Coordinate{{Lat: 52.0, Lon: 4.9}, {Lat: 52.0, Lon: 5.1}, {Lat: 52.0, Lon: 181.0}},
		},
		{
			name:   "negative longitude out of range",
			points: []Coordinate{{Lat: 52.0, Lon: -181.0}, {Lat: 52.0, Lon: 5.1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{name: "test-provider", route: &Route{}}
			service := NewService(ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

			_, err := service.Request(context.Background(), tt.points, ProfileCar)
			if !errors.Is(err, ErrInvalidCoordinates) {
				t.Errorf("expected ErrInvalidCoordinates, got %v", err)
			}
			if provider.callCount != 0 {
				t.Errorf("provider must not be called, got %d calls", provider.callCount)
			}
		})
	}
}

func TestService_Request_InvalidProfile(t *testing.T) {
	provider := &mockProvider{name: "test-provider", route: &Route{}}
	service := NewService(ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	_, err := service.Request(context.Background(),
		[]Coordinate{{Lat: 52.0, Lon: 4.9}, {Lat: 52.1, Lon: 5.1}}, Profile("truck"))
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
	if provider.callCount != 0 {
		t.Errorf("provider must not be called, got %d calls", provider.callCount)
	}
}

func TestService_Request_ProviderError(t *testing.T) {
	providerErr := &Error{
		Provider:   "test-provider",
		Code:       "UNAUTHORIZED",
		StatusCode: 401,
		Message:    "Route HTTP 401: Wrong credentials",
		Err:        ErrUnauthorized,
	}
	provider := &mockProvider{name: "test-provider", err: providerErr}
	service := NewService(ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	_, err := service.Request(context.Background(),
		[]Coordinate{{Lat: 52.0, Lon: 4.9}, {Lat: 52.1, Lon: 5.1}}, ProfileCar)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if provider.callCount != 1 {
		t.Errorf("expected exactly one provider call, got %d", provider.callCount)
	}
}

func TestParseProfile(t *testing.T) {
	tests := []struct {
		input   string
		want    Profile
		wantErr bool
	}{
		{input: "", want: ProfileCar},
		{input: "   ", want: ProfileCar},
		{input: "car", want: ProfileCar},
		{input: "BIKE", want: ProfileBike},
		{input: " Foot ", want: ProfileFoot},
		{input: "truck", wantErr: true},
		{input: "walk", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProfile(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownProfile) {
					t.Errorf("expected ErrUnknownProfile, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{name: "valid Berlin", coord: Coordinate{Lat: 52.5170, Lon: 13.3889}},
		{name: "valid equator", coord: Coordinate{Lat: 0, Lon: 0}},
		{name: "valid extreme lat", coord: Coordinate{Lat: 90, Lon: 0}},
		{name: "valid extreme lon", coord: Coordinate{Lat: 0, Lon: 180}},
		{name: "invalid lat too high", coord: Coordinate{Lat: 90.1, Lon: 0}, wantErr: true},
		{name: "invalid lat too low", coord: Coordinate{Lat: -90.1, Lon: 0}, wantErr: true},
		{name: "invalid lon too high", coord: Coordinate{Lat: 0, Lon: 180.1}, wantErr: true},
		{name: "invalid lon too low", coord: Coordinate{Lat: 0, Lon: -180.1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCoordinates(tt.coord)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateCoordinates() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBoundingBox_RoundTrip(t *testing.T) {
	box := BoundingBox{MinLon: 8.68, MinLat: 48.13, MaxLon: 13.39, MaxLat: 52.52}
	got := BoundingBoxFromBound(box.Bound())
	if *got != box {
		t.Errorf("expected %+v, got %+v", box, *got)
	}
}
