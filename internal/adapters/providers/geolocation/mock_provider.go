package geolocation

import (
	"context"
	"fmt"
	"strings"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
	"github.com/caresquare/care-directory-backend/internal/domain/providers"
)

// MockGeolocationProvider implements a mock geolocation provider for
// development and testing
type MockGeolocationProvider struct{}

// NewMockGeolocationProvider creates a new mock geolocation provider
func NewMockGeolocationProvider() providers.GeolocationProvider {
	return &MockGeolocationProvider{}
}

// Geocode converts a place name to coordinates (mock implementation)
func (m *MockGeolocationProvider) Geocode(ctx context.Context, place string) (*entities.Location, error) {
	mockCoordinates := map[string]entities.Location{
		"New York": {Latitude: 40.7128, Longitude: -74.0060},
		"Chicago":  {Latitude: 41.8781, Longitude: -87.6298},
		"Lagos":    {Latitude: 6.5244, Longitude: 3.3792},
		"Abuja":    {Latitude: 9.0765, Longitude: 7.3986},
		"Mumbai":   {Latitude: 19.0760, Longitude: 72.8777},
		"Delhi":    {Latitude: 28.7041, Longitude: 77.1025},
	}

	for city, loc := range mockCoordinates {
		if strings.Contains(strings.ToLower(place), strings.ToLower(city)) {
			coords := loc
			return &coords, nil
		}
	}

	return nil, fmt.Errorf("no results for place")
}

// ReverseGeocode converts coordinates to an address (mock implementation)
func (m *MockGeolocationProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	return fmt.Sprintf("%f, %f", lat, lng), nil
}
