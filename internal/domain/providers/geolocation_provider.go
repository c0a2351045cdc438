package providers

import (
	"context"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
)

// GeolocationProvider defines the interface for geocoding services
type GeolocationProvider interface {
	// Geocode converts a free-text place name to coordinates
	Geocode(ctx context.Context, place string) (*entities.Location, error)

	// ReverseGeocode converts coordinates to a display address
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}
