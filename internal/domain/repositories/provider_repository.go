package repositories

import (
	"context"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
)

// NearbyParams describes a nearby-provider query
type NearbyParams struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Service   string
	Limit     int
}

// ProviderRepository defines data access for providers
type ProviderRepository interface {
	Create(ctx context.Context, provider *entities.Provider) error
	GetByID(ctx context.Context, id string) (*entities.Provider, error)
	Update(ctx context.Context, provider *entities.Provider) error
	UpdateTimeSlots(ctx context.Context, id string, slots []entities.TimeSlot) error
	Nearby(ctx context.Context, params NearbyParams) ([]*entities.Provider, error)
}

// ProviderSearchRepository defines search-engine access for providers and
// treatment suggestions
type ProviderSearchRepository interface {
	Index(ctx context.Context, provider *entities.Provider) error
	Delete(ctx context.Context, id string) error
	SuggestTreatments(ctx context.Context, query string, limit int) ([]string, error)
}
