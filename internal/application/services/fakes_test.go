package services_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
	"github.com/caresquare/care-directory-backend/internal/domain/repositories"
)

type fakeGeolocation struct {
	locations map[string]entities.Location
	err       error
}

func (f *fakeGeolocation) Geocode(ctx context.Context, place string) (*entities.Location, error) {
	if f.err != nil {
		return nil, f.err
	}
	if loc, ok := f.locations[place]; ok {
		coords := loc
		return &coords, nil
	}
	return nil, fmt.Errorf("no results for place")
}

func (f *fakeGeolocation) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	return fmt.Sprintf("%f, %f", lat, lng), nil
}

type fakeProviderRepo struct {
	providers []*entities.Provider
	nearbyErr error

	lastNearby repositories.NearbyParams
	slots      map[string][]entities.TimeSlot
}

func (f *fakeProviderRepo) Create(ctx context.Context, p *entities.Provider) error {
	f.providers = append(f.providers, p)
	return nil
}

func (f *fakeProviderRepo) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	for _, p := range f.providers {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("provider with id %s not found", id)
}

func (f *fakeProviderRepo) Update(ctx context.Context, p *entities.Provider) error {
	for i, existing := range f.providers {
		if existing.ID == p.ID {
			f.providers[i] = p
			return nil
		}
	}
	return fmt.Errorf("provider with id %s not found", p.ID)
}

func (f *fakeProviderRepo) UpdateTimeSlots(ctx context.Context, id string, list []entities.TimeSlot) error {
	if f.slots == nil {
		f.slots = make(map[string][]entities.TimeSlot)
	}
	f.slots[id] = list
	return nil
}

func (f *fakeProviderRepo) Nearby(ctx context.Context, params repositories.NearbyParams) ([]*entities.Provider, error) {
	f.lastNearby = params
	if f.nearbyErr != nil {
		return nil, f.nearbyErr
	}
	return f.providers, nil
}

type fakeReviewRepo struct {
	mu        sync.Mutex
	summaries map[string]entities.ReviewSummary
	failIDs   map[string]bool
	calls     map[string]int
	created   []*entities.Review
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *entities.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, review)
	return nil
}

func (f *fakeReviewRepo) Summary(ctx context.Context, providerID string) (*entities.ReviewSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[providerID]++

	if f.failIDs[providerID] {
		return nil, fmt.Errorf("review store unavailable")
	}
	if summary, ok := f.summaries[providerID]; ok {
		return &summary, nil
	}
	empty := entities.ZeroReviewSummary()
	return &empty, nil
}

func (f *fakeReviewRepo) callCount(providerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[providerID]
}

func providerAt(id string, lat, lng float64) *entities.Provider {
	return &entities.Provider{
		ID:       id,
		Name:     "Dr " + id,
		Kind:     entities.ProviderKindDoctor,
		Location: entities.NewGeoPoint(lat, lng),
		IsActive: true,
	}
}

func providerWithoutCoords(id string) *entities.Provider {
	return &entities.Provider{
		ID:       id,
		Name:     "Dr " + id,
		Kind:     entities.ProviderKindDoctor,
		IsActive: true,
	}
}
