package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresquare/care-directory-backend/internal/adapters/cache"
	"github.com/caresquare/care-directory-backend/internal/api/handlers"
	"github.com/caresquare/care-directory-backend/internal/application/services"
	"github.com/caresquare/care-directory-backend/internal/domain/entities"
	"github.com/caresquare/care-directory-backend/internal/domain/providers"
	"github.com/caresquare/care-directory-backend/internal/domain/repositories"
)

type stubGeolocation struct {
	loc *entities.Location
	err error
}

func (s *stubGeolocation) Geocode(ctx context.Context, place string) (*entities.Location, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.loc, nil
}

func (s *stubGeolocation) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	return "", nil
}

type stubProviderRepo struct {
	providers []*entities.Provider
	nearbyErr error
	slots     map[string][]entities.TimeSlot
}

func (s *stubProviderRepo) Create(ctx context.Context, p *entities.Provider) error { return nil }
func (s *stubProviderRepo) Update(ctx context.Context, p *entities.Provider) error { return nil }
func (s *stubProviderRepo) UpdateTimeSlots(ctx context.Context, id string, list []entities.TimeSlot) error {
	if s.slots == nil {
		s.slots = make(map[string][]entities.TimeSlot)
	}
	s.slots[id] = list
	return nil
}

func (s *stubProviderRepo) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	for _, p := range s.providers {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (s *stubProviderRepo) Nearby(ctx context.Context, params repositories.NearbyParams) ([]*entities.Provider, error) {
	if s.nearbyErr != nil {
		return nil, s.nearbyErr
	}
	return s.providers, nil
}

type stubReviewRepo struct{}

func (stubReviewRepo) Create(ctx context.Context, review *entities.Review) error { return nil }
func (stubReviewRepo) Summary(ctx context.Context, providerID string) (*entities.ReviewSummary, error) {
	return &entities.ReviewSummary{AverageRating: 4, TotalReviews: 2, Reviews: []entities.Review{}}, nil
}

func newSearchFixture(geo *stubGeolocation, repo *stubProviderRepo) (*handlers.SearchHandler, *services.SessionService) {
	clock := providers.FixedClock{Instant: time.Date(2026, time.June, 10, 9, 0, 0, 0, time.UTC)}
	store := cache.NewMemoryAdapter(clock)
	sessions := services.NewSessionService(store, clock, 24*time.Hour)
	agg := services.NewReviewAggregator(stubReviewRepo{}, nil)
	discovery := services.NewDiscoveryService(geo, repo, agg, sessions, clock, 25)
	return handlers.NewSearchHandler(discovery, sessions), sessions
}

func TestSearchHandler_Geocode(t *testing.T) {
	handler, _ := newSearchFixture(
		&stubGeolocation{loc: &entities.Location{Latitude: 6.5, Longitude: 3.4}},
		&stubProviderRepo{},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/geocode?place=Lagos", nil)
	rec := httptest.NewRecorder()
	handler.Geocode(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 6.5, body["lat"])
	assert.Equal(t, 3.4, body["lng"])
}

func TestSearchHandler_GeocodeMissingPlace(t *testing.T) {
	handler, _ := newSearchFixture(&stubGeolocation{}, &stubProviderRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/geocode", nil)
	rec := httptest.NewRecorder()
	handler.Geocode(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandler_GeocodeFailure(t *testing.T) {
	handler, _ := newSearchFixture(
		&stubGeolocation{err: fmt.Errorf("upstream down")},
		&stubProviderRepo{},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/geocode?place=nowhere", nil)
	rec := httptest.NewRecorder()
	handler.Geocode(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestSearchHandler_SearchNearby(t *testing.T) {
	repo := &stubProviderRepo{providers: []*entities.Provider{
		{ID: "p1", Name: "Dr One", Kind: entities.ProviderKindDoctor, Location: entities.NewGeoPoint(6.53, 3.38)},
	}}
	handler, _ := newSearchFixture(&stubGeolocation{}, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/search/nearby?lat=6.5244&lng=3.3792", nil)
	rec := httptest.NewRecorder()
	handler.SearchNearby(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Doctors      []entities.RankedCandidate `json:"doctors"`
		Count        int                        `json:"count"`
		SearchFailed bool                       `json:"searchFailed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.False(t, body.SearchFailed)
	require.Len(t, body.Doctors, 1)
	assert.NotNil(t, body.Doctors[0].Distance)
}

func TestSearchHandler_SearchNearbyInvalidLat(t *testing.T) {
	handler, _ := newSearchFixture(&stubGeolocation{}, &stubProviderRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/search/nearby?lat=abc&lng=3.3", nil)
	rec := httptest.NewRecorder()
	handler.SearchNearby(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandler_SearchNearbyInvalidMinRating(t *testing.T) {
	handler, _ := newSearchFixture(&stubGeolocation{}, &stubProviderRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/search/nearby?lat=6.5&lng=3.3&min_rating=9", nil)
	rec := httptest.NewRecorder()
	handler.SearchNearby(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandler_SearchNearbyFailureFlag(t *testing.T) {
	handler, _ := newSearchFixture(&stubGeolocation{}, &stubProviderRepo{nearbyErr: fmt.Errorf("db down")})

	req := httptest.NewRequest(http.MethodGet, "/api/search/nearby?lat=6.5&lng=3.3", nil)
	rec := httptest.NewRecorder()
	handler.SearchNearby(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count        int  `json:"count"`
		SearchFailed bool `json:"searchFailed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.SearchFailed)
	assert.Equal(t, 0, body.Count)
}

func TestSearchHandler_SessionRoundTrip(t *testing.T) {
	repo := &stubProviderRepo{providers: []*entities.Provider{
		{ID: "p1", Name: "Dr One", Kind: entities.ProviderKindDoctor, Location: entities.NewGeoPoint(6.53, 3.38)},
	}}
	handler, _ := newSearchFixture(&stubGeolocation{}, repo)

	search := httptest.NewRequest(http.MethodGet, "/api/search/nearby?lat=6.5244&lng=3.3792", nil)
	search.Header.Set("X-Session-ID", "sess-1")
	rec := httptest.NewRecorder()
	handler.SearchNearby(rec, search)
	require.Equal(t, http.StatusOK, rec.Code)

	restore := httptest.NewRequest(http.MethodGet, "/api/search/session", nil)
	restore.Header.Set("X-Session-ID", "sess-1")
	rec = httptest.NewRecorder()
	handler.GetSession(rec, restore)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Restored bool                     `json:"restored"`
		Snapshot *entities.SearchSnapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Restored)
	require.NotNil(t, body.Snapshot)
	assert.Len(t, body.Snapshot.Candidates, 1)

	clearReq := httptest.NewRequest(http.MethodDelete, "/api/search/session", nil)
	clearReq.Header.Set("X-Session-ID", "sess-1")
	rec = httptest.NewRecorder()
	handler.ClearSession(rec, clearReq)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.GetSession(rec, restore)
	require.Equal(t, http.StatusOK, rec.Code)
	body.Snapshot = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Restored)
}

func TestSearchHandler_SessionRequiresHeader(t *testing.T) {
	handler, _ := newSearchFixture(&stubGeolocation{}, &stubProviderRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/search/session", nil)
	rec := httptest.NewRecorder()
	handler.GetSession(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/search/session", nil)
	rec = httptest.NewRecorder()
	handler.ClearSession(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
