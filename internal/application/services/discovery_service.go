package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
	"github.com/caresquare/care-directory-backend/internal/domain/providers"
	"github.com/caresquare/care-directory-backend/internal/domain/repositories"
	"github.com/caresquare/care-directory-backend/internal/infrastructure/observability"
	"github.com/caresquare/care-directory-backend/internal/slots"
	apperrors "github.com/caresquare/care-directory-backend/pkg/errors"
)

// DiscoveryParams describes one nearby-provider search
type DiscoveryParams struct {
	SessionID string
	// Coords, when set, wins over Place; Place is geocoded otherwise.
	Coords    *entities.Location
	Place     string
	Service   string
	MinRating int
	RadiusKm  float64
	Limit     int
}

// DiscoveryResult is the outcome of a search. SearchFailed marks a nearby
// query that errored; candidates are then empty rather than absent so the
// caller renders an empty state instead of hanging on a load that will
// never settle.
type DiscoveryResult struct {
	Candidates   []entities.RankedCandidate        `json:"doctors"`
	Summaries    map[string]entities.ReviewSummary `json:"reviews"`
	Origin       entities.Location                 `json:"origin"`
	SearchFailed bool                              `json:"searchFailed"`
}

// DiscoveryService runs the nearby-search pipeline: resolve the origin,
// query candidates, annotate distances, rank, badge availability, fan out
// review fetches, apply the star filter, and persist the session snapshot.
type DiscoveryService struct {
	geolocation providers.GeolocationProvider
	repo        repositories.ProviderRepository
	reviews     *ReviewAggregator
	sessions    *SessionService
	clock       providers.Clock
	radiusKm    float64
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(
	geolocation providers.GeolocationProvider,
	repo repositories.ProviderRepository,
	reviews *ReviewAggregator,
	sessions *SessionService,
	clock providers.Clock,
	radiusKm float64,
) *DiscoveryService {
	if clock == nil {
		clock = providers.SystemClock{}
	}
	if radiusKm <= 0 {
		radiusKm = 25
	}
	return &DiscoveryService{
		geolocation: geolocation,
		repo:        repo,
		reviews:     reviews,
		sessions:    sessions,
		clock:       clock,
		radiusKm:    radiusKm,
	}
}

// Geocode resolves a free-text place to coordinates
func (s *DiscoveryService) Geocode(ctx context.Context, place string) (*entities.Location, error) {
	loc, err := s.geolocation.Geocode(ctx, place)
	if err != nil {
		return nil, apperrors.NewExternalError("could not find that location", err)
	}
	return loc, nil
}

// Search runs one discovery search. Geocoding failure aborts the pipeline
// with an EXTERNAL error; a failed nearby query degrades to an empty result
// with SearchFailed set.
func (s *DiscoveryService) Search(ctx context.Context, params DiscoveryParams) (*DiscoveryResult, error) {
	ctx, span := observability.StartSpan(ctx, "discovery.search")
	defer span.End()

	origin, err := s.resolveOrigin(ctx, params)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	observability.SetSpanAttributes(span,
		attribute.Float64("search.lat", origin.Latitude),
		attribute.Float64("search.lng", origin.Longitude),
		attribute.String("search.service", params.Service),
	)

	if params.SessionID != "" {
		if err := s.sessions.Clear(ctx, params.SessionID); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to clear previous snapshot")
		}
	}

	generation := s.reviews.BeginSearch()

	providerList, err := s.repo.Nearby(ctx, repositories.NearbyParams{
		Latitude:  origin.Latitude,
		Longitude: origin.Longitude,
		RadiusKm:  s.radiusKm,
		Service:   params.Service,
		Limit:     params.Limit,
	})
	if err != nil {
		observability.RecordError(span, err)
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("nearby provider query failed")
		return &DiscoveryResult{
			Candidates:   []entities.RankedCandidate{},
			Summaries:    map[string]entities.ReviewSummary{},
			Origin:       *origin,
			SearchFailed: true,
		}, nil
	}

	candidates := RankByDistance(providerList, *origin)

	now := s.clock.Now()
	for i := range candidates {
		candidates[i].Availability = string(slots.AvailabilityBadge(candidates[i].TimeSlots, now))
		candidates[i].TimeSlots = slots.SortByDate(
			slots.Upcoming(candidates[i].TimeSlots, now),
			now.Year(), now.Location(),
		)
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}
	summaries := s.reviews.FetchAll(ctx, generation, ids)

	candidates = ApplyStarFilter(candidates, summaries, params.MinRating)

	if params.SessionID != "" && len(candidates) > 0 {
		snapshot := entities.SearchSnapshot{
			Candidates:      candidates,
			Coords:          origin,
			SelectedService: params.Service,
			ManualPlace:     params.Place,
			StarFilter:      params.MinRating,
		}
		if err := s.sessions.Save(ctx, params.SessionID, snapshot); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to save search snapshot")
		}
	}

	return &DiscoveryResult{
		Candidates:   candidates,
		Summaries:    summaries,
		Origin:       *origin,
		SearchFailed: false,
	}, nil
}

func (s *DiscoveryService) resolveOrigin(ctx context.Context, params DiscoveryParams) (*entities.Location, error) {
	if params.Coords != nil {
		coords := *params.Coords
		return &coords, nil
	}
	if params.Place == "" {
		return nil, apperrors.NewValidationError("either coordinates or a place name is required")
	}
	return s.Geocode(ctx, params.Place)
}
