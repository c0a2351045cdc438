package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
	"github.com/caresquare/care-directory-backend/internal/domain/providers"
	"github.com/caresquare/care-directory-backend/internal/domain/repositories"
	"github.com/caresquare/care-directory-backend/internal/infrastructure/observability"
	"github.com/caresquare/care-directory-backend/internal/slots"
	apperrors "github.com/caresquare/care-directory-backend/pkg/errors"
)

// ProviderSlots is a provider's upcoming availability with its badge
type ProviderSlots struct {
	Slots []entities.TimeSlot `json:"slots"`
	Badge slots.Badge         `json:"badge"`
}

// ProviderService handles provider profiles, availability management and
// review submission. Search indexing is best-effort; a provider write never
// fails because the index was unreachable.
type ProviderService struct {
	repo    repositories.ProviderRepository
	reviews repositories.ReviewRepository
	search  repositories.ProviderSearchRepository
	agg     *ReviewAggregator
	clock   providers.Clock
}

// NewProviderService creates a new provider service. The search repository
// may be nil when no search engine is configured.
func NewProviderService(
	repo repositories.ProviderRepository,
	reviews repositories.ReviewRepository,
	search repositories.ProviderSearchRepository,
	agg *ReviewAggregator,
	clock providers.Clock,
) *ProviderService {
	if clock == nil {
		clock = providers.SystemClock{}
	}
	return &ProviderService{
		repo:    repo,
		reviews: reviews,
		search:  search,
		agg:     agg,
		clock:   clock,
	}
}

// Create stores a new provider and indexes it
func (s *ProviderService) Create(ctx context.Context, provider *entities.Provider) error {
	if provider.Name == "" {
		return apperrors.NewValidationError("provider name is required")
	}
	if provider.Kind != entities.ProviderKindDoctor && provider.Kind != entities.ProviderKindClinic {
		return apperrors.NewValidationError("provider kind must be doctor or clinic")
	}

	if provider.ID == "" {
		provider.ID = uuid.New().String()
	}
	now := s.clock.Now().UTC()
	provider.IsActive = true
	provider.CreatedAt = now
	provider.UpdatedAt = now

	if err := s.repo.Create(ctx, provider); err != nil {
		return err
	}

	s.index(ctx, provider)
	return nil
}

// GetByID returns a provider profile
func (s *ProviderService) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("provider id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// UpcomingSlots returns the provider's today-or-future slots sorted
// chronologically, with the availability badge. The badge is computed from
// the full slot list, so a provider whose only slots are in the past is
// distinguished from one with no slots at all.
func (s *ProviderService) UpcomingSlots(ctx context.Context, id string) (*ProviderSlots, error) {
	provider, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	upcoming := slots.SortByDate(slots.Upcoming(provider.TimeSlots, now), now.Year(), now.Location())

	return &ProviderSlots{
		Slots: upcoming,
		Badge: slots.AvailabilityBadge(provider.TimeSlots, now),
	}, nil
}

// ReplaceTimeSlots overwrites the provider's slot list
func (s *ProviderService) ReplaceTimeSlots(ctx context.Context, id string, list []entities.TimeSlot) error {
	if id == "" {
		return apperrors.NewValidationError("provider id is required")
	}
	for _, slot := range list {
		if slot.Date == "" {
			return apperrors.NewValidationError("slot date is required")
		}
		if slot.AvailableSlots < 0 {
			return apperrors.NewValidationError("available slots cannot be negative")
		}
	}
	return s.repo.UpdateTimeSlots(ctx, id, list)
}

// ReviewSummary returns the aggregated reviews for a provider
func (s *ProviderService) ReviewSummary(ctx context.Context, id string) (*entities.ReviewSummary, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("provider id is required")
	}
	return s.reviews.Summary(ctx, id)
}

// SubmitReview stores a review, invalidates the memoized summary and
// re-indexes the provider with its refreshed rating.
func (s *ProviderService) SubmitReview(ctx context.Context, review *entities.Review) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = s.clock.Now().UTC()
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return err
	}

	if s.agg != nil {
		s.agg.Invalidate(review.ProviderID)
	}

	if provider, err := s.repo.GetByID(ctx, review.ProviderID); err == nil {
		s.index(ctx, provider)
	}

	return nil
}

func (s *ProviderService) index(ctx context.Context, provider *entities.Provider) {
	if s.search == nil {
		return
	}
	if err := s.search.Index(ctx, provider); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("provider_id", provider.ID).
			Msg("failed to index provider")
	}
}
