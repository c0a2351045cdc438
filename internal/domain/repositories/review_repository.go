package repositories

import (
	"context"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
)

// ReviewRepository defines data access for provider reviews
type ReviewRepository interface {
	Create(ctx context.Context, review *entities.Review) error
	Summary(ctx context.Context, providerID string) (*entities.ReviewSummary, error)
}
