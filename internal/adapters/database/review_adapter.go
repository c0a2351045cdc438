package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
	"github.com/caresquare/care-directory-backend/internal/domain/repositories"
	"github.com/caresquare/care-directory-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/caresquare/care-directory-backend/pkg/errors"
)

const summaryReviewLimit = 50

// ReviewAdapter implements the ReviewRepository interface
type ReviewAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *postgres.Client) repositories.ReviewRepository {
	return &ReviewAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create stores a review and refreshes the provider's denormalized rating.
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	if review.ProviderID == "" {
		return apperrors.NewValidationError("provider id is required")
	}
	if review.Rating < 1 || review.Rating > 5 {
		return apperrors.NewValidationError("rating must be between 1 and 5")
	}
	if review.ID == "" {
		review.ID = uuid.New().String()
	}

	tx, err := a.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	query, args, err := a.db.Insert("reviews").Rows(goqu.Record{
		"id":          review.ID,
		"provider_id": review.ProviderID,
		"user_name":   review.User.Name,
		"rating":      review.Rating,
		"comment":     review.Comment,
		"created_at":  review.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create review", err)
	}

	// Keep the provider row's rating and review_count in step so nearby
	// results carry ratings without a join.
	refresh := `
		UPDATE providers SET
			rating = sub.avg_rating,
			review_count = sub.total,
			updated_at = NOW()
		FROM (
			SELECT COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS total
			FROM reviews WHERE provider_id = $1
		) AS sub
		WHERE providers.id = $1`
	if _, err := tx.ExecContext(ctx, refresh, review.ProviderID); err != nil {
		return apperrors.NewInternalError("failed to refresh provider rating", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit review", err)
	}

	return nil
}

// Summary returns the aggregated rating and recent reviews for a provider.
func (a *ReviewAdapter) Summary(ctx context.Context, providerID string) (*entities.ReviewSummary, error) {
	if providerID == "" {
		return nil, apperrors.NewValidationError("provider id is required")
	}

	aggQuery, aggArgs, err := a.db.Select(
		goqu.COALESCE(goqu.AVG("rating"), 0).As("average_rating"),
		goqu.COUNT(goqu.Star()).As("total_reviews"),
	).From("reviews").Where(goqu.Ex{"provider_id": providerID}).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build summary query", err)
	}

	summary := entities.ZeroReviewSummary()
	err = a.client.DB().QueryRowContext(ctx, aggQuery, aggArgs...).
		Scan(&summary.AverageRating, &summary.TotalReviews)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate reviews", err)
	}

	listQuery, listArgs, err := a.db.Select("id", "provider_id", "user_name", "rating", "comment", "created_at").
		From("reviews").
		Where(goqu.Ex{"provider_id": providerID}).
		Order(goqu.C("created_at").Desc()).
		Limit(summaryReviewLimit).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build review list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query reviews", err)
	}
	defer rows.Close()

	for rows.Next() {
		var review entities.Review
		err := rows.Scan(
			&review.ID,
			&review.ProviderID,
			&review.User.Name,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan review", err)
		}
		summary.Reviews = append(summary.Reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read reviews", err)
	}

	return &summary, nil
}
