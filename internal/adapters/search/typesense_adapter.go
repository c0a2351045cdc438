package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
	"github.com/caresquare/care-directory-backend/internal/domain/repositories"
	tsclient "github.com/caresquare/care-directory-backend/internal/infrastructure/clients/typesense"
	apperrors "github.com/caresquare/care-directory-backend/pkg/errors"
)

const defaultSuggestionLimit = 10

// TypesenseAdapter implements provider indexing and treatment suggestions
// using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements ProviderSearchRepository
var _ repositories.ProviderSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// Index upserts a provider document, and upserts each of its treatments into
// the suggestion collection.
func (a *TypesenseAdapter) Index(ctx context.Context, provider *entities.Provider) error {
	document := map[string]interface{}{
		"id":           provider.ID,
		"name":         provider.Name,
		"kind":         string(provider.Kind),
		"rating":       provider.Rating,
		"review_count": provider.ReviewCount,
		"is_active":    provider.IsActive,
		"created_at":   provider.CreatedAt.Unix(),
	}

	if loc, ok := provider.Location.LatLng(); ok {
		document["location"] = []float64{loc.Latitude, loc.Longitude}
	}

	if len(provider.Treatments) > 0 {
		names := make([]string, 0, len(provider.Treatments))
		for _, t := range provider.Treatments {
			names = append(names, t.Name)
		}
		document["treatments"] = names
	}

	_, err := a.client.Client().Collection(tsclient.ProvidersCollection).Documents().Upsert(ctx, document)
	if err != nil {
		return apperrors.NewExternalError("failed to index provider", err)
	}

	for _, t := range provider.Treatments {
		if err := a.upsertTreatment(ctx, t.Name); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes a provider from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.ProvidersCollection).Document(id).Delete(ctx)
	if err != nil {
		return apperrors.NewExternalError("failed to delete provider from index", err)
	}
	return nil
}

// SuggestTreatments returns treatment names matching a partial query, most
// popular first.
func (a *TypesenseAdapter) SuggestTreatments(ctx context.Context, query string, limit int) ([]string, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(trimmed),
		QueryBy:  pointer.String("name"),
		SortBy:   pointer.String("popularity:desc"),
		PerPage:  pointer.Int(limit),
		Prefix:   pointer.String("true"),
		NumTypos: pointer.String("1"),
	}

	result, err := a.client.Client().Collection(tsclient.TreatmentsCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to search treatments", err)
	}

	suggestions := []string{}
	if result.Hits == nil {
		return suggestions, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document
		if name, ok := doc["name"].(string); ok && name != "" {
			suggestions = append(suggestions, name)
		}
	}

	return suggestions, nil
}

func (a *TypesenseAdapter) upsertTreatment(ctx context.Context, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil
	}

	document := map[string]interface{}{
		"id":         treatmentDocID(trimmed),
		"name":       trimmed,
		"popularity": 0,
	}

	_, err := a.client.Client().Collection(tsclient.TreatmentsCollection).Documents().Upsert(ctx, document)
	if err != nil {
		return apperrors.NewExternalError("failed to index treatment", err)
	}
	return nil
}

func treatmentDocID(name string) string {
	slug := strings.ToLower(name)
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	return fmt.Sprintf("treatment-%s", strings.Trim(slug, "-"))
}
