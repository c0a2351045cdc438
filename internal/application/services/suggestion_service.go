package services

import (
	"context"
	"strings"

	"github.com/caresquare/care-directory-backend/internal/domain/repositories"
)

const maxSuggestions = 10

// SuggestionService serves treatment autocomplete
type SuggestionService struct {
	search repositories.ProviderSearchRepository
}

// NewSuggestionService creates a new suggestion service. The search
// repository may be nil when no search engine is configured; suggestions
// are then empty rather than an error.
func NewSuggestionService(search repositories.ProviderSearchRepository) *SuggestionService {
	return &SuggestionService{search: search}
}

// Suggest returns treatment names matching the partial query
func (s *SuggestionService) Suggest(ctx context.Context, query string) ([]string, error) {
	if s.search == nil || strings.TrimSpace(query) == "" {
		return []string{}, nil
	}
	return s.search.SuggestTreatments(ctx, query, maxSuggestions)
}
