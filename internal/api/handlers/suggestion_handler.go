package handlers

import (
	"net/http"
	"strings"

	"github.com/caresquare/care-directory-backend/internal/application/services"
)

// SuggestionHandler handles treatment autocomplete requests
type SuggestionHandler struct {
	suggestionService *services.SuggestionService
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(suggestionService *services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

// SuggestTreatments handles GET /api/treatments/suggest?q=...
func (h *SuggestionHandler) SuggestTreatments(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	treatments, err := h.suggestionService.Suggest(r.Context(), query)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"treatments": treatments,
		"count":      len(treatments),
	})
}
