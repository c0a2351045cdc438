package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/caresquare/care-directory-backend/internal/application/services"
	"github.com/caresquare/care-directory-backend/internal/domain/entities"
)

const sessionHeader = "X-Session-ID"

// SearchHandler handles geocoding, nearby search and session snapshots
type SearchHandler struct {
	discovery *services.DiscoveryService
	sessions  *services.SessionService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(discovery *services.DiscoveryService, sessions *services.SessionService) *SearchHandler {
	return &SearchHandler{discovery: discovery, sessions: sessions}
}

// Geocode handles GET /api/geocode?place=...
func (h *SearchHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	place := strings.TrimSpace(r.URL.Query().Get("place"))
	if place == "" {
		respondWithError(w, http.StatusBadRequest, "place parameter is required")
		return
	}

	coords, err := h.discovery.Geocode(r.Context(), place)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"place": place,
		"lat":   coords.Latitude,
		"lng":   coords.Longitude,
	})
}

// SearchNearby handles GET /api/search/nearby
func (h *SearchHandler) SearchNearby(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := services.DiscoveryParams{
		SessionID: r.Header.Get(sessionHeader),
		Place:     strings.TrimSpace(query.Get("place")),
		Service:   strings.TrimSpace(query.Get("service")),
	}

	latStr := strings.TrimSpace(query.Get("lat"))
	lngStr := strings.TrimSpace(query.Get("lng"))
	if latStr != "" || lngStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid lat parameter")
			return
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid lng parameter")
			return
		}
		params.Coords = &entities.Location{Latitude: lat, Longitude: lng}
	}

	if minRating := strings.TrimSpace(query.Get("min_rating")); minRating != "" {
		rating, err := strconv.Atoi(minRating)
		if err != nil || rating < 0 || rating > 5 {
			respondWithError(w, http.StatusBadRequest, "min_rating must be an integer between 0 and 5")
			return
		}
		params.MinRating = rating
	}

	if h.sessions != nil && params.SessionID != "" {
		if err := h.sessions.Begin(r.Context(), params.SessionID); err != nil {
			respondWithAppError(w, err)
			return
		}
	}

	result, err := h.discovery.Search(r.Context(), params)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors":      result.Candidates,
		"count":        len(result.Candidates),
		"reviews":      result.Summaries,
		"origin":       result.Origin,
		"searchFailed": result.SearchFailed,
	})
}

// GetSession handles GET /api/search/session
func (h *SearchHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "X-Session-ID header is required")
		return
	}

	if err := h.sessions.Begin(r.Context(), sessionID); err != nil {
		respondWithAppError(w, err)
		return
	}

	snapshot, err := h.sessions.Load(r.Context(), sessionID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if snapshot == nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"restored": false,
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"restored": true,
		"snapshot": snapshot,
	})
}

// ClearSession handles DELETE /api/search/session
func (h *SearchHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "X-Session-ID header is required")
		return
	}

	if err := h.sessions.Clear(r.Context(), sessionID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}
