package routes

import (
	"net/http"

	"github.com/caresquare/care-directory-backend/internal/api/handlers"
	"github.com/caresquare/care-directory-backend/internal/api/middleware"
	"github.com/caresquare/care-directory-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler     *handlers.SearchHandler
	providerHandler   *handlers.ProviderHandler
	suggestionHandler *handlers.SuggestionHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	searchHandler *handlers.SearchHandler,
	providerHandler *handlers.ProviderHandler,
	suggestionHandler *handlers.SuggestionHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		searchHandler:     searchHandler,
		providerHandler:   providerHandler,
		suggestionHandler: suggestionHandler,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Geocoding and nearby search
	r.mux.HandleFunc("GET /api/geocode", r.searchHandler.Geocode)
	r.mux.HandleFunc("GET /api/search/nearby", r.searchHandler.SearchNearby)

	// Session snapshot restore/clear
	r.mux.HandleFunc("GET /api/search/session", r.searchHandler.GetSession)
	r.mux.HandleFunc("DELETE /api/search/session", r.searchHandler.ClearSession)

	// Provider endpoints
	r.mux.HandleFunc("POST /api/providers", r.providerHandler.CreateProvider)
	r.mux.HandleFunc("GET /api/providers/{id}", r.providerHandler.GetProvider)
	r.mux.HandleFunc("GET /api/providers/{id}/slots", r.providerHandler.GetSlots)
	r.mux.HandleFunc("POST /api/providers/{id}/timeslots", r.providerHandler.ReplaceTimeSlots)
	r.mux.HandleFunc("GET /api/providers/{id}/reviews", r.providerHandler.GetReviews)
	r.mux.HandleFunc("POST /api/providers/{id}/reviews", r.providerHandler.SubmitReview)

	// Treatment autocomplete
	r.mux.HandleFunc("GET /api/treatments/suggest", r.suggestionHandler.SuggestTreatments)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so error responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
