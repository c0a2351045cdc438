package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caresquare/care-directory-backend/internal/adapters/cache"
	"github.com/caresquare/care-directory-backend/internal/adapters/database"
	"github.com/caresquare/care-directory-backend/internal/adapters/providers/geolocation"
	"github.com/caresquare/care-directory-backend/internal/adapters/search"
	"github.com/caresquare/care-directory-backend/internal/api/handlers"
	"github.com/caresquare/care-directory-backend/internal/api/routes"
	"github.com/caresquare/care-directory-backend/internal/application/services"
	"github.com/caresquare/care-directory-backend/internal/domain/providers"
	"github.com/caresquare/care-directory-backend/internal/domain/repositories"
	"github.com/caresquare/care-directory-backend/internal/infrastructure/clients/postgres"
	"github.com/caresquare/care-directory-backend/internal/infrastructure/clients/redis"
	"github.com/caresquare/care-directory-backend/internal/infrastructure/clients/typesense"
	"github.com/caresquare/care-directory-backend/internal/infrastructure/observability"
	"github.com/caresquare/care-directory-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client; sessions fall back to the in-memory store
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client; suggestions degrade to empty without it
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
		typesenseClient = nil
	} else {
		log.Println("Typesense client initialized successfully")
	}

	clock := providers.SystemClock{}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	} else {
		cacheProvider = cache.NewMemoryAdapter(clock)
		log.Println("Warning: session store running in-memory (Redis unavailable)")
	}

	// Initialize adapters
	providerAdapter := database.NewProviderAdapter(pgClient)
	reviewAdapter := database.NewReviewAdapter(pgClient)

	var searchRepo repositories.ProviderSearchRepository
	if typesenseClient != nil {
		if err := typesenseClient.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = search.NewTypesenseAdapter(typesenseClient)
	}

	var geolocationProvider providers.GeolocationProvider
	switch cfg.Geolocation.Provider {
	case "google":
		if cfg.Geolocation.APIKey == "" {
			log.Println("Warning: GEOLOCATION_API_KEY is not set; using mock geolocation provider")
			geolocationProvider = geolocation.NewMockGeolocationProvider()
		} else {
			geolocationProvider = geolocation.NewGoogleGeolocationProvider(cfg.Geolocation.APIKey, cacheProvider)
		}
	default:
		geolocationProvider = geolocation.NewMockGeolocationProvider()
	}

	// Initialize services
	sessionService := services.NewSessionService(cacheProvider, clock, cfg.Discovery.SessionTTL)
	reviewAggregator := services.NewReviewAggregator(reviewAdapter, metrics)
	discoveryService := services.NewDiscoveryService(
		geolocationProvider,
		providerAdapter,
		reviewAggregator,
		sessionService,
		clock,
		cfg.Discovery.DefaultRadiusKm,
	)
	providerService := services.NewProviderService(providerAdapter, reviewAdapter, searchRepo, reviewAggregator, clock)
	suggestionService := services.NewSuggestionService(searchRepo)

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(discoveryService, sessionService)
	providerHandler := handlers.NewProviderHandler(providerService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)

	// Set up router
	router := routes.NewRouter(searchHandler, providerHandler, suggestionHandler, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}
