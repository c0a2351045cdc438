package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/caresquare/care-directory-backend/internal/adapters/database"
	"github.com/caresquare/care-directory-backend/internal/adapters/search"
	"github.com/caresquare/care-directory-backend/internal/application/services"
	"github.com/caresquare/care-directory-backend/internal/domain/entities"
	"github.com/caresquare/care-directory-backend/internal/domain/providers"
	"github.com/caresquare/care-directory-backend/internal/domain/repositories"
	"github.com/caresquare/care-directory-backend/internal/infrastructure/clients/postgres"
	"github.com/caresquare/care-directory-backend/internal/infrastructure/clients/typesense"
	"github.com/caresquare/care-directory-backend/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS providers (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	kind             TEXT NOT NULL,
	address          TEXT NOT NULL DEFAULT '',
	latitude         DOUBLE PRECISION,
	longitude        DOUBLE PRECISION,
	consultation_fee DOUBLE PRECISION,
	time_slots       JSONB NOT NULL DEFAULT '[]',
	treatments       TEXT[] NOT NULL DEFAULT '{}',
	rating           DOUBLE PRECISION NOT NULL DEFAULT 0,
	review_count     INTEGER NOT NULL DEFAULT 0,
	is_active        BOOLEAN NOT NULL DEFAULT TRUE,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_providers_coords ON providers (latitude, longitude) WHERE is_active;

CREATE TABLE IF NOT EXISTS reviews (
	id          TEXT PRIMARY KEY,
	provider_id TEXT NOT NULL REFERENCES providers(id) ON DELETE CASCADE,
	user_name   TEXT NOT NULL DEFAULT '',
	rating      INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment     TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_reviews_provider ON reviews (provider_id, created_at DESC);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	log.Println("Schema ensured")

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE reviews, providers CASCADE`); err != nil {
			log.Fatalf("Failed to truncate tables: %v", err)
		}
	}

	var searchRepo repositories.ProviderSearchRepository
	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Typesense unavailable, seeding without index: %v", err)
	} else {
		if err := tsClient.InitSchema(ctx); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = search.NewTypesenseAdapter(tsClient)
	}

	providerRepo := database.NewProviderAdapter(pgClient)
	reviewRepo := database.NewReviewAdapter(pgClient)
	aggregator := services.NewReviewAggregator(reviewRepo, nil)
	providerService := services.NewProviderService(providerRepo, reviewRepo, searchRepo, aggregator, providers.SystemClock{})

	today := time.Now().Format("2 January")
	fee := 15000.0

	seedProviders := []*entities.Provider{
		{
			ID:              uuid.New().String(),
			Name:            "Dr. Amaka Eze",
			Kind:            entities.ProviderKindDoctor,
			Address:         "4 Marina Rd, Lagos Island, Lagos",
			Location:        entities.NewGeoPoint(6.4541, 3.3947),
			ConsultationFee: &fee,
			Treatments: []entities.Treatment{
				{Name: "Dermatology Consultation"},
				{Name: "Acne Treatment"},
			},
			TimeSlots: []entities.TimeSlot{
				{
					Date:           today,
					AvailableSlots: 4,
					Sessions: entities.SlotSessions{
						Morning: []string{"9:00 AM - 9:30 AM", "10:00 AM - 10:30 AM"},
						Evening: []string{"4:00 PM - 4:30 PM"},
					},
				},
			},
		},
		{
			ID:       uuid.New().String(),
			Name:     "Sunrise Family Clinic",
			Kind:     entities.ProviderKindClinic,
			Address:  "22 Allen Ave, Ikeja, Lagos",
			Location: entities.NewGeoPoint(6.6018, 3.3515),
			Treatments: []entities.Treatment{
				{Name: "General Consultation"},
				{Name: "Dental Cleaning"},
				{Name: "Vaccination"},
			},
		},
		{
			ID:      uuid.New().String(),
			Name:    "Dr. Chidi Okonkwo",
			Kind:    entities.ProviderKindDoctor,
			Address: "Address pending verification",
			Treatments: []entities.Treatment{
				{Name: "Physiotherapy"},
			},
		},
	}

	for _, p := range seedProviders {
		if err := providerService.Create(ctx, p); err != nil {
			log.Fatalf("Failed to seed provider %s: %v", p.Name, err)
		}
		log.Printf("Seeded provider %s", p.Name)
	}

	seedReviews := []*entities.Review{
		{ProviderID: seedProviders[0].ID, Rating: 5, Comment: "Very thorough and kind.", User: entities.ReviewUser{Name: "Ada"}},
		{ProviderID: seedProviders[0].ID, Rating: 4, Comment: "Short wait, clear explanations.", User: entities.ReviewUser{Name: "Tunde"}},
		{ProviderID: seedProviders[1].ID, Rating: 4, Comment: "Friendly staff.", User: entities.ReviewUser{Name: "Ngozi"}},
	}

	for _, r := range seedReviews {
		if err := providerService.SubmitReview(ctx, r); err != nil {
			log.Fatalf("Failed to seed review for %s: %v", r.ProviderID, err)
		}
	}
	log.Printf("Seeded %d reviews", len(seedReviews))

	log.Println("Seeding complete")
}
