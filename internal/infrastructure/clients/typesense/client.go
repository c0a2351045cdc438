package typesense

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/caresquare/care-directory-backend/pkg/config"
	"github.com/caresquare/care-directory-backend/pkg/retry"
)

const (
	// ProvidersCollection indexes doctor/clinic profiles for name search
	ProvidersCollection = "providers"
	// TreatmentsCollection backs the treatment autocomplete
	TreatmentsCollection = "treatments"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	// Test connection with retry
	retryConfig := retry.DefaultConfig()
	err := retry.DoWithLog(
		context.Background(),
		retryConfig,
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Printf("Typesense connection attempt %d failed: %v. Retrying in %v...", attempt, err, nextDelay)
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Println("Successfully connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the provider and treatment collections exist
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	existing := make(map[string]bool, len(collections))
	for _, col := range collections {
		existing[col.Name] = true
	}

	if !existing[ProvidersCollection] {
		schema := &api.CollectionSchema{
			Name: ProvidersCollection,
			Fields: []api.Field{
				{Name: "id", Type: "string"},
				{Name: "name", Type: "string"},
				{Name: "kind", Type: "string", Facet: pointer.True()},
				{Name: "location", Type: "geopoint", Optional: pointer.True()},
				{Name: "rating", Type: "float", Facet: pointer.True()},
				{Name: "review_count", Type: "int32"},
				{Name: "treatments", Type: "string[]", Optional: pointer.True()},
				{Name: "is_active", Type: "bool"},
				{Name: "created_at", Type: "int64"},
			},
			DefaultSortingField: pointer.String("created_at"),
		}
		if _, err := c.client.Collections().Create(ctx, schema); err != nil {
			return fmt.Errorf("failed to create providers collection: %w", err)
		}
		log.Println("Created Typesense collection 'providers'")
	}

	if !existing[TreatmentsCollection] {
		schema := &api.CollectionSchema{
			Name: TreatmentsCollection,
			Fields: []api.Field{
				{Name: "id", Type: "string"},
				{Name: "name", Type: "string"},
				{Name: "popularity", Type: "int32"},
			},
			DefaultSortingField: pointer.String("popularity"),
		}
		if _, err := c.client.Collections().Create(ctx, schema); err != nil {
			return fmt.Errorf("failed to create treatments collection: %w", err)
		}
		log.Println("Created Typesense collection 'treatments'")
	}

	return nil
}
