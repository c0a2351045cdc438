package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
	"github.com/caresquare/care-directory-backend/internal/domain/repositories"
	"github.com/caresquare/care-directory-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/caresquare/care-directory-backend/pkg/errors"
)

const defaultNearbyLimit = 50

var providerColumns = []interface{}{
	"id", "name", "kind", "address", "latitude", "longitude",
	"consultation_fee", "time_slots", "treatments", "rating",
	"review_count", "is_active", "created_at", "updated_at",
}

// ProviderAdapter implements the ProviderRepository interface
type ProviderAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProviderAdapter creates a new provider adapter
func NewProviderAdapter(client *postgres.Client) repositories.ProviderRepository {
	return &ProviderAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new provider
func (a *ProviderAdapter) Create(ctx context.Context, provider *entities.Provider) error {
	record, err := providerRecord(provider)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	query, args, err := a.db.Insert("providers").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create provider", err)
	}

	return nil
}

// GetByID retrieves a provider by ID
func (a *ProviderAdapter) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	query, args, err := a.db.Select(providerColumns...).
		From("providers").
		Where(goqu.Ex{"id": id, "is_active": true}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	provider, err := scanProvider(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get provider", err)
	}

	return provider, nil
}

// Update updates a provider
func (a *ProviderAdapter) Update(ctx context.Context, provider *entities.Provider) error {
	record, err := providerRecord(provider)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	delete(record, "id")
	delete(record, "created_at")

	query, args, err := a.db.Update("providers").
		Set(record).
		Where(goqu.Ex{"id": provider.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update provider", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", provider.ID))
	}

	return nil
}

// UpdateTimeSlots replaces a provider's slot list
func (a *ProviderAdapter) UpdateTimeSlots(ctx context.Context, id string, slots []entities.TimeSlot) error {
	payload, err := json.Marshal(slots)
	if err != nil {
		return apperrors.NewValidationError("failed to encode time slots")
	}

	query, args, err := a.db.Update("providers").
		Set(goqu.Record{
			"time_slots": payload,
			"updated_at": goqu.L("NOW()"),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update time slots", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", id))
	}

	return nil
}

// Nearby returns active providers inside a bounding box around the search
// origin, plus providers without coordinates (they rank last with unknown
// distance). The box is a coarse prefilter; exact distances are computed by
// the ranking layer.
func (a *ProviderAdapter) Nearby(ctx context.Context, params repositories.NearbyParams) ([]*entities.Provider, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultNearbyLimit
	}

	radius := params.RadiusKm
	if radius <= 0 {
		radius = 25
	}

	// One degree of latitude is ~111 km; shrink the longitude window by
	// the cosine of the latitude.
	latDelta := radius / 111.0
	lngDelta := radius / (111.0 * math.Max(math.Cos(params.Latitude*math.Pi/180), 0.01))

	bounds := goqu.Or(
		goqu.And(
			goqu.C("latitude").Between(goqu.Range(params.Latitude-latDelta, params.Latitude+latDelta)),
			goqu.C("longitude").Between(goqu.Range(params.Longitude-lngDelta, params.Longitude+lngDelta)),
		),
		goqu.C("latitude").IsNull(),
	)

	ds := a.db.Select(providerColumns...).
		From("providers").
		Where(goqu.Ex{"is_active": true}, bounds)

	if params.Service != "" {
		ds = ds.Where(goqu.L(
			"EXISTS (SELECT 1 FROM unnest(treatments) AS t WHERE t ILIKE ?)",
			"%"+params.Service+"%",
		))
	}

	query, args, err := ds.Order(goqu.C("created_at").Asc()).Limit(uint(limit)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build nearby query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query nearby providers", err)
	}
	defer rows.Close()

	result := []*entities.Provider{}
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan provider", err)
		}
		result = append(result, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read nearby providers", err)
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProvider(row rowScanner) (*entities.Provider, error) {
	provider := &entities.Provider{}
	var (
		lat, lng   sql.NullFloat64
		fee        sql.NullFloat64
		slotsJSON  []byte
		treatments []string
	)

	err := row.Scan(
		&provider.ID,
		&provider.Name,
		&provider.Kind,
		&provider.Address,
		&lat,
		&lng,
		&fee,
		&slotsJSON,
		pq.Array(&treatments),
		&provider.Rating,
		&provider.ReviewCount,
		&provider.IsActive,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		provider.Location = entities.NewGeoPoint(lat.Float64, lng.Float64)
	}
	if fee.Valid {
		provider.ConsultationFee = &fee.Float64
	}
	if len(slotsJSON) > 0 {
		if err := json.Unmarshal(slotsJSON, &provider.TimeSlots); err != nil {
			return nil, fmt.Errorf("failed to decode time slots: %w", err)
		}
	}
	for _, name := range treatments {
		provider.Treatments = append(provider.Treatments, entities.Treatment{Name: name})
	}

	return provider, nil
}

func providerRecord(provider *entities.Provider) (goqu.Record, error) {
	if provider.ID == "" {
		return nil, fmt.Errorf("provider id is required")
	}

	slotsJSON, err := json.Marshal(provider.TimeSlots)
	if err != nil {
		return nil, fmt.Errorf("failed to encode time slots")
	}

	names := make([]string, 0, len(provider.Treatments))
	for _, t := range provider.Treatments {
		names = append(names, t.Name)
	}

	record := goqu.Record{
		"id":           provider.ID,
		"name":         provider.Name,
		"kind":         provider.Kind,
		"address":      provider.Address,
		"latitude":     sql.NullFloat64{},
		"longitude":    sql.NullFloat64{},
		"time_slots":   slotsJSON,
		"treatments":   pq.Array(names),
		"rating":       provider.Rating,
		"review_count": provider.ReviewCount,
		"is_active":    provider.IsActive,
		"created_at":   provider.CreatedAt,
		"updated_at":   provider.UpdatedAt,
	}

	if loc, ok := provider.Location.LatLng(); ok {
		record["latitude"] = sql.NullFloat64{Float64: loc.Latitude, Valid: true}
		record["longitude"] = sql.NullFloat64{Float64: loc.Longitude, Valid: true}
	}
	if provider.ConsultationFee != nil {
		record["consultation_fee"] = sql.NullFloat64{Float64: *provider.ConsultationFee, Valid: true}
	} else {
		record["consultation_fee"] = sql.NullFloat64{}
	}

	return record, nil
}
