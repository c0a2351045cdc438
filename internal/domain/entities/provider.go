package entities

import (
	"encoding/json"
	"strings"
	"time"
)

// Provider kinds. Doctors and clinics are structurally identical for
// discovery purposes and share one entity.
const (
	ProviderKindDoctor = "doctor"
	ProviderKindClinic = "clinic"
)

// Provider represents a doctor or clinic listed in the directory
type Provider struct {
	ID              string      `json:"id" db:"id"`
	Name            string      `json:"name" db:"name"`
	Kind            string      `json:"kind" db:"kind"`
	Address         string      `json:"address" db:"address"`
	Location        GeoPoint    `json:"location" db:"-"`
	ConsultationFee *float64    `json:"consultationFee,omitempty" db:"consultation_fee"`
	TimeSlots       []TimeSlot  `json:"timeSlots" db:"-"`
	Treatments      []Treatment `json:"treatments" db:"-"`
	Rating          float64     `json:"rating" db:"rating"`
	ReviewCount     int         `json:"reviewCount" db:"review_count"`
	IsActive        bool        `json:"isActive" db:"is_active"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
}

// GeoPoint is a GeoJSON point. Coordinates are stored in GeoJSON order,
// [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a latitude/longitude pair
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// LatLng returns the point as a latitude/longitude location. The second
// return value is false unless the point carries exactly two coordinates.
func (g GeoPoint) LatLng() (Location, bool) {
	if len(g.Coordinates) != 2 {
		return Location{}, false
	}
	return Location{Latitude: g.Coordinates[1], Longitude: g.Coordinates[0]}, true
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// TimeSlot is a single day's availability record for a provider. Date is
// free text in "<day> <Month>" form with no year; session entries are
// unvalidated free-text time ranges such as "9:00 AM - 9:30 AM".
type TimeSlot struct {
	Date           string       `json:"date"`
	AvailableSlots int          `json:"availableSlots"`
	Sessions       SlotSessions `json:"sessions"`
}

// SlotSessions buckets a day's time ranges into morning and evening
type SlotSessions struct {
	Morning []string `json:"morning"`
	Evening []string `json:"evening"`
}

// Treatment represents a service a provider offers
type Treatment struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price,omitempty"`
}

// UnmarshalJSON normalizes the legacy treatment shapes at the ingestion
// boundary. Older payloads carry "treatment" as either a bare string or a
// string array next to (or instead of) the structured "treatments" list;
// after decoding, Treatments is the only shape the rest of the code sees.
func (p *Provider) UnmarshalJSON(data []byte) error {
	type alias Provider
	aux := struct {
		*alias
		LegacyTreatment json.RawMessage `json:"treatment,omitempty"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.Treatments = normalizeTreatments(aux.LegacyTreatment, p.Treatments)
	return nil
}

func normalizeTreatments(legacy json.RawMessage, treatments []Treatment) []Treatment {
	out := make([]Treatment, 0, len(treatments))
	seen := make(map[string]bool)

	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, Treatment{Name: name})
	}

	for _, t := range treatments {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}

	if len(legacy) > 0 {
		var single string
		if err := json.Unmarshal(legacy, &single); err == nil {
			add(single)
		} else {
			var many []string
			if err := json.Unmarshal(legacy, &many); err == nil {
				for _, name := range many {
					add(name)
				}
			}
		}
	}

	return out
}

// HasTreatment reports whether the provider offers the named treatment,
// matched case-insensitively on a substring basis.
func (p *Provider) HasTreatment(name string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return true
	}
	for _, t := range p.Treatments {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			return true
		}
	}
	return false
}
