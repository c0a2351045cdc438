package geo

import (
	"fmt"
	"math"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
)

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance between two points in
// kilometers using the Haversine formula, rounded to one decimal place.
func Distance(from, to entities.Location) float64 {
	lat1Rad := degreesToRadians(from.Latitude)
	lat2Rad := degreesToRadians(to.Latitude)
	deltaLat := degreesToRadians(to.Latitude - from.Latitude)
	deltaLon := degreesToRadians(to.Longitude - from.Longitude)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(earthRadiusKm*c*10) / 10
}

// FormatDistance renders a distance for display: meters under one
// kilometer, one-decimal kilometers otherwise.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1fkm", km)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
