package ranking

import (
	"math"

	"github.com/octobees/contact-finder/internal/entity"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

// DefaultMaxDistance is applied when a near point carries no radius.
const DefaultMaxDistance = 10000.0

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b entity.Coords) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinDistance keeps the contacts located no further than maxDistance
// meters from origin. Contacts without coordinates are dropped.
func WithinDistance(contacts []entity.Contact, origin entity.Coords, maxDistance float64) []entity.Contact {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	kept := make([]entity.Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.Coords == nil {
			continue
		}
		if Haversine(origin, *c.Coords) <= maxDistance {
			kept = append(kept, c)
		}
	}
	return kept
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
