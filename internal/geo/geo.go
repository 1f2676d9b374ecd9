package geo

import (
	"math"
	"time"
)

const EarthRadiusMeters = 6371000.0

// Distance returns the great-circle distance in kilometers between the start
// and end coordinates. A point at exactly (0,0) means "no coordinate data" and
// yields 0, as do out-of-range or non-finite inputs.
func Distance(startLat, startLng, endLat, endLng float64) float64 {
	if startLat == 0 && startLng == 0 {
		return 0
	}
	if endLat == 0 && endLng == 0 {
		return 0
	}
	if !validPoint(startLat, startLng) || !validPoint(endLat, endLng) {
		return 0
	}

	dLat := toRad(endLat - startLat)
	dLng := toRad(endLng - startLng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(startLat))*math.Cos(toRad(endLat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	// a outside [0,1] would make Sqrt(1-a) NaN
	if math.IsNaN(a) || a < 0 || a > 1 {
		return 0
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c / 1000
}

// Speed returns the average speed in km/h for a ride of distanceKm lasting d.
// Non-positive durations yield 0. No upper bound is applied.
func Speed(distanceKm float64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return distanceKm / d.Seconds() * 3600
}

func validPoint(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return math.Abs(lat) <= 90 && math.Abs(lng) <= 180
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
