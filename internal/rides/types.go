package rides

import (
	"time"

	"bikeshare-analyzer/internal/geo"
)

// Ride is one validated trip between two stations. It is built once by
// ParseRow and never mutated afterwards.
type Ride struct {
	RideID           string
	RideableType     string
	StartedAt        time.Time
	EndedAt          time.Time
	StartStationName string
	StartStationID   string
	EndStationName   string
	EndStationID     string
	StartLat         float64 // 0 if missing or unparseable
	StartLng         float64
	EndLat           float64
	EndLng           float64
	MemberCasual     string
}

// Duration is EndedAt - StartedAt. It is negative for out-of-order timestamps.
func (r Ride) Duration() time.Duration { return r.EndedAt.Sub(r.StartedAt) }

// DistanceKm is the great-circle distance between the ride endpoints.
func (r Ride) DistanceKm() float64 {
	return geo.Distance(r.StartLat, r.StartLng, r.EndLat, r.EndLng)
}

func (r Ride) SpeedKmh() float64 { return geo.Speed(r.DistanceKm(), r.Duration()) }
