package geo

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDistance_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantKm                 float64
		tolerance              float64
	}{
		{
			name: "Chicago Loop to Lincoln Park (~5 km)",
			lat1: 41.8781, lng1: -87.6298,
			lat2: 41.9214, lng2: -87.6513,
			wantKm:    5.15,
			tolerance: 0.1,
		},
		{
			name: "same point",
			lat1: 41.8781, lng1: -87.6298,
			lat2: 41.8781, lng2: -87.6298,
			wantKm:    0,
			tolerance: 1e-9,
		},
		{
			name: "north pole to south pole",
			lat1: 90, lng1: 1,
			lat2: -90, lng2: 1,
			wantKm:    math.Pi * EarthRadiusMeters / 1000,
			tolerance: 0.001,
		},
		{
			name: "quarter of the equator",
			lat1: 0, lng1: 1,
			lat2: 0, lng2: 91,
			wantKm:    math.Pi / 2 * EarthRadiusMeters / 1000,
			tolerance: 0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.wantKm, got, tt.tolerance)
		})
	}
}

func TestDistance_ZeroPointMeansAbsent(t *testing.T) {
	points := [][2]float64{
		{41.8781, -87.6298},
		{-33.86, 151.2},
		{89.9, 179.9},
		{0, 10},
	}
	for _, p := range points {
		assert.Zero(t, Distance(0, 0, p[0], p[1]), "start (0,0) to %v", p)
		assert.Zero(t, Distance(p[0], p[1], 0, 0), "%v to end (0,0)", p)
	}
}

func TestDistance_OutOfRange(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
	}{
		{"start lat above 90", 90.0001, 10, 41, -87},
		{"start lat below -90", -91, 10, 41, -87},
		{"start lng above 180", 41, 180.5, 41, -87},
		{"end lat above 90", 41, -87, 120, 10},
		{"end lng below -180", 41, -87, 41, -181},
		{"NaN", math.NaN(), 10, 41, -87},
		{"Inf", 41, math.Inf(1), 41, -87},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Zero(t, Distance(tt.lat1, tt.lng1, tt.lat2, tt.lng2))
		})
	}
}

func TestDistance_Symmetry(t *testing.T) {
	pairs := [][4]float64{
		{41.8781, -87.6298, 41.9214, -87.6513},
		{52.2297, 21.0122, 50.0647, 19.9450},
		{-33.8688, 151.2093, 35.6762, 139.6503},
	}
	for _, p := range pairs {
		a := Distance(p[0], p[1], p[2], p[3])
		b := Distance(p[2], p[3], p[0], p[1])
		assert.InDelta(t, a, b, 1e-9)
		assert.Positive(t, a)
	}
}

func TestSpeed(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		d        time.Duration
		want     float64
	}{
		{"10 km in 30 min", 10, 30 * time.Minute, 20},
		{"1 km in 1 h", 1, time.Hour, 1},
		{"zero duration", 5, 0, 0},
		{"negative duration", 5, -10 * time.Minute, 0},
		{"negative duration with zero distance", 0, -time.Second, 0},
		{"zero distance", 0, time.Minute, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Speed(tt.distance, tt.d), 1e-9)
		})
	}
}

func TestSpeed_NoUpperBound(t *testing.T) {
	got := Speed(10, time.Millisecond)
	assert.InDelta(t, 36_000_000.0, got, 1e-3)
}
