// Package report derives the four analytical reports from an aggregated
// Dataset. All queries are read-only and accept empty input.
package report

import (
	"math"
	"slices"
	"strings"
	"time"

	"bikeshare-analyzer/internal/aggregate"
	"bikeshare-analyzer/internal/rides"
)

const (
	MinStationTraffic = 10
	DeficitLimit      = 10
	MinCategoryRides  = 10
	TopRoutes         = 5
)

type SeasonSummary struct {
	Season             string  `json:"season"`
	RideCount          int     `json:"rideCount"`
	AvgDurationMinutes float64 `json:"avgDurationMinutes"`
	AvgDistanceKm      float64 `json:"avgDistanceKm"`
}

type StationBalance struct {
	StationName string `json:"stationName"`
	StationID   string `json:"stationId"`
	Departures  int    `json:"departures"`
	Arrivals    int    `json:"arrivals"`
	Balance     int    `json:"balance"`
}

type UserCategorySummary struct {
	Category    string    `json:"category"`
	RideCount   int       `json:"rideCount"`
	TotalSpeed  float64   `json:"totalSpeed"`
	AvgSpeedKmh float64   `json:"avgSpeedKmh"`
	Speeds      []float64 `json:"-"`
}

type RouteEntry struct {
	RideID           string        `json:"rideId"`
	Duration         time.Duration `json:"duration"`
	DistanceKm       float64       `json:"distanceKm"`
	SpeedKmh         float64       `json:"speedKmh"`
	StartStationName string        `json:"startStationName"`
	EndStationName   string        `json:"endStationName"`
	StartedAt        time.Time     `json:"startedAt"`
	EndedAt          time.Time     `json:"endedAt"`
}

type Routes struct {
	ByDuration []RouteEntry `json:"byDuration"`
	ByDistance []RouteEntry `json:"byDistance"`
}

// Seasonal returns every season with at least one ride, ordered by label
// text. This is not calendar order.
func Seasonal(ds *aggregate.Dataset) []SeasonSummary {
	out := make([]SeasonSummary, 0, len(ds.Seasons))
	for _, s := range ds.Seasons {
		if s.RideCount <= 0 {
			continue
		}
		out = append(out, SeasonSummary{
			Season:             s.Season,
			RideCount:          s.RideCount,
			AvgDurationMinutes: round2(s.AvgDurationMinutes()),
			AvgDistanceKm:      round2(s.AvgDistanceKm()),
		})
	}
	slices.SortStableFunc(out, func(a, b SeasonSummary) int {
		return strings.Compare(a.Season, b.Season)
	})
	return out
}

// StationDeficits returns up to limit stations with at least minTraffic
// departures+arrivals, worst deficit first. Equal balances keep first-seen
// order.
func StationDeficits(ds *aggregate.Dataset, minTraffic, limit int) []StationBalance {
	var out []StationBalance
	for _, st := range ds.Stations {
		if st.Traffic() < minTraffic {
			continue
		}
		out = append(out, StationBalance{
			StationName: st.Key.Name,
			StationID:   st.Key.ID,
			Departures:  st.Departures,
			Arrivals:    st.Arrivals,
			Balance:     st.Balance(),
		})
	}
	slices.SortStableFunc(out, func(a, b StationBalance) int { return a.Balance - b.Balance })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// UserSpeeds groups rides by user category in first-seen order and keeps
// only groups with at least minRides rides.
func UserSpeeds(ds *aggregate.Dataset, minRides int) []UserCategorySummary {
	var groups []*UserCategorySummary
	index := make(map[string]*UserCategorySummary)
	for _, r := range ds.Rides {
		g, ok := index[r.MemberCasual]
		if !ok {
			g = &UserCategorySummary{Category: r.MemberCasual}
			index[r.MemberCasual] = g
			groups = append(groups, g)
		}
		speed := r.SpeedKmh()
		g.RideCount++
		g.TotalSpeed += speed
		g.Speeds = append(g.Speeds, speed)
	}

	out := make([]UserCategorySummary, 0, len(groups))
	for _, g := range groups {
		if g.RideCount < minRides {
			continue
		}
		g.AvgSpeedKmh = round2(g.TotalSpeed / float64(g.RideCount))
		out = append(out, *g)
	}
	return out
}

// LongestRoutes returns the k longest rides by duration and by distance.
func LongestRoutes(ds *aggregate.Dataset, k int) Routes {
	byDuration := topK(ds.Rides, k, func(a, b rides.Ride) bool { return a.Duration() > b.Duration() })
	byDistance := topK(ds.Rides, k, func(a, b rides.Ride) bool { return a.DistanceKm() > b.DistanceKm() })
	return Routes{
		ByDuration: routeEntries(byDuration),
		ByDistance: routeEntries(byDistance),
	}
}

// topK selects the k first elements of a stable descending sort without
// sorting all of rs. better(a, b) reports whether a ranks strictly above b.
func topK(rs []rides.Ride, k int, better func(a, b rides.Ride) bool) []rides.Ride {
	if k <= 0 {
		return nil
	}
	top := make([]rides.Ride, 0, k+1)
	for _, r := range rs {
		if len(top) == k && !better(r, top[len(top)-1]) {
			continue
		}
		// insert after every element r does not beat, so earlier rides win ties
		i := len(top)
		for i > 0 && better(r, top[i-1]) {
			i--
		}
		top = slices.Insert(top, i, r)
		if len(top) > k {
			top = top[:k]
		}
	}
	return top
}

func routeEntries(rs []rides.Ride) []RouteEntry {
	out := make([]RouteEntry, len(rs))
	for i, r := range rs {
		out[i] = RouteEntry{
			RideID:           r.RideID,
			Duration:         r.Duration(),
			DistanceKm:       r.DistanceKm(),
			SpeedKmh:         r.SpeedKmh(),
			StartStationName: r.StartStationName,
			EndStationName:   r.EndStationName,
			StartedAt:        r.StartedAt,
			EndedAt:          r.EndedAt,
		}
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
