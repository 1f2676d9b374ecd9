package report

import "bikeshare-analyzer/internal/aggregate"

// Summary bundles the four reports of one run with the run totals.
type Summary struct {
	Rides       int                   `json:"rides"`
	Stations    int                   `json:"stations"`
	SkippedRows int                   `json:"skippedRows"`
	Seasonal    []SeasonSummary       `json:"seasonal"`
	Deficits    []StationBalance      `json:"deficits"`
	Speeds      []UserCategorySummary `json:"speeds"`
	Routes      Routes                `json:"routes"`
}

// Build runs every report with the default thresholds.
func Build(ds *aggregate.Dataset) *Summary {
	return &Summary{
		Rides:       len(ds.Rides),
		Stations:    len(ds.Stations),
		SkippedRows: ds.Skipped,
		Seasonal:    Seasonal(ds),
		Deficits:    StationDeficits(ds, MinStationTraffic, DeficitLimit),
		Speeds:      UserSpeeds(ds, MinCategoryRides),
		Routes:      LongestRoutes(ds, TopRoutes),
	}
}
