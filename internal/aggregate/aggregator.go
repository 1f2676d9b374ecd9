package aggregate

import (
	"time"

	"bikeshare-analyzer/internal/rides"
)

// Season labels. Report ordering sorts on these strings.
const (
	SeasonWinter  = "Zima"
	SeasonSpring  = "Wiosna"
	SeasonSummer  = "Lato"
	SeasonAutumn  = "Jesień"
	SeasonUnknown = "Nieznana"
)

// StationKey identifies a station by both id and name.
type StationKey struct {
	ID   string
	Name string
}

type StationAggregate struct {
	Key        StationKey
	Lat        float64 // from the first ride that referenced the station
	Lng        float64
	Departures int
	Arrivals   int
}

// Balance is arrivals minus departures; negative means a deficit.
func (s StationAggregate) Balance() int { return s.Arrivals - s.Departures }

func (s StationAggregate) Traffic() int { return s.Arrivals + s.Departures }

type SeasonAggregate struct {
	Season           string
	RideCount        int
	TotalDurationMin float64
	TotalDistanceKm  float64
}

func (s SeasonAggregate) AvgDurationMinutes() float64 {
	if s.RideCount == 0 {
		return 0
	}
	return s.TotalDurationMin / float64(s.RideCount)
}

func (s SeasonAggregate) AvgDistanceKm() float64 {
	if s.RideCount == 0 {
		return 0
	}
	return s.TotalDistanceKm / float64(s.RideCount)
}

// Aggregator folds rides into station and season aggregates in a single
// pass. It is not safe for concurrent use; one Aggregator serves one run.
type Aggregator struct {
	rides []rides.Ride

	stations     map[StationKey]*StationAggregate
	stationOrder []*StationAggregate

	seasons     map[string]*SeasonAggregate
	seasonOrder []*SeasonAggregate

	skipped  int
	byReason map[string]int
}

func New() *Aggregator {
	return &Aggregator{
		stations: make(map[StationKey]*StationAggregate),
		seasons:  make(map[string]*SeasonAggregate),
		byReason: make(map[string]int),
	}
}

// AddRow parses fields and folds the resulting ride. Rows that fail to parse
// are counted as skipped and the parse error is returned.
func (a *Aggregator) AddRow(fields []string) error {
	r, err := rides.ParseRow(fields)
	if err != nil {
		a.Skip(rides.SkipReason(err))
		return err
	}
	a.Add(r)
	return nil
}

// Skip records a row dropped before reaching the parser.
func (a *Aggregator) Skip(reason string) {
	a.skipped++
	a.byReason[reason]++
}

func (a *Aggregator) Add(r rides.Ride) {
	a.rides = append(a.rides, r)

	if r.StartStationID != "" && r.StartStationName != "" {
		st := a.station(StationKey{ID: r.StartStationID, Name: r.StartStationName}, r.StartLat, r.StartLng)
		st.Departures++
	}
	if r.EndStationID != "" && r.EndStationName != "" {
		st := a.station(StationKey{ID: r.EndStationID, Name: r.EndStationName}, r.EndLat, r.EndLng)
		st.Arrivals++
	}

	label := SeasonForMonth(r.StartedAt.Month())
	s, ok := a.seasons[label]
	if !ok {
		s = &SeasonAggregate{Season: label}
		a.seasons[label] = s
		a.seasonOrder = append(a.seasonOrder, s)
	}
	s.RideCount++
	s.TotalDurationMin += r.Duration().Minutes()
	s.TotalDistanceKm += r.DistanceKm()
}

// station returns the aggregate for key, creating it with the given
// coordinates if this is the first ride to reference it.
func (a *Aggregator) station(key StationKey, lat, lng float64) *StationAggregate {
	if st, ok := a.stations[key]; ok {
		return st
	}
	st := &StationAggregate{Key: key, Lat: lat, Lng: lng}
	a.stations[key] = st
	a.stationOrder = append(a.stationOrder, st)
	return st
}

func (a *Aggregator) Len() int     { return len(a.rides) }
func (a *Aggregator) Skipped() int { return a.skipped }

func (a *Aggregator) SkippedByReason() map[string]int {
	out := make(map[string]int, len(a.byReason))
	for k, v := range a.byReason {
		out[k] = v
	}
	return out
}

// Snapshot returns the report input for the rides folded so far. Station and
// season aggregates are copied; later Add calls do not affect the snapshot.
func (a *Aggregator) Snapshot() *Dataset {
	ds := &Dataset{
		Rides:    a.rides[:len(a.rides):len(a.rides)],
		Stations: make([]StationAggregate, len(a.stationOrder)),
		Seasons:  make([]SeasonAggregate, len(a.seasonOrder)),
		Skipped:  a.skipped,
	}
	for i, st := range a.stationOrder {
		ds.Stations[i] = *st
	}
	for i, s := range a.seasonOrder {
		ds.Seasons[i] = *s
	}
	return ds
}

// Dataset is the read-only result of one aggregation run. Stations and
// seasons are in first-seen order.
type Dataset struct {
	Rides    []rides.Ride
	Stations []StationAggregate
	Seasons  []SeasonAggregate
	Skipped  int
}

// SeasonForMonth maps a month to its season label.
func SeasonForMonth(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonAutumn
	default:
		return SeasonUnknown
	}
}
