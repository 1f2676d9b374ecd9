// Package console renders report summaries as plain text.
package console

import (
	"fmt"
	"io"
	"time"

	"bikeshare-analyzer/internal/report"
)

const dateLayout = "2006-01-02"

// Print writes all four report sections of s to w.
func Print(w io.Writer, s *report.Summary) error {
	p := &printer{w: w}
	p.printf("Loaded %d rides, %d stations (%d rows skipped)\n", s.Rides, s.Stations, s.SkippedRows)
	p.seasonal(s.Seasonal)
	p.deficits(s.Deficits)
	p.speeds(s.Speeds)
	p.routes(s.Routes)
	return p.err
}

// printer remembers the first write error so sections can be written
// without checking every call.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) seasonal(rows []report.SeasonSummary) {
	p.printf("\n=== SEASONAL USAGE ===\n")
	for _, s := range rows {
		p.printf("%s:\n", s.Season)
		p.printf("  Rides: %d\n", s.RideCount)
		p.printf("  Avg duration: %.2f min\n", s.AvgDurationMinutes)
		p.printf("  Avg distance: %.2f km\n\n", s.AvgDistanceKm)
	}
}

func (p *printer) deficits(rows []report.StationBalance) {
	p.printf("\n=== STATION BIKE DEFICIT ===\n")
	p.printf("Stations with the largest deficit:\n")
	for _, st := range rows {
		p.printf("%s (ID: %s):\n", st.StationName, st.StationID)
		p.printf("  Departures: %d, Arrivals: %d, Balance: %d\n", st.Departures, st.Arrivals, st.Balance)
	}
}

func (p *printer) speeds(rows []report.UserCategorySummary) {
	p.printf("\n=== USER SPEED DIFFERENCES ===\n")
	for _, u := range rows {
		p.printf("%s:\n", u.Category)
		p.printf("  Avg speed: %.2f km/h\n", u.AvgSpeedKmh)
		p.printf("  Rides: %d\n", u.RideCount)
	}
}

func (p *printer) routes(r report.Routes) {
	p.printf("\n=== LONGEST ROUTES ===\n")
	p.printf("Longest routes by duration:\n")
	for _, e := range r.ByDuration {
		p.printf("%s - %s → %s\n", FormatDays(e.Duration), e.StartStationName, e.EndStationName)
		p.printf("  Started: %s, Ended: %s\n", e.StartedAt.Format(dateLayout), e.EndedAt.Format(dateLayout))
		p.printf("  Distance: %.2f km, Speed: %.2f km/h\n", e.DistanceKm, e.SpeedKmh)
	}

	p.printf("\nLongest routes by distance:\n")
	for _, e := range r.ByDistance {
		p.printf("%.2f km - %s → %s\n", e.DistanceKm, e.StartStationName, e.EndStationName)
		p.printf("  Time: %s, Date: %s, Speed: %.2f km/h\n", FormatClock(e.Duration), e.StartedAt.Format(dateLayout), e.SpeedKmh)
	}
}

// FormatDays renders d as dd:hh:mm:ss.
func FormatDays(d time.Duration) string {
	sign, d := split(d)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	return fmt.Sprintf("%s%02d:%s", sign, int64(days), clock(d))
}

// FormatClock renders the time-of-day part of d as hh:mm:ss; whole days are
// dropped.
func FormatClock(d time.Duration) string {
	sign, d := split(d)
	return sign + clock(d%(24*time.Hour))
}

func split(d time.Duration) (string, time.Duration) {
	if d < 0 {
		return "-", -d
	}
	return "", d
}

func clock(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", int64(h), int64(m), int64(s))
}
