package rides

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Column positions in the trip export.
const (
	colRideID = iota
	colRideableType
	colStartedAt
	colEndedAt
	colStartStationName
	colStartStationID
	colEndStationName
	colEndStationID
	colStartLat
	colStartLng
	colEndLat
	colEndLng
	colMemberCasual

	// MinFields is the number of fields a row needs to be considered at all.
	MinFields
)

// TimestampLayout is the only accepted timestamp format (millisecond
// precision, no zone).
const TimestampLayout = "2006-01-02 15:04:05.000"

var (
	ErrTooFewFields = errors.New("too few fields")
	ErrBadTimestamp = errors.New("unparseable timestamp")
)

// ParseRow converts one row, already split on the delimiter, into a Ride.
// A non-nil error means the whole row must be skipped. Unparseable
// coordinates are not an error; they default to zero.
func ParseRow(fields []string) (Ride, error) {
	if len(fields) < MinFields {
		return Ride{}, fmt.Errorf("%w: got %d, want at least %d", ErrTooFewFields, len(fields), MinFields)
	}
	startedAt, err := parseTimestamp(fields[colStartedAt])
	if err != nil {
		return Ride{}, fmt.Errorf("%w: started_at %q", ErrBadTimestamp, fields[colStartedAt])
	}
	endedAt, err := parseTimestamp(fields[colEndedAt])
	if err != nil {
		return Ride{}, fmt.Errorf("%w: ended_at %q", ErrBadTimestamp, fields[colEndedAt])
	}

	return Ride{
		RideID:           fields[colRideID],
		RideableType:     fields[colRideableType],
		StartedAt:        startedAt,
		EndedAt:          endedAt,
		StartStationName: fields[colStartStationName],
		StartStationID:   fields[colStartStationID],
		EndStationName:   fields[colEndStationName],
		EndStationID:     fields[colEndStationID],
		StartLat:         parseCoord(fields[colStartLat]),
		StartLng:         parseCoord(fields[colStartLng]),
		EndLat:           parseCoord(fields[colEndLat]),
		EndLng:           parseCoord(fields[colEndLng]),
		MemberCasual:     fields[colMemberCasual],
	}, nil
}

// SkipReason returns a short label for a ParseRow error, suitable for
// metric labels and log fields.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrTooFewFields):
		return "too_few_fields"
	case errors.Is(err, ErrBadTimestamp):
		return "bad_timestamp"
	default:
		return "other"
	}
}

// parseTimestamp parses s with TimestampLayout. time.Parse accepts a
// single-digit hour for "15", so the width is checked first.
func parseTimestamp(s string) (time.Time, error) {
	if len(s) != len(TimestampLayout) {
		return time.Time{}, ErrBadTimestamp
	}
	return time.Parse(TimestampLayout, s)
}

// parseCoord accepts an optionally signed decimal with optional exponent.
// The sign may also trail the number ("41.5-") and a parenthesised value is
// negative ("(87.6)"). Anything else, including NaN, Inf and hex floats,
// becomes 0.
func parseCoord(s string) float64 {
	s = strings.TrimSpace(s)
	neg, outerSign := false, false
	switch {
	case len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')':
		s = strings.TrimSpace(s[1 : len(s)-1])
		neg, outerSign = true, true
	case strings.HasSuffix(s, "-") || strings.HasSuffix(s, "+"):
		neg = s[len(s)-1] == '-'
		s = strings.TrimSpace(s[:len(s)-1])
		outerSign = true
	}
	if s == "" || strings.ContainsAny(s, "xXpP_") {
		return 0
	}
	// only one sign per number
	if outerSign && (s[0] == '-' || s[0] == '+') {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if neg {
		f = -f
	}
	return f
}
