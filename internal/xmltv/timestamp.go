package xmltv

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp parses an XMLTV timestamp of the form
// "YYYYMMDDHHMMSS ±HHMM", where the date-time part may be truncated at any
// field boundary ("2024", "202401", "20240102", ...). Missing fields fall
// back to ref's year and month, day 1 and midnight, matching how listing
// sources abbreviate production dates.
//
// When applyTZ is false the trailing offset is ignored and the result is
// taken in ref's location; broadcast start/stop times are published in the
// guide's own local convention and shifting them would skew the grid.
func ParseTimestamp(s string, ref time.Time, applyTZ bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	digits := s
	var offset *time.Location
	if i := strings.IndexByte(s, ' '); i != -1 {
		digits = s[:i]
		loc, err := parseOffset(strings.TrimSpace(s[i+1:]))
		if err != nil {
			return time.Time{}, err
		}
		offset = loc
	}

	year, month, day := ref.Year(), int(ref.Month()), 1
	hour, minute, sec := 0, 0, 0

	fields := []struct {
		width int
		dst   *int
	}{
		{4, &year}, {2, &month}, {2, &day}, {2, &hour}, {2, &minute}, {2, &sec},
	}
	for _, f := range fields {
		if len(digits) < f.width {
			break
		}
		n, err := strconv.Atoi(digits[:f.width])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		*f.dst = n
		digits = digits[f.width:]
	}

	loc := ref.Location()
	if applyTZ && offset != nil {
		t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, offset)
		return t.In(ref.Location()), nil
	}
	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc), nil
}

func parseOffset(s string) (*time.Location, error) {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return nil, fmt.Errorf("invalid timezone offset %q", s)
	}
	hours, err := strconv.Atoi(s[1:3])
	if err != nil {
		return nil, fmt.Errorf("invalid timezone offset %q", s)
	}
	minutes, err := strconv.Atoi(s[3:5])
	if err != nil {
		return nil, fmt.Errorf("invalid timezone offset %q", s)
	}
	secs := (hours*60 + minutes) * 60
	if s[0] == '-' {
		secs = -secs
	}
	return time.FixedZone(s, secs), nil
}
