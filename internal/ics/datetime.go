package ics

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
	icsDate        = "20060102"
	icsDateTime    = "20060102T150405"

	allDayMarker = "VALUE=DATE:"
)

// Value is a resolved DTSTART / DTEND / EXDATE value.
type Value struct {
	Time   time.Time
	AllDay bool
	// UTC is set when the source value carried a trailing 'Z'.
	UTC bool
}

// Render formats v the way it is exposed to clients: a plain date for
// all-day values, otherwise a timestamp that keeps the UTC marker only when
// the source had one.
func (v Value) Render() string {
	switch {
	case v.AllDay:
		return v.Time.Format(dateLayout)
	case v.UTC:
		return v.Time.UTC().Format(dateTimeLayout) + "Z"
	default:
		return v.Time.Format(dateTimeLayout)
	}
}

// at returns a Value with the same form as v but a different instant.
func (v Value) at(t time.Time) Value {
	return Value{Time: t, AllDay: v.AllDay, UTC: v.UTC}
}

// ParseValue resolves a content line such as "DTSTART;VALUE=DATE:20260301"
// or "DTSTART;TZID=America/Sao_Paulo:20260301T100000", or a bare value like
// "20260301T100000Z". Values without a 'Z' are read as wall-clock times in
// loc; TZID parameters are not applied.
func ParseValue(line string, loc *time.Location) (Value, error) {
	if loc == nil {
		loc = time.UTC
	}

	raw := line
	if i := strings.LastIndexByte(line, ':'); i >= 0 {
		raw = line[i+1:]
	}
	raw = strings.TrimSpace(raw)

	if strings.Contains(strings.ToUpper(line), allDayMarker) || len(raw) == len(icsDate) {
		if len(raw) < len(icsDate) {
			return Value{}, fmt.Errorf("ics: short date value %q", raw)
		}
		t, err := time.ParseInLocation(icsDate, raw[:len(icsDate)], loc)
		if err != nil {
			return Value{}, fmt.Errorf("ics: bad date value %q: %w", raw, err)
		}
		return Value{Time: t, AllDay: true}, nil
	}

	utc := strings.HasSuffix(raw, "Z")
	digits := strings.TrimSuffix(raw, "Z")
	if len(digits) != len(icsDateTime) {
		return Value{}, fmt.Errorf("ics: bad date-time value %q", raw)
	}

	zone := loc
	if utc {
		zone = time.UTC
	}
	t, err := time.ParseInLocation(icsDateTime, digits, zone)
	if err != nil {
		return Value{}, fmt.Errorf("ics: bad date-time value %q: %w", raw, err)
	}
	return Value{Time: t, UTC: utc}, nil
}
