package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func expandCfg() ExpandConfig {
	return ExpandConfig{Horizon: HorizonFrom(testNow, 3)}
}

func starts(occs []Occurrence) []time.Time {
	out := make([]time.Time, 0, len(occs))
	for _, o := range occs {
		out = append(out, o.Start)
	}
	return out
}

func TestParseRule(t *testing.T) {
	r := ParseRule("FREQ=WEEKLY;INTERVAL=2;BYDAY=WE,MO,+1MO,XX;COUNT=4;UNTIL=20261231T235959Z;WKST=SU", nil)

	assert.True(t, r.Supported)
	assert.Equal(t, rrule.WEEKLY, r.Freq)
	assert.Equal(t, 2, r.Interval)
	assert.Equal(t, 4, r.Count)
	assert.True(t, r.HasByDay)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, r.ByDay)
	assert.True(t, r.Until.Equal(time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)))
}

func TestParseRule_UntilForms(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)

	naive := ParseRule("FREQ=DAILY;UNTIL=20261120T180000", loc)
	assert.True(t, naive.Until.Equal(time.Date(2026, 11, 20, 18, 0, 0, 0, loc)))

	date := ParseRule("FREQ=DAILY;UNTIL=20261120", loc)
	assert.True(t, date.Until.Equal(time.Date(2026, 11, 20, 0, 0, 0, 0, loc)))

	zulu := ParseRule("FREQ=DAILY;UNTIL=20261120T180000Z", loc)
	assert.True(t, zulu.Until.Equal(time.Date(2026, 11, 20, 18, 0, 0, 0, time.UTC)))

	bad := ParseRule("FREQ=DAILY;UNTIL=soon", loc)
	assert.True(t, bad.Supported)
	assert.True(t, bad.Until.IsZero())
}

func TestParseRule_Defaults(t *testing.T) {
	r := ParseRule("FREQ=DAILY;INTERVAL=0;COUNT=abc;UNTIL=nonsense", nil)

	assert.True(t, r.Supported)
	assert.Equal(t, 1, r.Interval)
	assert.Zero(t, r.Count)
	assert.True(t, r.Until.IsZero())
	assert.False(t, r.HasByDay)
}

func TestParseRule_Unsupported(t *testing.T) {
	for _, v := range []string{"FREQ=HOURLY", "FREQ=SECONDLY;COUNT=3", "FREQ=FORTNIGHTLY", "COUNT=3", ""} {
		assert.False(t, ParseRule(v, nil).Supported, "rule %q", v)
	}
}

func TestExpand_WeeklyByDayCount(t *testing.T) {
	start := utc(2026, 10, 19, 10, 0) // Monday
	rule := ParseRule("FREQ=WEEKLY;BYDAY=MO,WE;COUNT=4", nil)

	occs := Expand(rule, start, time.Hour, expandCfg())

	require.Len(t, occs, 4)
	assert.Equal(t, []time.Time{
		utc(2026, 10, 19, 10, 0),
		utc(2026, 10, 21, 10, 0),
		utc(2026, 10, 26, 10, 0),
		utc(2026, 10, 28, 10, 0),
	}, starts(occs))

	for i, o := range occs {
		wd := o.Start.Weekday()
		assert.True(t, wd == time.Monday || wd == time.Wednesday, "weekday %s", wd)
		assert.False(t, o.Start.Before(start))
		assert.Equal(t, time.Hour, o.End.Sub(o.Start))
		if i > 0 {
			assert.False(t, o.Start.Before(occs[i-1].Start))
		}
	}
}

func TestExpand_WeeklyByDaySkipsDaysBeforeStart(t *testing.T) {
	start := utc(2026, 10, 21, 19, 30) // Wednesday
	rule := ParseRule("FREQ=WEEKLY;BYDAY=WE,MO;COUNT=3", nil)

	occs := Expand(rule, start, 0, expandCfg())

	assert.Equal(t, []time.Time{
		utc(2026, 10, 21, 19, 30),
		utc(2026, 10, 26, 19, 30),
		utc(2026, 10, 28, 19, 30),
	}, starts(occs))
}

func TestExpand_WeeklyByDayInterval(t *testing.T) {
	start := utc(2026, 10, 18, 9, 0) // Sunday
	rule := ParseRule("FREQ=WEEKLY;INTERVAL=2;BYDAY=SU,SA;COUNT=4", nil)

	occs := Expand(rule, start, 0, expandCfg())

	assert.Equal(t, []time.Time{
		utc(2026, 10, 18, 9, 0),
		utc(2026, 10, 24, 9, 0),
		utc(2026, 11, 1, 9, 0),
		utc(2026, 11, 7, 9, 0),
	}, starts(occs))
}

func TestExpand_WeeklyByDayOnlyUnknownCodes(t *testing.T) {
	rule := ParseRule("FREQ=WEEKLY;BYDAY=XX", nil)
	assert.Empty(t, Expand(rule, utc(2026, 10, 19, 10, 0), 0, expandCfg()))
}

func TestExpand_HorizonBound(t *testing.T) {
	start := utc(2026, 10, 16, 10, 0)
	rule := ParseRule("FREQ=DAILY;COUNT=500", nil)
	cfg := expandCfg()

	occs := Expand(rule, start, time.Hour, cfg)

	require.Len(t, occs, 92)
	limit := testNow.AddDate(0, 3, 0)
	for _, o := range occs {
		assert.False(t, o.Start.After(limit), "occurrence %s past horizon", o.Start)
	}
	assert.Equal(t, utc(2027, 1, 15, 10, 0), occs[len(occs)-1].Start)
}

func TestExpand_UntilBeforeHorizon(t *testing.T) {
	rule := ParseRule("FREQ=WEEKLY;UNTIL=20261102T100000Z", nil)

	occs := Expand(rule, utc(2026, 10, 19, 10, 0), 0, expandCfg())

	assert.Equal(t, []time.Time{
		utc(2026, 10, 19, 10, 0),
		utc(2026, 10, 26, 10, 0),
		utc(2026, 11, 2, 10, 0),
	}, starts(occs))
}

func TestExpand_UntilAfterHorizonIgnored(t *testing.T) {
	rule := ParseRule("FREQ=MONTHLY;UNTIL=20301231", nil)

	occs := Expand(rule, utc(2026, 10, 20, 10, 0), 0, expandCfg())

	assert.Equal(t, []time.Time{
		utc(2026, 10, 20, 10, 0),
		utc(2026, 11, 20, 10, 0),
		utc(2026, 12, 20, 10, 0),
	}, starts(occs))
}

func TestExpand_MonthlyIntervalNormalizesDates(t *testing.T) {
	rule := ParseRule("FREQ=MONTHLY;INTERVAL=2", nil)

	occs := Expand(rule, utc(2026, 8, 31, 8, 0), 0, expandCfg())

	// Oct 31 + 2 months normalizes to Dec 31; Feb 31 normalizes past the horizon.
	assert.Equal(t, []time.Time{
		utc(2026, 8, 31, 8, 0),
		utc(2026, 10, 31, 8, 0),
		utc(2026, 12, 31, 8, 0),
	}, starts(occs))
}

func TestExpand_Yearly(t *testing.T) {
	rule := ParseRule("FREQ=YEARLY", nil)

	occs := Expand(rule, utc(2025, 1, 1, 0, 0), 0, expandCfg())

	assert.Equal(t, []time.Time{
		utc(2025, 1, 1, 0, 0),
		utc(2026, 1, 1, 0, 0),
		utc(2027, 1, 1, 0, 0),
	}, starts(occs))
}

func TestExpand_DefaultCap(t *testing.T) {
	rule := ParseRule("FREQ=DAILY", nil)

	occs := Expand(rule, utc(2020, 1, 1, 7, 0), 0, expandCfg())
	assert.Len(t, occs, defaultMaxOccurrences)

	cfg := expandCfg()
	cfg.MaxOccurrences = 10
	assert.Len(t, Expand(rule, utc(2020, 1, 1, 7, 0), 0, cfg), 10)
}

func TestExpand_Unsupported(t *testing.T) {
	for _, v := range []string{"FREQ=HOURLY;COUNT=5", "FREQ=BOGUS", "COUNT=5"} {
		assert.Empty(t, Expand(ParseRule(v, nil), utc(2026, 10, 19, 10, 0), 0, expandCfg()), "rule %q", v)
	}
}
