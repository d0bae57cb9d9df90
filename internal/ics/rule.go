package ics

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "churchcal/internal/log"
)

var weekdayCodes = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

// Rule is the subset of an RRULE the expander understands.
type Rule struct {
	Freq rrule.Frequency
	// Supported is false when FREQ is missing, unparseable or not one of
	// DAILY/WEEKLY/MONTHLY/YEARLY. Such rules expand to nothing.
	Supported bool

	// Count is the COUNT part, zero when absent.
	Count int
	// Until is the UNTIL part, zero when absent or unparseable.
	Until time.Time
	// Interval is at least 1.
	Interval int
	// ByDay lists BYDAY weekdays, deduplicated and ordered Sunday first.
	// HasByDay is set whenever the part was present, even if no code in it
	// was recognised.
	ByDay    []time.Weekday
	HasByDay bool
}

// ParseRule decodes an RRULE value such as "FREQ=WEEKLY;BYDAY=MO,WE;COUNT=4".
// Naive UNTIL values are read in loc. Unknown parts are ignored.
func ParseRule(value string, loc *time.Location) Rule {
	if loc == nil {
		loc = time.UTC
	}
	r := Rule{Interval: 1}

	for _, part := range strings.Split(value, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		key = strings.ToUpper(key)
		val = strings.TrimSpace(val)

		switch key {
		case "FREQ":
			freq, err := rrule.StrToFreq(strings.ToUpper(val))
			if err != nil {
				appLog.Debug("rrule: unknown frequency", "freq", val)
				continue
			}
			r.Freq = freq
			switch freq {
			case rrule.DAILY, rrule.WEEKLY, rrule.MONTHLY, rrule.YEARLY:
				r.Supported = true
			}
		case "COUNT":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				r.Count = n
			}
		case "INTERVAL":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				r.Interval = n
			}
		case "UNTIL":
			t, err := rrule.StrToDtStart(val, loc)
			if err != nil {
				appLog.Debug("rrule: bad UNTIL ignored", "until", val)
				continue
			}
			r.Until = t
		case "BYDAY":
			r.ByDay = parseByDay(val)
			r.HasByDay = true
		}
	}

	return r
}

// parseByDay maps "MO,WE,-1FR" style lists to weekdays. Ordinal prefixes are
// dropped and unknown codes skipped.
func parseByDay(val string) []time.Weekday {
	var days []time.Weekday
	for _, code := range strings.Split(val, ",") {
		code = strings.TrimLeft(strings.ToUpper(strings.TrimSpace(code)), "+-0123456789")
		d, ok := weekdayCodes[code]
		if !ok || slices.Contains(days, d) {
			continue
		}
		days = append(days, d)
	}
	slices.Sort(days)
	return days
}
