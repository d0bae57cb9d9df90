package ics

import (
	"time"

	"github.com/teambition/rrule-go"
)

const (
	defaultMaxOccurrences = 200
	defaultHorizonMonths  = 3
)

// Occurrence is one expanded instance of a recurring event.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// ExpandConfig bounds recurrence expansion.
type ExpandConfig struct {
	// Horizon is the latest start any occurrence may have.
	Horizon time.Time

	// MaxOccurrences caps rules without COUNT. If zero,
	// defaultMaxOccurrences is used.
	MaxOccurrences int
}

// Expand produces the occurrences of rule for a series starting at start.
// Every occurrence lasts duration. Iteration stops at COUNT (or the default
// cap), at UNTIL when it is earlier than the horizon, or at the horizon,
// whichever comes first. Unsupported rules yield nothing.
func Expand(rule Rule, start time.Time, duration time.Duration, cfg ExpandConfig) []Occurrence {
	if !rule.Supported {
		return nil
	}
	if rule.Freq == rrule.WEEKLY && rule.HasByDay && len(rule.ByDay) == 0 {
		return nil
	}

	limit := cfg.Horizon
	if !rule.Until.IsZero() && rule.Until.Before(limit) {
		limit = rule.Until
	}

	maxCount := rule.Count
	if maxCount <= 0 {
		maxCount = cfg.MaxOccurrences
	}
	if maxCount <= 0 {
		maxCount = defaultMaxOccurrences
	}

	interval := max(rule.Interval, 1)

	out := make([]Occurrence, 0, min(maxCount, 64))
	current := start

	for len(out) < maxCount && !current.After(limit) {
		if rule.Freq == rrule.WEEKLY && rule.HasByDay {
			weekStart := current.AddDate(0, 0, -int(current.Weekday()))
			for _, wd := range rule.ByDay {
				day := weekStart.AddDate(0, 0, int(wd))
				occ := time.Date(day.Year(), day.Month(), day.Day(),
					start.Hour(), start.Minute(), start.Second(), 0, start.Location())
				if occ.Before(start) || occ.After(limit) {
					continue
				}
				out = append(out, Occurrence{Start: occ, End: occ.Add(duration)})
				if len(out) == maxCount {
					break
				}
			}
			current = current.AddDate(0, 0, 7*interval)
			continue
		}

		out = append(out, Occurrence{Start: current, End: current.Add(duration)})

		switch rule.Freq {
		case rrule.DAILY:
			current = current.AddDate(0, 0, interval)
		case rrule.WEEKLY:
			current = current.AddDate(0, 0, 7*interval)
		case rrule.MONTHLY:
			current = current.AddDate(0, interval, 0)
		case rrule.YEARLY:
			current = current.AddDate(interval, 0, 0)
		}
	}

	return out
}

// spanDays counts the calendar days between the dates of a and b. Clock
// changes in between do not shift the count.
func spanDays(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}

// HorizonFrom returns the expansion horizon for a request made at now.
func HorizonFrom(now time.Time, months int) time.Time {
	if months <= 0 {
		months = defaultHorizonMonths
	}
	return now.AddDate(0, months, 0)
}
