package ics

import (
	"slices"
	"time"

	"churchcal/internal/model"
)

const defaultMaxEvents = 20

// Upcoming drops events that ended before the start of today (in loc),
// orders the rest by start and keeps at most maxEvents of them. Events that
// began earlier today are kept.
func Upcoming(events []model.CalendarEvent, now time.Time, loc *time.Location, maxEvents int) []model.CalendarEvent {
	if loc == nil {
		loc = time.UTC
	}
	if maxEvents <= 0 {
		maxEvents = defaultMaxEvents
	}

	n := now.In(loc)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)

	out := make([]model.CalendarEvent, 0, len(events))
	for _, ev := range events {
		last := ev.EndAt
		if last.IsZero() {
			last = ev.StartAt
		}
		if last.Before(today) {
			continue
		}
		out = append(out, ev)
	}

	slices.SortStableFunc(out, func(a, b model.CalendarEvent) int {
		return a.StartAt.Compare(b.StartAt)
	})

	if len(out) > maxEvents {
		out = out[:maxEvents]
	}
	return out
}
