package ics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churchcal/internal/model"
)

func timed(id string, start time.Time, d time.Duration) model.CalendarEvent {
	return model.CalendarEvent{ID: id, Summary: id, StartAt: start, EndAt: start.Add(d)}
}

func TestUpcoming_CapAndOrder(t *testing.T) {
	var events []model.CalendarEvent
	// Reverse order so sorting is exercised.
	for i := 30; i >= 1; i-- {
		events = append(events, timed(fmt.Sprintf("e%02d", i), testNow.AddDate(0, 0, i), time.Hour))
	}

	got := Upcoming(events, testNow, nil, 20)

	require.Len(t, got, 20)
	assert.Equal(t, "e01", got[0].ID)
	assert.Equal(t, "e20", got[19].ID)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].StartAt.Before(got[i].StartAt))
	}
}

func TestUpcoming_DefaultCap(t *testing.T) {
	var events []model.CalendarEvent
	for i := 0; i < 25; i++ {
		events = append(events, timed(fmt.Sprint(i), testNow.AddDate(0, 0, i), 0))
	}
	assert.Len(t, Upcoming(events, testNow, nil, 0), defaultMaxEvents)
}

func TestUpcoming_PastFilter(t *testing.T) {
	midnight := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	events := []model.CalendarEvent{
		timed("yesterday", midnight.Add(-3*time.Hour), time.Hour),
		timed("ended-this-morning", midnight.Add(7*time.Hour), time.Hour),
		timed("ends-at-midnight", midnight.Add(-time.Hour), time.Hour),
		{ID: "no-end-today", StartAt: midnight.Add(time.Hour)},
		{ID: "no-end-yesterday", StartAt: midnight.Add(-time.Hour)},
		timed("tomorrow", midnight.AddDate(0, 0, 1), time.Hour),
	}

	got := Upcoming(events, testNow, nil, 20)

	assert.Equal(t, []string{"ends-at-midnight", "no-end-today", "ended-this-morning", "tomorrow"}, ids(got))
}

func TestUpcoming_TodayInLocation(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	// 01:00 UTC on the 16th is still the 15th in BRT.
	now := time.Date(2026, 10, 16, 1, 0, 0, 0, time.UTC)
	ev := timed("late", time.Date(2026, 10, 15, 10, 0, 0, 0, brt), time.Hour)

	assert.Len(t, Upcoming([]model.CalendarEvent{ev}, now, brt, 20), 1)
	assert.Empty(t, Upcoming([]model.CalendarEvent{ev}, now, time.UTC, 20))
}

func TestUpcoming_StableForEqualStarts(t *testing.T) {
	start := testNow.Add(24 * time.Hour)
	events := []model.CalendarEvent{timed("b", start, 0), timed("a", start, 0), timed("c", start, 0)}

	assert.Equal(t, []string{"b", "a", "c"}, ids(Upcoming(events, testNow, nil, 20)))
}
