package model

import "time"

// CalendarEvent is one concrete occurrence of a calendar entry, as returned
// to the Agenda page. Recurring entries produce one CalendarEvent per
// occurrence; they share summary/description/location/allDay and differ in
// id, start and end.
type CalendarEvent struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`

	// Start / End are "YYYY-MM-DD" for all-day values and
	// "YYYY-MM-DDTHH:MM:SS" (with a trailing Z for UTC values) otherwise.
	Start  string `json:"start"`
	End    string `json:"end"`
	AllDay bool   `json:"allDay"`

	// StartAt / EndAt are the resolved instants behind Start / End, used for
	// filtering and ordering.
	StartAt time.Time `json:"-"`
	EndAt   time.Time `json:"-"`
}

// EventsResponse is the success body of the calendar-events endpoint.
type EventsResponse struct {
	Events []CalendarEvent `json:"events"`
}
