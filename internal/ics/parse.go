package ics

import (
	"fmt"
	"time"

	appLog "churchcal/internal/log"
	"churchcal/internal/model"
)

// ParseConfig controls how a feed is turned into events.
type ParseConfig struct {
	// Location is used for naive (no trailing Z) values. If nil, UTC is used.
	Location *time.Location

	// HorizonMonths bounds recurrence expansion to now + HorizonMonths.
	// If zero, defaultHorizonMonths is used.
	HorizonMonths int

	// MaxOccurrences caps recurring events that carry no COUNT.
	MaxOccurrences int
}

// ParseICS parses an ICS payload into concrete events. Recurring VEVENTs
// are expanded up to now + HorizonMonths and EXDATE values are removed.
//
// Blocks without SUMMARY, or whose DTSTART cannot be resolved, are skipped.
// The result is in document order; see Upcoming for filtering and sorting.
func ParseICS(body []byte, now time.Time, cfg ParseConfig) []model.CalendarEvent {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	expandCfg := ExpandConfig{
		Horizon:        HorizonFrom(now, cfg.HorizonMonths),
		MaxOccurrences: cfg.MaxOccurrences,
	}

	blocks := SplitEvents(Unfold(string(body)))
	events := make([]model.CalendarEvent, 0, len(blocks))

	for i, block := range blocks {
		raw := extractFields(i+1, block)
		if raw.Summary == "" {
			appLog.Debug("ics: vevent without summary skipped", "index", raw.Index, "uid", raw.UID)
			continue
		}
		if raw.DTStart == "" {
			appLog.Debug("ics: vevent without dtstart skipped", "index", raw.Index, "uid", raw.UID)
			continue
		}

		start, err := ParseValue(raw.DTStart, cfg.Location)
		if err != nil {
			appLog.Debug("ics: vevent with bad dtstart skipped", "index", raw.Index, "uid", raw.UID, "err", err)
			continue
		}
		end := start
		if raw.DTEnd != "" {
			if v, err := ParseValue(raw.DTEnd, cfg.Location); err == nil {
				end = v
			} else {
				appLog.Debug("ics: bad dtend, using dtstart", "index", raw.Index, "uid", raw.UID, "err", err)
			}
		}

		if raw.RRule != "" {
			events = append(events, expandRaw(raw, start, end, cfg.Location, expandCfg)...)
			continue
		}

		events = append(events, newEvent(raw, eventID(raw), start, end))
	}

	return events
}

// expandRaw emits one event per occurrence of a recurring VEVENT, dropping
// occurrences whose rendered start is listed in EXDATE.
func expandRaw(raw rawEvent, start, end Value, loc *time.Location, cfg ExpandConfig) []model.CalendarEvent {
	excluded := make(map[string]struct{}, len(raw.ExDates))
	for _, ex := range raw.ExDates {
		v, err := ParseValue(ex, loc)
		if err != nil {
			appLog.Debug("ics: bad exdate ignored", "uid", raw.UID, "exdate", ex)
			continue
		}
		excluded[v.Render()] = struct{}{}
	}

	rule := ParseRule(raw.RRule, loc)
	occs := Expand(rule, start.Time, end.Time.Sub(start.Time), cfg)

	days := spanDays(start.Time, end.Time)

	base := eventID(raw)
	out := make([]model.CalendarEvent, 0, len(occs))
	for _, occ := range occs {
		s := start.at(occ.Start)
		key := s.Render()
		if _, skip := excluded[key]; skip {
			continue
		}
		e := start.at(occ.End)
		if start.AllDay {
			// Calendar days, not elapsed hours.
			e = start.at(occ.Start.AddDate(0, 0, days))
		}
		out = append(out, newEvent(raw, base+"_"+key, s, e))
	}
	return out
}

func newEvent(raw rawEvent, id string, start, end Value) model.CalendarEvent {
	return model.CalendarEvent{
		ID:          id,
		Summary:     raw.Summary,
		Description: raw.Description,
		Location:    raw.Location,
		Start:       start.Render(),
		End:         end.Render(),
		AllDay:      start.AllDay,
		StartAt:     start.Time,
		EndAt:       end.Time,
	}
}

// eventID is the UID, or a positional marker that is only stable within one
// parse of one document.
func eventID(raw rawEvent) string {
	if raw.UID != "" {
		return raw.UID
	}
	return fmt.Sprintf("event-%d", raw.Index)
}
