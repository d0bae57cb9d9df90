package ics

import (
	"context"
	"time"

	appLog "churchcal/internal/log"
	"churchcal/internal/model"
)

// Source yields the raw ICS payload. *Fetcher implements it.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// CollectorConfig holds the shaping parameters of a collection.
type CollectorConfig struct {
	Parse     ParseConfig
	MaxEvents int
}

// Collector fetches the feed and returns the upcoming events. It holds no
// state between calls and is safe for concurrent use.
type Collector struct {
	src Source
	cfg CollectorConfig
	now func() time.Time
}

// NewCollector creates a Collector reading from src.
func NewCollector(src Source, cfg CollectorConfig) *Collector {
	return &Collector{src: src, cfg: cfg, now: time.Now}
}

// WithClock returns a copy of c that uses now as its clock.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	cp := *c
	cp.now = now
	return &cp
}

// Collect fetches, parses and shapes the feed. Fetch errors are returned
// as-is; nothing is returned alongside them.
func (c *Collector) Collect(ctx context.Context) ([]model.CalendarEvent, error) {
	body, err := c.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	now := c.now()
	all := ParseICS(body, now, c.cfg.Parse)
	upcoming := Upcoming(all, now, c.cfg.Parse.Location, c.cfg.MaxEvents)

	appLog.Info("ics collect completed", "parsed", len(all), "upcoming", len(upcoming))
	return upcoming, nil
}
