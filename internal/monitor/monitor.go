package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "churchcal/internal/log"
	"churchcal/internal/metrics"
	"churchcal/internal/model"
)

const probeTimeout = 30 * time.Second

// Collector is the subset of ics.Collector the monitor needs.
type Collector interface {
	Collect(ctx context.Context) ([]model.CalendarEvent, error)
}

// Monitor periodically collects the feed and reports whether it is healthy.
// Probe results go to logs and gauges only; requests never read them.
type Monitor struct {
	collector Collector
	cron      *cron.Cron
	now       func() time.Time
}

// New creates a Monitor that probes on schedule, a standard five-field cron
// expression.
func New(collector Collector, schedule string) (*Monitor, error) {
	m := &Monitor{
		collector: collector,
		cron:      cron.New(),
		now:       time.Now,
	}
	if _, err := m.cron.AddFunc(schedule, m.probe); err != nil {
		return nil, fmt.Errorf("monitor: bad schedule %q: %w", schedule, err)
	}
	return m, nil
}

// Run starts the schedule and blocks until ctx is canceled. Running probes
// are allowed to finish before it returns.
func (m *Monitor) Run(ctx context.Context) {
	m.cron.Start()
	appLog.Info("feed monitor started", "next", m.nextRun())

	<-ctx.Done()
	<-m.cron.Stop().Done()
	appLog.Info("feed monitor stopped")
}

// Probe runs one collection and records its outcome.
func (m *Monitor) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	events, err := m.collector.Collect(ctx)
	metrics.RecordProbe(err == nil, len(events), m.now())
	if err != nil {
		appLog.Error("feed probe failed", err)
		return err
	}
	appLog.Info("feed probe ok", "upcoming", len(events))
	return nil
}

func (m *Monitor) probe() {
	_ = m.Probe(context.Background())
}

func (m *Monitor) nextRun() string {
	entries := m.cron.Entries()
	if len(entries) == 0 || entries[0].Next.IsZero() {
		return ""
	}
	return entries[0].Next.Format(time.RFC3339)
}
