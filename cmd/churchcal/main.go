package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"churchcal/internal/config"
	"churchcal/internal/ics"
	appLog "churchcal/internal/log"
	"churchcal/internal/model"
	"churchcal/internal/monitor"
	"churchcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("unknown timezone; using UTC", err, "timezone", conf.Timezone)
	}

	appLog.Info("churchcal starting",
		"version", "0.1.0",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"horizon_months", conf.HorizonMonths,
		"max_events", conf.MaxEvents,
		"probe_cron", conf.ProbeCron,
		"once", flags.once,
	)

	fetcher := ics.NewFetcher(conf.CalendarURL, ics.FetcherOptions{
		Timeout:      conf.FetchTimeout(),
		MaxBodyBytes: conf.MaxBodyBytes,
	})
	collector := ics.NewCollector(fetcher, ics.CollectorConfig{
		Parse: ics.ParseConfig{
			Location:       loc,
			HorizonMonths:  conf.HorizonMonths,
			MaxOccurrences: conf.MaxOccurrences,
		},
		MaxEvents: conf.MaxEvents,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flags.once {
		if err := runOnce(ctx, collector, os.Stdout); err != nil {
			appLog.Error("collect failed", err)
			os.Exit(1)
		}
		return
	}

	var wg sync.WaitGroup
	if conf.ProbeEnabled() {
		mon, err := monitor.New(collector, conf.ProbeCron)
		if err != nil {
			appLog.Error("feed monitor disabled", err)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				mon.Run(ctx)
			}()
		}
	}

	srv := web.NewServer(conf, collector)
	if err := srv.Run(ctx); err != nil {
		appLog.Error("http server failed", err)
		stop()
		wg.Wait()
		os.Exit(1)
	}

	wg.Wait()
	appLog.Info("churchcal exiting")
}

// runOnce collects once and writes the response body to w.
func runOnce(ctx context.Context, collector *ics.Collector, w io.Writer) error {
	events, err := collector.Collect(ctx)
	if err != nil {
		return err
	}
	if events == nil {
		events = []model.CalendarEvent{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(model.EventsResponse{Events: events})
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/churchcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Collect the feed once, print the events JSON and exit")

	flag.Parse()

	return cfg
}
