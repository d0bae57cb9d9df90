package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	appLog "churchcal/internal/log"
)

// DefaultCalendarURL is the church's public Google Calendar export.
const DefaultCalendarURL = "https://calendar.google.com/calendar/ical/19f330717a76f1f8da42a1c44123c52da4f51da0ddb07dfd61aff43b48d4f62e%40group.calendar.google.com/public/basic.ics"

const (
	defaultListen         = "127.0.0.1:8080"
	defaultTimezone       = "UTC"
	defaultHorizonMonths  = 3
	defaultMaxEvents      = 20
	defaultMaxOccurrences = 200
	defaultFetchTimeout   = 15
	defaultMaxBodyBytes   = 10 << 20
	defaultProbeCron      = "*/15 * * * *"
	defaultLogLevel       = "info"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// CalendarURL is the public ICS feed to collect.
	CalendarURL string `yaml:"calendar_url" json:"calendar_url"`

	// Timezone is the IANA zone used to read date-times without a trailing Z
	// and to decide where "today" starts. TZID parameters in the feed are
	// not consulted.
	Timezone string `yaml:"timezone" json:"timezone"`

	// HorizonMonths bounds recurrence expansion to now + HorizonMonths.
	HorizonMonths int `yaml:"horizon_months" json:"horizon_months"`

	// MaxEvents caps the number of events per response.
	MaxEvents int `yaml:"max_events" json:"max_events"`

	// MaxOccurrences caps recurring events that have no COUNT.
	MaxOccurrences int `yaml:"max_occurrences" json:"max_occurrences"`

	// FetchTimeoutSeconds bounds the outbound feed request.
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds" json:"fetch_timeout_seconds"`

	// MaxBodyBytes rejects feeds larger than this.
	MaxBodyBytes int64 `yaml:"max_body_bytes" json:"max_body_bytes"`

	// ProbeCron is a cron schedule (e.g. "*/15 * * * *") for the background
	// feed probe. "off" disables it.
	ProbeCron string `yaml:"probe_cron" json:"probe_cron"`

	// LogLevel is one of debug, info, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if set, protects every endpoint except /health and CORS
	// preflights.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:              defaultListen,
		CalendarURL:         DefaultCalendarURL,
		Timezone:            defaultTimezone,
		HorizonMonths:       defaultHorizonMonths,
		MaxEvents:           defaultMaxEvents,
		MaxOccurrences:      defaultMaxOccurrences,
		FetchTimeoutSeconds: defaultFetchTimeout,
		MaxBodyBytes:        defaultMaxBodyBytes,
		ProbeCron:           defaultProbeCron,
		LogLevel:            defaultLogLevel,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.CalendarURL == "" {
		c.CalendarURL = DefaultCalendarURL
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.HorizonMonths <= 0 {
		c.HorizonMonths = defaultHorizonMonths
	}
	if c.MaxEvents <= 0 {
		c.MaxEvents = defaultMaxEvents
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = defaultMaxOccurrences
	}
	if c.FetchTimeoutSeconds <= 0 {
		c.FetchTimeoutSeconds = defaultFetchTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.ProbeCron == "" {
		c.ProbeCron = defaultProbeCron
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		c.BasicAuth = nil
	}
}

// FetchTimeout returns FetchTimeoutSeconds as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// ProbeEnabled reports whether the background feed probe should run.
func (c *Config) ProbeEnabled() bool {
	return c.ProbeCron != "" && c.ProbeCron != "off"
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC, err
	}
	return loc, nil
}

// Load reads the YAML config at path. On first run, when the file is
// missing, the defaults are written there and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return cfg, fmt.Errorf("write default config: %w", err)
		}
		appLog.Info("default config written", "path", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save normalizes cfg and stores it at path, readable by the owner only.
// The config may hold basic auth credentials.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return writeFileAtomic(path, data, 0o600)
}

// writeFileAtomic replaces path with data so readers see either the old or
// the new content. Missing parent directories are created with 0700.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
