// Package config loads application settings from an optional YAML file with
// environment variable overrides. Secrets are read from the environment only.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/lk-schedule/schedule-hub/pkg/timeutil"
)

// DefaultFile is read when no path is given and the file exists.
const DefaultFile = "config.yaml"

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`
	LK        LKConfig        `yaml:"lk"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Source is the file the configuration was read from, empty for env only.
	Source string `yaml:"-"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string      `yaml:"name" env:"APP_NAME" env-default:"schedule-hub"`
	Environment Environment `yaml:"env" env:"APP_ENV" env-default:"development"`
	Debug       bool        `yaml:"debug" env:"APP_DEBUG" env-default:"false"`

	// LogLevel overrides the environment's default level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Timezone for dates and schedules. The cabinet works in Samara time.
	Timezone string `yaml:"timezone" env:"APP_TIMEZONE" env-default:"Europe/Samara"`
}

// StoreConfig selects and configures the relational store.
type StoreConfig struct {
	// Driver is "sqlite" (default, a local file) or "postgres".
	Driver string `yaml:"driver" env:"STORE_DRIVER" env-default:"sqlite"`

	SQLitePath        string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"schedule.db"`
	SQLiteBusyTimeout int    `yaml:"sqlite_busy_timeout_ms" env:"SQLITE_BUSY_TIMEOUT_MS" env-default:"5000"`

	// DatabaseURL carries the password, so it is never read from YAML.
	DatabaseURL      string `yaml:"-" env:"DATABASE_URL"`
	PostgresMaxConns int32  `yaml:"postgres_max_conns" env:"PG_MAX_CONNS" env-default:"4"`
}

// RedisConfig holds the optional query cache settings.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_CACHE_TTL" env-default:"10m"`
}

// LKConfig holds personal cabinet settings.
type LKConfig struct {
	BaseURL   string `yaml:"base_url" env:"LK_BASE_URL" env-default:"https://lk.samgtu.ru"`
	Username  string `yaml:"username" env:"LK_USERNAME"`
	Password  string `yaml:"-" env:"LK_PASSWORD"`
	UserAgent string `yaml:"user_agent" env:"LK_USER_AGENT"`

	Timeout     time.Duration `yaml:"timeout" env:"LK_TIMEOUT" env-default:"30s"`
	MaxAttempts int           `yaml:"max_attempts" env:"LK_MAX_ATTEMPTS" env-default:"3"`

	// RangeStart and RangeEnd (YYYY-MM-DD) pin the fetched range.
	// When both are empty the current semester is fetched.
	RangeStart string `yaml:"range_start" env:"LK_RANGE_START"`
	RangeEnd   string `yaml:"range_end" env:"LK_RANGE_END"`
}

// SchedulerConfig holds the watch mode settings.
type SchedulerConfig struct {
	// Schedule is "@every <duration>" or a 5-field cron expression.
	Schedule string        `yaml:"schedule" env:"SYNC_SCHEDULE" env-default:"@every 6h"`
	Timeout  time.Duration `yaml:"timeout" env:"SYNC_TIMEOUT" env-default:"5m"`
}

// ══════════════════════════════════════════════════════════════════════════════
// LOADING
// ══════════════════════════════════════════════════════════════════════════════

// Load reads path (or config.yaml if path is empty and the file exists) and
// applies environment overrides. Without a file only the environment is used.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		cfg.Source = path
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.LK.BaseURL = strings.TrimRight(strings.TrimSpace(c.LK.BaseURL), "/")
	c.LK.RangeStart = strings.TrimSpace(c.LK.RangeStart)
	c.LK.RangeEnd = strings.TrimSpace(c.LK.RangeEnd)
}

// Validate checks if the configuration is valid. All problems are reported at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.App.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Sprintf("APP_ENV must be development or production, got %q", c.App.Environment))
	}

	if _, err := c.App.Location(); err != nil {
		errs = append(errs, err.Error())
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, "SQLITE_PATH is required for the sqlite store")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres store")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER must be sqlite or postgres, got %q", c.Store.Driver))
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "REDIS_ADDR is required when REDIS_ENABLED is set")
	}

	if u, err := url.Parse(c.LK.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("LK_BASE_URL must be an absolute URL, got %q", c.LK.BaseURL))
	}
	if c.LK.MaxAttempts < 1 {
		errs = append(errs, "LK_MAX_ATTEMPTS must be at least 1")
	}
	if _, _, _, err := c.LK.Range(); err != nil {
		errs = append(errs, err.Error())
	}

	if strings.TrimSpace(c.Scheduler.Schedule) == "" {
		errs = append(errs, "SYNC_SCHEDULE must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DERIVED VALUES
// ══════════════════════════════════════════════════════════════════════════════

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// Location resolves Timezone. Europe/Samara maps to a fixed UTC+4 zone so
// the binary does not depend on the system tz database.
func (a AppConfig) Location() (*time.Location, error) {
	if a.Timezone == "" || a.Timezone == timeutil.SamaraTZ.String() {
		return timeutil.SamaraTZ, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q: %w", a.Timezone, err)
	}
	return loc, nil
}

// ErrMissingCredentials is returned by RequireCredentials.
var ErrMissingCredentials = errors.New("LK_USERNAME and LK_PASSWORD are required to fetch the schedule")

// RequireCredentials fails unless both cabinet credentials are set.
func (l LKConfig) RequireCredentials() error {
	if l.Username == "" || l.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Range returns the pinned fetch range. ok is false when none is configured.
func (l LKConfig) Range() (start, end time.Time, ok bool, err error) {
	if l.RangeStart == "" && l.RangeEnd == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if l.RangeStart == "" || l.RangeEnd == "" {
		return time.Time{}, time.Time{}, false, errors.New("LK_RANGE_START and LK_RANGE_END must be set together")
	}

	start, err = timeutil.ParseDate(l.RangeStart)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("LK_RANGE_START: %w", err)
	}
	end, err = timeutil.ParseDate(l.RangeEnd)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("LK_RANGE_END: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, false, errors.New("LK_RANGE_END must be after LK_RANGE_START")
	}

	return start, end, true, nil
}
