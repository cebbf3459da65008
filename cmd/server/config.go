package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration. Environment variables provide the
// defaults, command-line flags override them.
type Config struct {
	Port           int      `env:"PORT" envDefault:"8080"`
	DBPath         string   `env:"DB_PATH" envDefault:"calendar.db"`
	CalendarConfig string   `env:"CALENDAR_CONFIG"`
	Timezone       string   `env:"CALENDAR_TZ" envDefault:"Local"`
	AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`
	Scenario       string   `env:"SCENARIO"`
}

// loadConfig parses the environment, then the flags in args.
func loadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (\":memory:\" for in-memory)")
	fs.StringVar(&cfg.CalendarConfig, "calendar", cfg.CalendarConfig, "calendar config file (.json, .yaml)")
	fs.StringVar(&cfg.Timezone, "tz", cfg.Timezone, "IANA location calendar units snap in")
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "demo scenario to load at startup")
	origins := fs.String("cors", strings.Join(cfg.AllowedOrigins, ","), "comma-separated CORS origins")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.AllowedOrigins = strings.Split(*origins, ",")
	return cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
