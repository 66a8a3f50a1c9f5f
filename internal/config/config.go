// Package config loads server settings from an optional YAML file with
// CLUBDASH_* environment variables layered on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"gopkg.in/yaml.v3"
)

// Config is the top-level server configuration.
type Config struct {
	Addr      string `yaml:"addr" env:"CLUBDASH_ADDR"`
	Env       string `yaml:"env" env:"CLUBDASH_ENV"`
	DBPath    string `yaml:"db_path" env:"CLUBDASH_DB"`
	StaticDir string `yaml:"static_dir" env:"CLUBDASH_STATIC_DIR"`
	LogLevel  string `yaml:"log_level" env:"CLUBDASH_LOG_LEVEL"`

	// Timezone is the IANA zone that decides which day "today" is and where
	// timed feed events land.
	Timezone string `yaml:"timezone" env:"CLUBDASH_TZ"`

	// CSRFKey must be 32 bytes in production; development generates one.
	CSRFKey string `yaml:"csrf_key" env:"CLUBDASH_CSRF_KEY"`

	AdminUsername string `yaml:"admin_username" env:"CLUBDASH_ADMIN_USERNAME"`
	AdminEmail    string `yaml:"admin_email" env:"CLUBDASH_ADMIN_EMAIL"`
	AdminPassword string `yaml:"admin_password" env:"CLUBDASH_ADMIN_PASSWORD"`

	ResendKey string `yaml:"resend_key" env:"CLUBDASH_RESEND_KEY"`
	MailFrom  string `yaml:"mail_from" env:"CLUBDASH_MAIL_FROM"`
	ReplyTo   string `yaml:"reply_to" env:"CLUBDASH_REPLY_TO"`

	// FeedRefresh and SessionSweep are cron specs ("@every 30m", "*/15 * * * *").
	FeedRefresh  string        `yaml:"feed_refresh" env:"CLUBDASH_FEED_REFRESH"`
	FeedTimeout  time.Duration `yaml:"feed_timeout" env:"CLUBDASH_FEED_TIMEOUT"`
	SessionSweep string        `yaml:"session_sweep" env:"CLUBDASH_SESSION_SWEEP"`
}

// Defaults.
const (
	DefaultAddr         = ":8080"
	DefaultDBPath       = "clubdash.db"
	DefaultTimezone     = "UTC"
	DefaultFeedRefresh  = "@every 30m"
	DefaultFeedTimeout  = 15 * time.Second
	DefaultSessionSweep = "@every 1h"
	DefaultMailFrom     = "Club Dashboard <clubs@example.edu>"
	DefaultAdminEmail   = "admin@example.edu"
	DefaultAdminUser    = "admin"
)

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Addr:          DefaultAddr,
		Env:           "development",
		DBPath:        DefaultDBPath,
		StaticDir:     "static",
		LogLevel:      "info",
		Timezone:      DefaultTimezone,
		AdminUsername: DefaultAdminUser,
		AdminEmail:    DefaultAdminEmail,
		MailFrom:      DefaultMailFrom,
		FeedRefresh:   DefaultFeedRefresh,
		FeedTimeout:   DefaultFeedTimeout,
		SessionSweep:  DefaultSessionSweep,
	}
}

// Load reads path (a missing file or empty path means defaults), overlays
// environment variables, then normalizes and validates.
// PRE: none
// POST: returned config passed Validate
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Info("config_file_missing", "path", path)
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize fills zero values left by partial files.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = d.Env
	}
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.AdminUsername == "" {
		c.AdminUsername = d.AdminUsername
	}
	if c.AdminEmail == "" {
		c.AdminEmail = d.AdminEmail
	}
	if c.MailFrom == "" {
		c.MailFrom = d.MailFrom
	}
	if c.FeedRefresh == "" {
		c.FeedRefresh = d.FeedRefresh
	}
	if c.FeedTimeout <= 0 {
		c.FeedTimeout = d.FeedTimeout
	}
	if c.SessionSweep == "" {
		c.SessionSweep = d.SessionSweep
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	if c.CSRFKey != "" && len(c.CSRFKey) != 32 {
		return errors.New("csrf_key must be exactly 32 bytes")
	}
	if c.IsProduction() {
		if c.CSRFKey == "" {
			return errors.New("csrf_key is required in production")
		}
		if c.AdminPassword == "" {
			return errors.New("admin_password is required in production")
		}
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// IsProduction reports whether Env is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MailConfigured reports whether real delivery is available.
func (c *Config) MailConfigured() bool {
	return c.ResendKey != ""
}

// Location returns the configured zone, UTC if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel maps LogLevel onto slog.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// DSN returns the SQLite connection string with WAL, a busy timeout and
// foreign keys enabled.
func (c *Config) DSN() string {
	if strings.HasPrefix(c.DBPath, ":memory:") {
		return c.DBPath
	}
	return c.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
}
