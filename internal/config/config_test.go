package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clubdash.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != DefaultAddr || cfg.FeedRefresh != DefaultFeedRefresh || cfg.FeedTimeout != DefaultFeedTimeout {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.MailConfigured() {
		t.Error("mail configured without a key")
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location = %v", cfg.Location())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Errorf("missing file should fall back to defaults: %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
addr: ":9000"
timezone: America/New_York
feed_refresh: "*/10 * * * *"
feed_timeout: 5s
resend_key: re_from_file
`)
	t.Setenv("CLUBDASH_ADDR", ":7000")
	t.Setenv("CLUBDASH_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("Addr = %q, env should win", cfg.Addr)
	}
	if cfg.FeedRefresh != "*/10 * * * *" || cfg.FeedTimeout != 5*time.Second {
		t.Errorf("file values lost: %+v", cfg)
	}
	if !cfg.MailConfigured() {
		t.Error("resend_key from file ignored")
	}
	if lvl, _ := cfg.SlogLevel(); lvl != slog.LevelDebug {
		t.Errorf("level = %v", lvl)
	}
	if cfg.Location().String() != "America/New_York" {
		t.Errorf("Location = %v", cfg.Location())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
		want string
	}{
		{"bad yaml", "addr: [", nil, "parse"},
		{"bad timezone", "timezone: Mars/Olympus", nil, "timezone"},
		{"short csrf key", "csrf_key: short", nil, "csrf_key"},
		{"production without key", "env: production\nadmin_password: x", nil, "csrf_key is required"},
		{"production without admin password", "env: production\ncsrf_key: 0123456789abcdef0123456789abcdef", nil, "admin_password"},
		{"bad log level", "", map[string]string{"CLUBDASH_LOG_LEVEL": "chatty"}, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeFile(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	c := DefaultConfig()
	if !strings.Contains(c.DSN(), "journal_mode(WAL)") || !strings.HasPrefix(c.DSN(), DefaultDBPath+"?") {
		t.Errorf("DSN = %q", c.DSN())
	}
	c.DBPath = ":memory:"
	if c.DSN() != ":memory:" {
		t.Errorf("memory DSN = %q", c.DSN())
	}
}
