package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/automaxprocs/maxprocs"
	_ "modernc.org/sqlite"

	"clubdash/internal/adapters/email"
	web "clubdash/internal/adapters/http"
	"clubdash/internal/adapters/http/perf"
	"clubdash/internal/adapters/ics"
	"clubdash/internal/adapters/scheduler"
	"clubdash/internal/adapters/storage"
	accountStore "clubdash/internal/adapters/storage/account"
	announcementStore "clubdash/internal/adapters/storage/announcement"
	calendarStore "clubdash/internal/adapters/storage/calendar"
	clubStore "clubdash/internal/adapters/storage/club"
	feedStore "clubdash/internal/adapters/storage/feed"
	financeStore "clubdash/internal/adapters/storage/finance"
	"clubdash/internal/application/orchestrators"
	"clubdash/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := os.Getenv("CLUBDASH_CONFIG")
	if configPath == "" {
		configPath = "clubdash.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Match GOMAXPROCS to the container CPU quota
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		slog.Info("runtime_event", "event", "maxprocs", "detail", fmt.Sprintf(format, args...))
	})); err != nil {
		slog.Warn("runtime_event", "event", "maxprocs_failed", "error", err)
	}

	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	stores := &web.Stores{
		AccountStore:      accountStore.NewSQLiteStore(timedDB),
		ClubStore:         clubStore.NewSQLiteStore(timedDB),
		EventStore:        calendarStore.NewSQLiteStore(timedDB),
		PurchaseStore:     financeStore.NewSQLiteStore(timedDB),
		AnnouncementStore: announcementStore.NewSQLiteStore(timedDB),
		FeedStore:         feedStore.NewSQLiteStore(timedDB),
	}

	// Seed the site admin on an empty database
	adminPassword := cfg.AdminPassword
	if adminPassword == "" {
		adminPassword = "clubdash-dev"
		slog.Warn("auth_event", "event", "dev_admin_password", "username", cfg.AdminUsername)
	}
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, cfg.AdminUsername, cfg.AdminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	if cfg.MailConfigured() {
		web.SetEmailSender(email.NewResendSender(cfg.ResendKey, cfg.MailFrom), cfg.MailFrom, cfg.ReplyTo, true)
		slog.Info("email_event", "event", "sender_configured", "provider", "resend")
	} else {
		web.SetEmailSender(email.NewNoopSender(), cfg.MailFrom, cfg.ReplyTo, false)
		if cfg.IsProduction() {
			slog.Warn("email_event", "event", "sender_disabled", "detail", "resend_key is not set; announcements will not be delivered")
		}
	}

	loc := cfg.Location()
	fetcher := ics.NewFetcher(cfg.FeedTimeout)
	web.SetFeedFetcher(fetcher)
	mux := web.NewMux(cfg.StaticDir, stores, collector, web.Options{
		CSRFKey:     []byte(cfg.CSRFKey),
		Production:  cfg.IsProduction(),
		Location:    loc,
		FeedTimeout: cfg.FeedTimeout,
	})

	// Background jobs: feed refresh and session sweep
	jobs := scheduler.New(loc)
	err = jobs.Add("feed_refresh", cfg.FeedRefresh, 10*time.Minute, func(ctx context.Context) error {
		_, err := orchestrators.ExecuteRefreshFeeds(ctx, web.FeedDeps(fetcher))
		return err
	})
	if err != nil {
		log.Fatalf("failed to schedule feed refresh: %v", err)
	}
	err = jobs.Add("session_sweep", cfg.SessionSweep, time.Minute, func(ctx context.Context) error {
		n := web.Sessions().Sweep()
		slog.Info("auth_event", "event", "sessions_swept", "removed", n)
		return nil
	})
	if err != nil {
		log.Fatalf("failed to schedule session sweep: %v", err)
	}
	jobs.Start()
	for _, name := range []string{"feed_refresh", "session_sweep"} {
		slog.Info("scheduler_event", "event", "next_run", "job", name, "at", jobs.Next(name))
	}
	// Feeds are refreshed once at boot rather than waiting for the first tick.
	go func() {
		if err := jobs.RunNow("feed_refresh"); err != nil {
			slog.Warn("scheduler_event", "event", "initial_refresh_skipped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("server_start", "version", version, "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion(), "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("server_stop", "reason", "signal")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	jobs.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server_stop", "error", err)
	}
}
