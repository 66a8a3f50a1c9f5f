package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// migration is one forward-only schema step.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in order; never edit a released entry, append a new one.
var migrations = []migration{
	{
		Version: 1,
		Name:    "initial schema",
		SQL: `
	CREATE TABLE account (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE club (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE COLLATE NOCASE,
		description TEXT NOT NULL DEFAULT '',
		owner_id TEXT NOT NULL,
		budget_cents INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		FOREIGN KEY (owner_id) REFERENCES account(id)
	);

	CREATE TABLE club_member (
		club_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		role TEXT NOT NULL,
		joined_at TEXT NOT NULL,
		PRIMARY KEY (club_id, account_id),
		FOREIGN KEY (club_id) REFERENCES club(id) ON DELETE CASCADE,
		FOREIGN KEY (account_id) REFERENCES account(id) ON DELETE CASCADE
	);

	CREATE TABLE club_event (
		id TEXT PRIMARY KEY,
		club_id TEXT NOT NULL,
		title TEXT NOT NULL,
		event_date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		recurrence TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT 'club',
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		FOREIGN KEY (club_id) REFERENCES club(id) ON DELETE CASCADE
	);
	CREATE INDEX idx_club_event_club_date ON club_event(club_id, event_date);

	CREATE TABLE purchase (
		id TEXT PRIMARY KEY,
		club_id TEXT NOT NULL,
		name TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		purchase_date TEXT NOT NULL,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		FOREIGN KEY (club_id) REFERENCES club(id) ON DELETE CASCADE
	);
	CREATE INDEX idx_purchase_club ON purchase(club_id, purchase_date);
	`,
	},
	{
		Version: 2,
		Name:    "announcements",
		SQL: `
	CREATE TABLE announcement (
		id TEXT PRIMARY KEY,
		club_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		status TEXT NOT NULL,
		recipient_count INTEGER NOT NULL DEFAULT 0,
		failure_reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		sent_at TEXT,
		FOREIGN KEY (club_id) REFERENCES club(id) ON DELETE CASCADE
	);
	CREATE INDEX idx_announcement_club ON announcement(club_id, created_at);
	`,
	},
	{
		Version: 3,
		Name:    "calendar feeds",
		SQL: `
	CREATE TABLE feed (
		id TEXT PRIMARY KEY,
		club_id TEXT NOT NULL,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		last_fetched_at TEXT,
		last_error TEXT NOT NULL DEFAULT '',
		event_count INTEGER NOT NULL DEFAULT 0,
		UNIQUE (club_id, url),
		FOREIGN KEY (club_id) REFERENCES club(id) ON DELETE CASCADE
	);
	CREATE INDEX idx_club_event_source ON club_event(source);
	`,
	},
}

// LatestSchemaVersion returns the version the binary migrates to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].Version
}

// SchemaVersion returns the highest applied migration, or 0 for a fresh database.
// PRE: db is a valid database connection
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return 0, fmt.Errorf("failed to create schema_version: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// When dbPath names a file and the database already holds a schema, a
// snapshot is written next to it before the first pending step.
// PRE: db is a valid database connection
// POST: schema is at LatestSchemaVersion; a failed step leaves earlier steps applied
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current > 0 && current < LatestSchemaVersion() && dbPath != "" && !strings.HasPrefix(dbPath, ":memory:") {
		backup := fmt.Sprintf("%s.bak-v%d", dbPath, current)
		if _, err := db.Exec("VACUUM INTO ?", backup); err != nil {
			return fmt.Errorf("failed to snapshot database before migration: %w", err)
		}
		slog.Info("schema_backup", "path", backup, "version", current)
	}
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		slog.Info("schema_migrated", "version", m.Version, "name", m.Name)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Name, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}
	return tx.Commit()
}
