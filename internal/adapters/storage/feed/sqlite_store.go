package feed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"clubdash/internal/adapters/storage"
	domain "clubdash/internal/domain/feed"
)

const feedColumns = "id, club_id, name, url, created_by, created_at, last_fetched_at, last_error, event_count"

// ErrDuplicateURL is returned when a club subscribes to the same URL twice.
var ErrDuplicateURL = errors.New("club is already subscribed to this feed")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new feed store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a feed, including its last refresh outcome.
// PRE: f has been validated
// POST: feed persisted, or ErrDuplicateURL
func (s *SQLiteStore) Save(ctx context.Context, f domain.Feed) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feed (`+feedColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, url=excluded.url, last_fetched_at=excluded.last_fetched_at,
		   last_error=excluded.last_error, event_count=excluded.event_count`,
		f.ID, f.ClubID, f.Name, f.URL, f.CreatedBy, storage.FormatTime(f.CreatedAt),
		storage.NullableTime(f.LastFetchedAt), f.LastError, f.EventCount,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: feed.club_id, feed.url") {
		return ErrDuplicateURL
	}
	return err
}

// GetByID retrieves a feed by ID.
// POST: Returns the feed or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Feed, error) {
	f, err := scanFeed(s.db.QueryRowContext(ctx, "SELECT "+feedColumns+" FROM feed WHERE id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return domain.Feed{}, fmt.Errorf("feed not found: %w", err)
	}
	return f, err
}

// ListByClub returns a club's feeds by name.
func (s *SQLiteStore) ListByClub(ctx context.Context, clubID string) ([]domain.Feed, error) {
	return s.list(ctx, "SELECT "+feedColumns+" FROM feed WHERE club_id = ? ORDER BY name COLLATE NOCASE", clubID)
}

// ListAll returns every feed, for the refresh job.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Feed, error) {
	return s.list(ctx, "SELECT "+feedColumns+" FROM feed ORDER BY club_id, created_at")
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Feed, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Feed
	for rows.Next() {
		f, err := scanFeed(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Delete removes a feed. Its cached events are removed by the caller.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM feed WHERE id = ?", id)
	return err
}

func scanFeed(scan func(dest ...any) error) (domain.Feed, error) {
	var f domain.Feed
	var created string
	var fetched sql.NullString
	if err := scan(&f.ID, &f.ClubID, &f.Name, &f.URL, &f.CreatedBy, &created,
		&fetched, &f.LastError, &f.EventCount); err != nil {
		return domain.Feed{}, err
	}
	f.CreatedAt, _ = storage.ParseTime(created)
	if fetched.Valid {
		f.LastFetchedAt, _ = storage.ParseTime(fetched.String)
	}
	return f, nil
}
