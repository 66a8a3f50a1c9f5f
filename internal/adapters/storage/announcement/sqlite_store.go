package announcement

import (
	"context"
	"database/sql"
	"fmt"

	"clubdash/internal/adapters/storage"
	domain "clubdash/internal/domain/announcement"
)

const announcementColumns = `id, club_id, subject, body, sender_id, status, recipient_count,
	failure_reason, created_at, sent_at`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Announcement by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Announcement, error) {
	a, err := scanAnnouncement(s.db.QueryRowContext(ctx,
		"SELECT "+announcementColumns+" FROM announcement WHERE id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return domain.Announcement{}, fmt.Errorf("announcement not found: %w", err)
	}
	return a, err
}

// Save persists an Announcement.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, a domain.Announcement) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcement (`+announcementColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, recipient_count=excluded.recipient_count,
		   failure_reason=excluded.failure_reason, sent_at=excluded.sent_at`,
		a.ID, a.ClubID, a.Subject, a.Body, a.SenderID, a.Status, a.RecipientCount,
		a.FailureReason, storage.FormatTime(a.CreatedAt), storage.NullableTime(a.SentAt))
	return err
}

// List retrieves a club's announcements matching the filter.
// PRE: filter.ClubID is non-empty
// POST: Returns matching announcements, newest first
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Announcement, error) {
	query := "SELECT " + announcementColumns + " FROM announcement WHERE club_id = ?"
	args := []any{filter.ClubID}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnnouncement(scan func(dest ...any) error) (domain.Announcement, error) {
	var a domain.Announcement
	var created string
	var sent sql.NullString
	if err := scan(&a.ID, &a.ClubID, &a.Subject, &a.Body, &a.SenderID, &a.Status,
		&a.RecipientCount, &a.FailureReason, &created, &sent); err != nil {
		return domain.Announcement{}, err
	}
	a.CreatedAt, _ = storage.ParseTime(created)
	if sent.Valid {
		a.SentAt, _ = storage.ParseTime(sent.String)
	}
	return a, nil
}
