package calendar

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"clubdash/internal/adapters/storage"
	domain "clubdash/internal/domain/calendar"
)

const eventColumns = "id, club_id, title, event_date, description, location, recurrence, source, created_by, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
// PRE: db is a valid, open database connection with migrations applied
// POST: store is ready for use
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a calendar event.
// PRE: e is a valid Event (Validate() returns nil)
// POST: event is persisted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	source := e.Source
	if source == "" {
		source = domain.SourceClub
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO club_event (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, event_date=excluded.event_date, description=excluded.description,
		   location=excluded.location, recurrence=excluded.recurrence`,
		e.ID, e.ClubID, e.Title, e.Date.String(), e.Description, e.Location,
		domain.NormalizeRecurrence(e.Recurrence), source, e.CreatedBy, storage.FormatTime(e.CreatedAt),
	)
	return err
}

// GetByID retrieves a calendar event by ID.
// PRE: id is non-empty
// POST: returns the event or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	e, ok, err := scanEvent(s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM club_event WHERE id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return domain.Event{}, fmt.Errorf("event not found: %w", err)
	}
	if err != nil {
		return domain.Event{}, err
	}
	if !ok {
		return domain.Event{}, fmt.Errorf("event %s: %w", id, domain.ErrInvalidDate)
	}
	return e, nil
}

// ListByClubRange returns a club's one-off events dated within [from, to],
// feed events included, in date then creation order.
// PRE: from <= to
// POST: rows with unparseable dates are skipped
func (s *SQLiteStore) ListByClubRange(ctx context.Context, clubID string, from, to domain.Date) ([]domain.Event, error) {
	return s.list(ctx,
		"SELECT "+eventColumns+` FROM club_event
		 WHERE club_id = ? AND recurrence = '' AND event_date BETWEEN ? AND ?
		 ORDER BY event_date ASC, created_at ASC, id ASC`,
		clubID, from.String(), to.String(),
	)
}

// ListRecurring returns a club's recurring series that start on or before until.
// POST: rows with unparseable dates are skipped
func (s *SQLiteStore) ListRecurring(ctx context.Context, clubID string, until domain.Date) ([]domain.Event, error) {
	return s.list(ctx,
		"SELECT "+eventColumns+` FROM club_event
		 WHERE club_id = ? AND recurrence <> '' AND event_date <= ?
		 ORDER BY event_date ASC, created_at ASC, id ASC`,
		clubID, until.String(),
	)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, ok, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		if !ok {
			slog.Warn("event_skipped", "id", e.ID, "reason", "unparseable date")
			continue
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Delete removes a calendar event by ID.
// PRE: id is non-empty
// POST: event is removed from storage
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM club_event WHERE id = ?`, id)
	return err
}

// ReplaceSourceEvents swaps every event from source for events in one
// transaction, so readers see either the old set or the new one.
// PRE: every event has been validated
// POST: the club holds exactly events for source
func (s *SQLiteStore) ReplaceSourceEvents(ctx context.Context, clubID, source string, events []domain.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM club_event WHERE club_id = ? AND source = ?", clubID, source); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO club_event (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range events {
		if _, err := stmt.ExecContext(ctx,
			e.ID, clubID, e.Title, e.Date.String(), e.Description, e.Location,
			domain.NormalizeRecurrence(e.Recurrence), source, e.CreatedBy, storage.FormatTime(e.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteBySource removes every event imported from source.
func (s *SQLiteStore) DeleteBySource(ctx context.Context, source string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM club_event WHERE source = ?", source)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanEvent reports ok=false, with the ID filled in, when the stored date
// does not parse.
func scanEvent(scan func(dest ...any) error) (domain.Event, bool, error) {
	var e domain.Event
	var dateStr, created string
	if err := scan(&e.ID, &e.ClubID, &e.Title, &dateStr, &e.Description, &e.Location,
		&e.Recurrence, &e.Source, &e.CreatedBy, &created); err != nil {
		return domain.Event{}, false, err
	}
	e.CreatedAt, _ = storage.ParseTime(created)
	d, err := domain.ParseDate(dateStr)
	if err != nil {
		return e, false, nil
	}
	e.Date = d
	return e, true, nil
}
