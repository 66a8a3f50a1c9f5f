package finance

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"clubdash/internal/adapters/storage"
	"clubdash/internal/domain/calendar"
	domain "clubdash/internal/domain/finance"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new purchase store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a purchase.
// PRE: p has been validated
// POST: purchase persisted
func (s *SQLiteStore) Save(ctx context.Context, p domain.Purchase) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO purchase (id, club_id, name, amount_cents, purchase_date, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, amount_cents=excluded.amount_cents, purchase_date=excluded.purchase_date`,
		p.ID, p.ClubID, p.Name, p.AmountCents, p.Date.String(), p.CreatedBy, storage.FormatTime(p.CreatedAt),
	)
	return err
}

// ListByClub returns a club's purchases, newest first.
func (s *SQLiteStore) ListByClub(ctx context.Context, clubID string) ([]domain.Purchase, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, club_id, name, amount_cents, purchase_date, created_by, created_at
		 FROM purchase WHERE club_id = ?
		 ORDER BY purchase_date DESC, created_at DESC`, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		var date, created string
		if err := rows.Scan(&p.ID, &p.ClubID, &p.Name, &p.AmountCents, &date, &p.CreatedBy, &created); err != nil {
			return nil, err
		}
		if p.Date, err = calendar.ParseDate(date); err != nil {
			slog.Warn("purchase_date_unparseable", "id", p.ID, "value", date)
		}
		p.CreatedAt, _ = storage.ParseTime(created)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes one of a club's purchases.
// POST: returns an error wrapping sql.ErrNoRows when the club has no such purchase
func (s *SQLiteStore) Delete(ctx context.Context, clubID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM purchase WHERE club_id = ? AND id = ?", clubID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("purchase not found: %w", sql.ErrNoRows)
	}
	return nil
}
