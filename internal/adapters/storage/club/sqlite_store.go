package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"clubdash/internal/adapters/storage"
	domain "clubdash/internal/domain/club"
)

const clubColumns = "c.id, c.name, c.description, c.owner_id, c.budget_cents, c.created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new club store.
// PRE: db has migrations applied
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a club. A new club's owner is enrolled as a member
// in the same transaction.
// PRE: c has been validated
// POST: club persisted; owner holds an owner membership
func (s *SQLiteStore) Save(ctx context.Context, c domain.Club) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO club (id, name, description, owner_id, budget_cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, description=excluded.description,
		   owner_id=excluded.owner_id, budget_cents=excluded.budget_cents`,
		c.ID, strings.TrimSpace(c.Name), c.Description, c.OwnerID, c.BudgetCents, storage.FormatTime(c.CreatedAt),
	)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO club_member (club_id, account_id, role, joined_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(club_id, account_id) DO UPDATE SET role=excluded.role`,
		c.ID, c.OwnerID, domain.RoleOwner, storage.FormatTime(c.CreatedAt),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID retrieves a club by ID.
// PRE: id is non-empty
// POST: Returns the club or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Club, error) {
	return s.getOne(ctx, "SELECT "+clubColumns+" FROM club c WHERE c.id = ?", id)
}

// GetByName retrieves a club by name, ignoring case.
func (s *SQLiteStore) GetByName(ctx context.Context, name string) (domain.Club, error) {
	return s.getOne(ctx, "SELECT "+clubColumns+" FROM club c WHERE c.name = ?", strings.TrimSpace(name))
}

// Resolve looks a club up by ID, then by name. URLs may carry either.
func (s *SQLiteStore) Resolve(ctx context.Context, ref string) (domain.Club, error) {
	c, err := s.GetByID(ctx, ref)
	if err == nil || !errors.Is(err, sql.ErrNoRows) {
		return c, err
	}
	return s.GetByName(ctx, ref)
}

func (s *SQLiteStore) getOne(ctx context.Context, query, arg string) (domain.Club, error) {
	c, err := scanClub(s.db.QueryRowContext(ctx, query, arg).Scan)
	if err == sql.ErrNoRows {
		return domain.Club{}, fmt.Errorf("club not found: %w", err)
	}
	return c, err
}

// ListForAccount returns the clubs an account belongs to, by name.
func (s *SQLiteStore) ListForAccount(ctx context.Context, accountID string) ([]domain.Club, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+clubColumns+` FROM club c
		 JOIN club_member m ON m.club_id = c.id
		 WHERE m.account_id = ?
		 ORDER BY c.name ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Club
	for rows.Next() {
		c, err := scanClub(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a club; memberships, events, purchases and feeds cascade.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM club WHERE id = ?", id)
	return err
}

// AddMember enrolls an account in a club.
// PRE: m has been validated
// POST: membership persisted, or domain.ErrAlreadyMember if it already existed
func (s *SQLiteStore) AddMember(ctx context.Context, m domain.Membership) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO club_member (club_id, account_id, role, joined_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(club_id, account_id) DO NOTHING`,
		m.ClubID, m.AccountID, m.Role, storage.FormatTime(m.JoinedAt),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlreadyMember
	}
	return nil
}

// RemoveMember drops an account from a club. The owner cannot be removed.
// POST: membership gone, or domain.ErrNotMember / domain.ErrCannotRemoveOwner
func (s *SQLiteStore) RemoveMember(ctx context.Context, clubID, accountID string) error {
	m, err := s.GetMembership(ctx, clubID, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotMember
	}
	if err != nil {
		return err
	}
	if m.IsOwner() {
		return domain.ErrCannotRemoveOwner
	}
	_, err = s.db.ExecContext(ctx, "DELETE FROM club_member WHERE club_id = ? AND account_id = ?", clubID, accountID)
	return err
}

// GetMembership returns one account's membership in a club.
// POST: Returns the membership or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetMembership(ctx context.Context, clubID, accountID string) (domain.Membership, error) {
	var m domain.Membership
	var joined string
	err := s.db.QueryRowContext(ctx,
		"SELECT club_id, account_id, role, joined_at FROM club_member WHERE club_id = ? AND account_id = ?",
		clubID, accountID,
	).Scan(&m.ClubID, &m.AccountID, &m.Role, &joined)
	if err == sql.ErrNoRows {
		return domain.Membership{}, fmt.Errorf("membership not found: %w", err)
	}
	if err != nil {
		return domain.Membership{}, err
	}
	m.JoinedAt, _ = storage.ParseTime(joined)
	return m, nil
}

// ListMembers returns a club's members with their account details, owner first.
func (s *SQLiteStore) ListMembers(ctx context.Context, clubID string) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.username, a.email, m.role, m.joined_at
		 FROM club_member m JOIN account a ON a.id = m.account_id
		 WHERE m.club_id = ?
		 ORDER BY CASE m.role WHEN 'owner' THEN 0 ELSE 1 END, a.username COLLATE NOCASE ASC`, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		var m domain.Member
		var joined string
		if err := rows.Scan(&m.AccountID, &m.Username, &m.Email, &m.Role, &joined); err != nil {
			return nil, err
		}
		m.JoinedAt, _ = storage.ParseTime(joined)
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanClub(scan func(dest ...any) error) (domain.Club, error) {
	var c domain.Club
	var created string
	if err := scan(&c.ID, &c.Name, &c.Description, &c.OwnerID, &c.BudgetCents, &created); err != nil {
		return domain.Club{}, err
	}
	c.CreatedAt, _ = storage.ParseTime(created)
	return c, nil
}
