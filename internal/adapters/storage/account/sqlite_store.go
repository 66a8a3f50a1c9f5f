package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"clubdash/internal/adapters/storage"
	domain "clubdash/internal/domain/account"
)

const accountColumns = "id, username, email, password_hash, role, created_at, failed_logins, locked_until"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AccountStore.
// PRE: db has migrations applied
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return s.getOne(ctx, "SELECT "+accountColumns+" FROM account WHERE id = ?", id)
}

// GetByEmail retrieves an Account by email, ignoring case.
// PRE: email is non-empty
// POST: Returns the entity or an error wrapping sql.ErrNoRows if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return s.getOne(ctx, "SELECT "+accountColumns+" FROM account WHERE email = ?", domain.NormalizeEmail(email))
}

// GetByUsername retrieves an Account by exact username.
func (s *SQLiteStore) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	return s.getOne(ctx, "SELECT "+accountColumns+" FROM account WHERE username = ?", username)
}

// GetByLogin resolves what a user typed into the login box: an email when it
// contains '@' and matches one, otherwise a username.
// PRE: login is non-empty
// POST: Returns the entity or an error wrapping sql.ErrNoRows if neither matches
func (s *SQLiteStore) GetByLogin(ctx context.Context, login string) (domain.Account, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		a, err := s.GetByEmail(ctx, login)
		if err == nil || !errors.Is(err, sql.ErrNoRows) {
			return a, err
		}
	}
	return s.GetByUsername(ctx, login)
}

func (s *SQLiteStore) getOne(ctx context.Context, query string, arg string) (domain.Account, error) {
	entity, err := scanAccount(s.db.QueryRowContext(ctx, query, arg).Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	fields := []string{"id", "username", "email", "password_hash", "role", "created_at", "failed_logins", "locked_until"}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(fields)), ", ")
	updates := []string{
		"username=excluded.username",
		"email=excluded.email",
		"password_hash=excluded.password_hash",
		"role=excluded.role",
		"failed_logins=excluded.failed_logins",
		"locked_until=excluded.locked_until",
	}

	query := fmt.Sprintf(
		"INSERT INTO account (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		placeholders,
		strings.Join(updates, ", "),
	)

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Username,
		domain.NormalizeEmail(entity.Email),
		entity.PasswordHash,
		entity.Role,
		storage.FormatTime(entity.CreatedAt),
		entity.FailedLogins,
		storage.NullableTime(entity.LockedUntil),
	)
	return err
}

// Delete removes an Account from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed, with its memberships
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// Search lists accounts whose username or email contains filter.Query,
// ordered by username.
// PRE: filter.Limit > 0
// POST: Returns at most Limit accounts starting at Offset
func (s *SQLiteStore) Search(ctx context.Context, filter SearchFilter) ([]domain.Account, error) {
	where, args := searchClause(filter.Query)
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM account"+where+" ORDER BY username COLLATE NOCASE ASC LIMIT ? OFFSET ?",
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// CountSearch returns how many accounts Search would page through.
func (s *SQLiteStore) CountSearch(ctx context.Context, query string) (int, error) {
	where, args := searchClause(query)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account"+where, args...).Scan(&count)
	return count, err
}

// Count returns the total number of accounts.
// PRE: none
// POST: Returns total account count
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&count)
	return count, err
}

func searchClause(q string) (string, []any) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", nil
	}
	like := "%" + escapeLike(strings.ToLower(q)) + "%"
	return ` WHERE lower(username) LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\'`, []any{like, like}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt string
	var lockedUntil sql.NullString
	err := scan(
		&entity.ID,
		&entity.Username,
		&entity.Email,
		&entity.PasswordHash,
		&entity.Role,
		&createdAt,
		&entity.FailedLogins,
		&lockedUntil,
	)
	if err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	if lockedUntil.Valid && lockedUntil.String != "" {
		entity.LockedUntil, _ = storage.ParseTime(lockedUntil.String)
	}
	return entity, nil
}
