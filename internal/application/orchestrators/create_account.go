package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"clubdash/internal/domain/account"

	"github.com/google/uuid"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	GetByUsername(ctx context.Context, username string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
}

var (
	ErrEmailAlreadyExists = errors.New("an account with this email already exists")
	ErrUsernameTaken      = errors.New("that username is already taken")
)

// ExecuteCreateAccount coordinates account creation.
// PRE: Valid username, email, password >= 8 chars, valid role
// POST: Account created with hashed password
// INVARIANT: Username and email are unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (account.Account, error) {
	acct := account.Account{
		ID:        uuid.New().String(),
		Username:  strings.TrimSpace(input.Username),
		Email:     account.NormalizeEmail(input.Email),
		Role:      input.Role,
		CreatedAt: time.Now(),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}

	if err := ensureAbsent(deps.AccountStore.GetByEmail(ctx, acct.Email)); err != nil {
		if errors.Is(err, errPresent) {
			return account.Account{}, ErrEmailAlreadyExists
		}
		return account.Account{}, err
	}
	if err := ensureAbsent(deps.AccountStore.GetByUsername(ctx, acct.Username)); err != nil {
		if errors.Is(err, errPresent) {
			return account.Account{}, ErrUsernameTaken
		}
		return account.Account{}, err
	}

	// Set password (handles hashing and length validation)
	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Account{}, err
	}

	slog.Info("auth_event", "event", "account_created", "username", acct.Username, "role", acct.Role)
	return acct, nil
}

var errPresent = errors.New("record exists")

// ensureAbsent turns a lookup result into nil when nothing was found.
func ensureAbsent(_ account.Account, err error) error {
	switch {
	case err == nil:
		return errPresent
	case errors.Is(err, sql.ErrNoRows):
		return nil
	default:
		return err
	}
}

// ExecuteSeedAdmin creates a default admin account if no accounts exist.
// PRE: Database is initialized
// POST: Admin account created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, username, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Accounts already exist, skip seeding
	}

	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     account.RoleAdmin,
	}, deps); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "username", username, "email", email)
	return nil
}
