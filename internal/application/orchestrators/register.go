package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"clubdash/internal/domain/account"
	"clubdash/internal/domain/club"

	"github.com/google/uuid"
)

// ClubStoreForRegister defines the club operations registration needs.
type ClubStoreForRegister interface {
	GetByName(ctx context.Context, name string) (club.Club, error)
	Save(ctx context.Context, c club.Club) error
	AddMember(ctx context.Context, m club.Membership) error
}

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Password2 string
	ClubName  string // optional: creates the club, or joins it when it exists
}

// RegisterDeps holds dependencies for Register.
type RegisterDeps struct {
	AccountStore AccountStoreForCreate
	ClubStore    ClubStoreForRegister
	Now          func() time.Time
}

// RegisterResult is the new account and the club it ended up in, if any.
type RegisterResult struct {
	Account     account.Account
	Club        club.Club
	CreatedClub bool
}

// ExecuteRegister creates a member account and optionally puts it in a club.
// PRE: none
// POST: account saved; when ClubName is set the account owns the new club or
// is a member of the existing one
func ExecuteRegister(ctx context.Context, input RegisterInput, deps RegisterDeps) (RegisterResult, error) {
	if input.Password != input.Password2 {
		return RegisterResult{}, account.ErrPasswordMismatch
	}

	acct, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Role:     account.RoleMember,
	}, CreateAccountDeps{AccountStore: deps.AccountStore})
	if err != nil {
		return RegisterResult{}, err
	}

	result := RegisterResult{Account: acct}
	name := strings.TrimSpace(input.ClubName)
	if name == "" {
		return result, nil
	}

	now := deps.Now()
	existing, err := deps.ClubStore.GetByName(ctx, name)
	switch {
	case err == nil:
		err = deps.ClubStore.AddMember(ctx, club.Membership{
			ClubID: existing.ID, AccountID: acct.ID, Role: club.RoleMember, JoinedAt: now,
		})
		if err != nil {
			return RegisterResult{}, err
		}
		result.Club = existing
	case errors.Is(err, sql.ErrNoRows):
		c := club.Club{ID: uuid.New().String(), Name: name, OwnerID: acct.ID, CreatedAt: now}
		if err := c.Validate(); err != nil {
			return RegisterResult{}, err
		}
		if err := deps.ClubStore.Save(ctx, c); err != nil {
			return RegisterResult{}, err
		}
		result.Club = c
		result.CreatedClub = true
	default:
		return RegisterResult{}, err
	}

	slog.Info("auth_event", "event", "registered", "username", acct.Username, "club_id", result.Club.ID, "created_club", result.CreatedClub)
	return result, nil
}
