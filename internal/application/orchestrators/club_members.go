package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"clubdash/internal/domain/account"
	"clubdash/internal/domain/club"
)

// ClubStoreForMembers defines the membership operations.
type ClubStoreForMembers interface {
	AddMember(ctx context.Context, m club.Membership) error
	RemoveMember(ctx context.Context, clubID, accountID string) error
}

// AccountLookup finds accounts by email.
type AccountLookup interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
}

// MemberChangeInput names a club and the account to add or remove.
type MemberChangeInput struct {
	ClubID string
	Email  string
}

// MembersDeps holds dependencies for the membership orchestrators.
type MembersDeps struct {
	ClubStore    ClubStoreForMembers
	AccountStore AccountLookup
	Now          func() time.Time
}

var (
	ErrEmailRequired   = errors.New("email is required")
	ErrAccountNotFound = errors.New("user not found")
)

func lookupMember(ctx context.Context, input MemberChangeInput, accounts AccountLookup) (account.Account, error) {
	if input.Email == "" {
		return account.Account{}, ErrEmailRequired
	}
	acct, err := accounts.GetByEmail(ctx, input.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return account.Account{}, ErrAccountNotFound
	}
	return acct, err
}

// ExecuteAddMember enrolls the account with the given email.
// PRE: caller belongs to the club
// POST: membership created; club.ErrAlreadyMember when it existed
func ExecuteAddMember(ctx context.Context, input MemberChangeInput, deps MembersDeps) (account.Account, error) {
	acct, err := lookupMember(ctx, input, deps.AccountStore)
	if err != nil {
		return account.Account{}, err
	}
	m := club.Membership{ClubID: input.ClubID, AccountID: acct.ID, Role: club.RoleMember, JoinedAt: deps.Now()}
	if err := m.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := deps.ClubStore.AddMember(ctx, m); err != nil {
		return account.Account{}, err
	}
	slog.Info("club_event", "event", "member_added", "club_id", input.ClubID, "account_id", acct.ID)
	return acct, nil
}

// ExecuteRemoveMember drops the account with the given email from the club.
// PRE: caller belongs to the club
// POST: membership removed; club.ErrNotMember or club.ErrCannotRemoveOwner otherwise
func ExecuteRemoveMember(ctx context.Context, input MemberChangeInput, deps MembersDeps) error {
	acct, err := lookupMember(ctx, input, deps.AccountStore)
	if errors.Is(err, ErrAccountNotFound) {
		return club.ErrNotMember
	}
	if err != nil {
		return err
	}
	if err := deps.ClubStore.RemoveMember(ctx, input.ClubID, acct.ID); err != nil {
		return err
	}
	slog.Info("club_event", "event", "member_removed", "club_id", input.ClubID, "account_id", acct.ID)
	return nil
}
