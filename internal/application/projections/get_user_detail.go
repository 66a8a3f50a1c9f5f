package projections

import (
	"context"

	domainAccount "clubdash/internal/domain/account"
)

// ClubSummary is one club in a user's club list.
type ClubSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsOwner bool   `json:"is_owner"`
}

// UserDetail is the signed-in account with its clubs.
type UserDetail struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Role     string        `json:"role"`
	Clubs    []ClubSummary `json:"clubs"`
}

// IsAdmin reports whether the account has the admin role.
func (u UserDetail) IsAdmin() bool {
	return u.Role == domainAccount.RoleAdmin
}

// GetUserDetailDeps holds dependencies for QueryUserDetail.
type GetUserDetailDeps struct {
	AccountStore AccountStore
	ClubStore    ClubStore
}

// QueryUserDetail returns an account and the clubs it belongs to.
// PRE: accountID is non-empty
// POST: Clubs is never nil
func QueryUserDetail(ctx context.Context, accountID string, deps GetUserDetailDeps) (UserDetail, error) {
	acct, err := deps.AccountStore.GetByID(ctx, accountID)
	if err != nil {
		return UserDetail{}, err
	}
	clubs, err := deps.ClubStore.ListForAccount(ctx, accountID)
	if err != nil {
		return UserDetail{}, err
	}
	detail := UserDetail{
		ID:       acct.ID,
		Username: acct.Username,
		Email:    acct.Email,
		Role:     acct.Role,
		Clubs:    make([]ClubSummary, 0, len(clubs)),
	}
	for _, c := range clubs {
		detail.Clubs = append(detail.Clubs, ClubSummary{ID: c.ID, Name: c.Name, IsOwner: c.OwnerID == accountID})
	}
	return detail, nil
}
