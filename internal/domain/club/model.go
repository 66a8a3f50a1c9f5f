package club

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 1000
)

// Membership role constants
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Domain errors
var (
	ErrEmptyName            = errors.New("club name cannot be empty")
	ErrNameTooLong          = errors.New("club name cannot exceed 100 characters")
	ErrNoOwner              = errors.New("club must have an owner")
	ErrNegativeBudget       = errors.New("club budget cannot be negative")
	ErrAlreadyMember        = errors.New("user is already a member of this club")
	ErrNotMember            = errors.New("user is not a member of this club")
	ErrCannotRemoveOwner    = errors.New("the club owner cannot be removed")
	ErrDescriptionTooLong   = errors.New("club description cannot exceed 1000 characters")
	ErrIncompleteMembership = errors.New("membership requires club and account")
	ErrInvalidMemberRole    = errors.New("membership role must be 'owner' or 'member'")
)

// Club is a student organization with a calendar, a budget and members.
type Club struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	BudgetCents int64
	CreatedAt   time.Time
}

// Validate checks if the Club has valid data.
// PRE: Club struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name is non-empty, OwnerID is set, budget is not negative
func (c *Club) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(c.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if c.OwnerID == "" {
		return ErrNoOwner
	}
	if c.BudgetCents < 0 {
		return ErrNegativeBudget
	}
	return nil
}

// Membership links an account to a club.
type Membership struct {
	ClubID    string
	AccountID string
	Role      string
	JoinedAt  time.Time
}

// Validate checks the membership's invariants.
func (m *Membership) Validate() error {
	if m.ClubID == "" || m.AccountID == "" {
		return ErrIncompleteMembership
	}
	if m.Role != RoleOwner && m.Role != RoleMember {
		return ErrInvalidMemberRole
	}
	return nil
}

// IsOwner returns true if the membership carries the owner role.
// INVARIANT: Role field is not mutated
func (m *Membership) IsOwner() bool {
	return m.Role == RoleOwner
}

// Member is a club member as shown in member lists.
type Member struct {
	AccountID string
	Username  string
	Email     string
	Role      string
	JoinedAt  time.Time
}
