package club

import (
	"context"

	domain "clubdash/internal/domain/club"
)

// Store persists clubs and their memberships.
type Store interface {
	Save(ctx context.Context, c domain.Club) error
	GetByID(ctx context.Context, id string) (domain.Club, error)
	GetByName(ctx context.Context, name string) (domain.Club, error)
	Resolve(ctx context.Context, ref string) (domain.Club, error)
	ListForAccount(ctx context.Context, accountID string) ([]domain.Club, error)
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, m domain.Membership) error
	RemoveMember(ctx context.Context, clubID, accountID string) error
	GetMembership(ctx context.Context, clubID, accountID string) (domain.Membership, error)
	ListMembers(ctx context.Context, clubID string) ([]domain.Member, error)
}
