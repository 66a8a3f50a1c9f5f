package account

import (
	"context"

	domain "clubdash/internal/domain/account"
)

// Store persists Account state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	GetByLogin(ctx context.Context, login string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter SearchFilter) ([]domain.Account, error)
	CountSearch(ctx context.Context, query string) (int, error)
	Count(ctx context.Context) (int, error)
}

// SearchFilter narrows Search to usernames or emails containing Query.
type SearchFilter struct {
	Query  string
	Limit  int
	Offset int
}
