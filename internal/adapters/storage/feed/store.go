package feed

import (
	"context"

	domain "clubdash/internal/domain/feed"
)

// Store persists calendar feed subscriptions.
type Store interface {
	Save(ctx context.Context, f domain.Feed) error
	GetByID(ctx context.Context, id string) (domain.Feed, error)
	ListByClub(ctx context.Context, clubID string) ([]domain.Feed, error)
	ListAll(ctx context.Context) ([]domain.Feed, error)
	Delete(ctx context.Context, id string) error
}
