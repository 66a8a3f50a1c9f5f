package finance

import (
	"context"

	domain "clubdash/internal/domain/finance"
)

// Store persists club purchases.
type Store interface {
	Save(ctx context.Context, p domain.Purchase) error
	ListByClub(ctx context.Context, clubID string) ([]domain.Purchase, error)
	Delete(ctx context.Context, clubID, id string) error
}
