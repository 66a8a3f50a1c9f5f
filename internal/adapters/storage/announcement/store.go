package announcement

import (
	"context"

	domain "clubdash/internal/domain/announcement"
)

// Store persists club announcements.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Announcement, error)
	Save(ctx context.Context, a domain.Announcement) error
	List(ctx context.Context, filter ListFilter) ([]domain.Announcement, error)
}

// ListFilter specifies criteria for listing announcements.
type ListFilter struct {
	ClubID string // required
	Status string // empty = all
	Limit  int    // 0 = no limit
}
