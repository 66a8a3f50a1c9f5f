package calendar

import (
	"context"

	domain "clubdash/internal/domain/calendar"
)

// Store persists club calendar events, including cached feed events.
type Store interface {
	Save(ctx context.Context, e domain.Event) error
	GetByID(ctx context.Context, id string) (domain.Event, error)
	ListByClubRange(ctx context.Context, clubID string, from, to domain.Date) ([]domain.Event, error)
	ListRecurring(ctx context.Context, clubID string, until domain.Date) ([]domain.Event, error)
	Delete(ctx context.Context, id string) error
	ReplaceSourceEvents(ctx context.Context, clubID, source string, events []domain.Event) error
	DeleteBySource(ctx context.Context, source string) (int64, error)
}
