package projections

import (
	"context"

	accountStore "clubdash/internal/adapters/storage/account"
	announcementStore "clubdash/internal/adapters/storage/announcement"
	domainAccount "clubdash/internal/domain/account"
	domainAnnouncement "clubdash/internal/domain/announcement"
	domainCalendar "clubdash/internal/domain/calendar"
	domainClub "clubdash/internal/domain/club"
	domainFinance "clubdash/internal/domain/finance"
)

// AccountStore interface for account queries.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (domainAccount.Account, error)
	Search(ctx context.Context, filter accountStore.SearchFilter) ([]domainAccount.Account, error)
	CountSearch(ctx context.Context, query string) (int, error)
}

// ClubStore interface for club and membership queries.
type ClubStore interface {
	GetByID(ctx context.Context, id string) (domainClub.Club, error)
	ListForAccount(ctx context.Context, accountID string) ([]domainClub.Club, error)
	ListMembers(ctx context.Context, clubID string) ([]domainClub.Member, error)
}

// EventStore interface for club event queries.
type EventStore interface {
	ListByClubRange(ctx context.Context, clubID string, from, to domainCalendar.Date) ([]domainCalendar.Event, error)
	ListRecurring(ctx context.Context, clubID string, until domainCalendar.Date) ([]domainCalendar.Event, error)
}

// PurchaseStore interface for ledger queries.
type PurchaseStore interface {
	ListByClub(ctx context.Context, clubID string) ([]domainFinance.Purchase, error)
}

// AnnouncementStore interface for announcement queries.
type AnnouncementStore interface {
	List(ctx context.Context, filter announcementStore.ListFilter) ([]domainAnnouncement.Announcement, error)
}
