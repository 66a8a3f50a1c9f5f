package projections

import (
	"context"

	announcementStore "clubdash/internal/adapters/storage/announcement"
	domainAnnouncement "clubdash/internal/domain/announcement"
)

// QueryAnnouncements lists a club's announcements, newest first.
func QueryAnnouncements(ctx context.Context, clubID string, limit int, store AnnouncementStore) ([]domainAnnouncement.Announcement, error) {
	list, err := store.List(ctx, announcementStore.ListFilter{ClubID: clubID, Limit: limit})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domainAnnouncement.Announcement{}
	}
	return list, nil
}
