package projections

import (
	"context"
	"log/slog"

	domainAnnouncement "clubdash/internal/domain/announcement"
	"clubdash/internal/domain/calendar"
	domainClub "clubdash/internal/domain/club"
	domainFinance "clubdash/internal/domain/finance"
)

// DashboardAnnouncementLimit is how many recent announcements the dashboard shows.
const DashboardAnnouncementLimit = 5

// GetDashboardQuery carries input for the club dashboard.
type GetDashboardQuery struct {
	ClubID    string
	AccountID string
	Selected  calendar.Date // optional: the preview opens on its month
}

// GetDashboardDeps holds dependencies for the club dashboard.
type GetDashboardDeps struct {
	ClubStore         ClubStore
	CalendarDeps      GetCalendarViewDeps
	PurchaseStore     PurchaseStore     // optional: nil skips the finance panel
	AnnouncementStore AnnouncementStore // optional: nil skips recent announcements
}

// DashboardResult carries the output of the club dashboard.
type DashboardResult struct {
	Club        domainClub.Club
	IsOwner     bool
	MemberCount int

	Preview CalendarViewResult

	Finance       *domainFinance.Summary
	Announcements []domainAnnouncement.Announcement
}

// QueryGetDashboard aggregates the club dashboard: a preview calendar, the
// member count, the fund balance and recent announcements. Only the club
// lookup and the calendar are required; the other panels are dropped when
// their store fails.
// PRE: ClubID is non-empty
// POST: Preview.View.Mode is ModePreview
func QueryGetDashboard(ctx context.Context, q GetDashboardQuery, deps GetDashboardDeps) (DashboardResult, error) {
	c, err := deps.ClubStore.GetByID(ctx, q.ClubID)
	if err != nil {
		return DashboardResult{}, err
	}
	result := DashboardResult{Club: c, IsOwner: c.OwnerID == q.AccountID}

	preview, err := QueryCalendarView(ctx, CalendarViewQuery{
		ClubID:   q.ClubID,
		Mode:     calendar.ModePreview,
		Selected: q.Selected,
	}, deps.CalendarDeps)
	if err != nil {
		return DashboardResult{}, err
	}
	result.Preview = preview

	if members, err := deps.ClubStore.ListMembers(ctx, q.ClubID); err == nil {
		result.MemberCount = len(members)
	} else {
		slog.Warn("dashboard_event", "event", "members_failed", "club_id", q.ClubID, "error", err)
	}

	if deps.PurchaseStore != nil {
		if purchases, err := deps.PurchaseStore.ListByClub(ctx, q.ClubID); err == nil {
			summary := domainFinance.Summarize(c.BudgetCents, purchases)
			result.Finance = &summary
		} else {
			slog.Warn("dashboard_event", "event", "finance_failed", "club_id", q.ClubID, "error", err)
		}
	}

	if deps.AnnouncementStore != nil {
		if list, err := QueryAnnouncements(ctx, q.ClubID, DashboardAnnouncementLimit, deps.AnnouncementStore); err == nil {
			result.Announcements = list
		} else {
			slog.Warn("dashboard_event", "event", "announcements_failed", "club_id", q.ClubID, "error", err)
		}
	}

	return result, nil
}
