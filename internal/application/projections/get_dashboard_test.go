package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	domainAnnouncement "clubdash/internal/domain/announcement"
	"clubdash/internal/domain/calendar"
	domainClub "clubdash/internal/domain/club"
	domainFinance "clubdash/internal/domain/finance"
)

func dashboardDeps() (GetDashboardDeps, *mockClubStore, *mockPurchaseStore, *mockAnnouncementStore) {
	clubs := newMockClubStore()
	clubs.add(domainClub.Club{ID: "c1", Name: "Chess", OwnerID: "a1", BudgetCents: 10000},
		domainClub.Member{AccountID: "a1", Role: domainClub.RoleOwner},
		domainClub.Member{AccountID: "a2", Role: domainClub.RoleMember},
	)
	purchases := &mockPurchaseStore{purchases: []domainFinance.Purchase{
		{ID: "p1", ClubID: "c1", Name: "Boards", AmountCents: 2500},
	}}
	var list []domainAnnouncement.Announcement
	for i := 0; i < 7; i++ {
		list = append(list, domainAnnouncement.Announcement{ID: string(rune('a' + i)), ClubID: "c1"})
	}
	announcements := &mockAnnouncementStore{list: list}
	deps := GetDashboardDeps{
		ClubStore:         clubs,
		CalendarDeps:      calendarDeps(ev("e1", "Fair", calendar.NewDate(2024, time.March, 13))),
		PurchaseStore:     purchases,
		AnnouncementStore: announcements,
	}
	return deps, clubs, purchases, announcements
}

func TestQueryGetDashboard(t *testing.T) {
	deps, _, _, announcements := dashboardDeps()

	got, err := QueryGetDashboard(context.Background(), GetDashboardQuery{ClubID: "c1", AccountID: "a1"}, deps)
	if err != nil {
		t.Fatalf("QueryGetDashboard: %v", err)
	}
	if got.Club.Name != "Chess" || !got.IsOwner || got.MemberCount != 2 {
		t.Errorf("club panel = %+v owner=%v members=%d", got.Club, got.IsOwner, got.MemberCount)
	}
	if got.Preview.View.Mode != calendar.ModePreview || got.Preview.View.Title != "March 2024" {
		t.Errorf("preview = %s %q", got.Preview.View.Mode, got.Preview.View.Title)
	}
	if dayOf(t, got.Preview.View, calendar.NewDate(2024, time.March, 13)).EventCount != 1 {
		t.Error("preview should show the Fair")
	}
	if got.Finance == nil || got.Finance.FundCents != 7500 {
		t.Errorf("finance = %+v", got.Finance)
	}
	if len(got.Announcements) != DashboardAnnouncementLimit || announcements.filters[0].Limit != DashboardAnnouncementLimit {
		t.Errorf("announcements = %d", len(got.Announcements))
	}
}

func TestQueryGetDashboard_OptionalPanelsFailSoft(t *testing.T) {
	deps, _, purchases, announcements := dashboardDeps()
	purchases.err = errStoreDown
	announcements.err = errStoreDown

	got, err := QueryGetDashboard(context.Background(), GetDashboardQuery{ClubID: "c1", AccountID: "a2"}, deps)
	if err != nil {
		t.Fatalf("QueryGetDashboard: %v", err)
	}
	if got.IsOwner {
		t.Error("a2 is not the owner")
	}
	if got.Finance != nil || got.Announcements != nil {
		t.Errorf("failed panels should be empty: %+v %+v", got.Finance, got.Announcements)
	}

	deps.PurchaseStore = nil
	deps.AnnouncementStore = nil
	if _, err := QueryGetDashboard(context.Background(), GetDashboardQuery{ClubID: "c1"}, deps); err != nil {
		t.Errorf("nil optional stores: %v", err)
	}
}

func TestQueryGetDashboard_UnknownClub(t *testing.T) {
	deps, _, _, _ := dashboardDeps()
	if _, err := QueryGetDashboard(context.Background(), GetDashboardQuery{ClubID: "nope"}, deps); err == nil {
		t.Error("expected error for unknown club")
	}
}

func TestQueryGetDashboard_CalendarFailureIsEmptyNotFatal(t *testing.T) {
	deps, _, _, _ := dashboardDeps()
	deps.CalendarDeps.Source = ClubEventSource{Events: &mockEventStore{err: errStoreDown}}
	got, err := QueryGetDashboard(context.Background(), GetDashboardQuery{ClubID: "c1"}, deps)
	if errors.Is(err, errStoreDown) {
		t.Fatal("a failed event fetch should render an empty month")
	}
	if err != nil {
		t.Fatalf("QueryGetDashboard: %v", err)
	}
	for _, d := range got.Preview.View.Days {
		if d.HasEvents() {
			t.Fatalf("%s has events", d.Date)
		}
	}
}
