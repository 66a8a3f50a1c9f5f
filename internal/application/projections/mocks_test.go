package projections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	accountStore "clubdash/internal/adapters/storage/account"
	announcementStore "clubdash/internal/adapters/storage/announcement"
	domainAccount "clubdash/internal/domain/account"
	domainAnnouncement "clubdash/internal/domain/announcement"
	"clubdash/internal/domain/calendar"
	domainClub "clubdash/internal/domain/club"
	domainFinance "clubdash/internal/domain/finance"
)

var errStoreDown = errors.New("store unavailable")

func ev(id, title string, d calendar.Date) calendar.Event {
	return calendar.Event{ID: id, ClubID: "c1", Title: title, Date: d}
}

type mockEventStore struct {
	events []calendar.Event
	err    error
}

// ListByClubRange returns seeded one-off events dated within the range.
// PRE: from <= to
// POST: Returns matching events in seed order
func (m *mockEventStore) ListByClubRange(_ context.Context, clubID string, from, to calendar.Date) ([]calendar.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []calendar.Event
	for _, e := range m.events {
		if e.ClubID == clubID && !e.IsRecurring() && !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListRecurring returns seeded series that start on or before until.
func (m *mockEventStore) ListRecurring(_ context.Context, clubID string, until calendar.Date) ([]calendar.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []calendar.Event
	for _, e := range m.events {
		if e.ClubID == clubID && e.IsRecurring() && !e.Date.After(until) {
			out = append(out, e)
		}
	}
	return out, nil
}

// sourceFunc adapts a function to EventSource.
type sourceFunc func(ctx context.Context, clubID string, year, month int) ([]calendar.Event, error)

func (f sourceFunc) FetchEvents(ctx context.Context, clubID string, year, month int) ([]calendar.Event, error) {
	return f(ctx, clubID, year, month)
}

type mockClubStore struct {
	clubs   map[string]domainClub.Club
	members map[string][]domainClub.Member
	byAcct  map[string][]string
	listErr error
}

func newMockClubStore() *mockClubStore {
	return &mockClubStore{
		clubs:   map[string]domainClub.Club{},
		members: map[string][]domainClub.Member{},
		byAcct:  map[string][]string{},
	}
}

func (m *mockClubStore) add(c domainClub.Club, members ...domainClub.Member) {
	m.clubs[c.ID] = c
	m.members[c.ID] = members
	for _, mem := range members {
		m.byAcct[mem.AccountID] = append(m.byAcct[mem.AccountID], c.ID)
	}
}

// GetByID returns a seeded club.
// PRE: id is non-empty
// POST: Returns the club or an error wrapping sql.ErrNoRows
func (m *mockClubStore) GetByID(_ context.Context, id string) (domainClub.Club, error) {
	c, ok := m.clubs[id]
	if !ok {
		return domainClub.Club{}, fmt.Errorf("club not found: %w", sql.ErrNoRows)
	}
	return c, nil
}

// ListForAccount returns the clubs the account belongs to.
func (m *mockClubStore) ListForAccount(_ context.Context, accountID string) ([]domainClub.Club, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domainClub.Club
	for _, id := range m.byAcct[accountID] {
		out = append(out, m.clubs[id])
	}
	return out, nil
}

// ListMembers returns the seeded roster.
func (m *mockClubStore) ListMembers(_ context.Context, clubID string) ([]domainClub.Member, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.members[clubID], nil
}

type mockAccountStore struct {
	accounts []domainAccount.Account
	filters  []accountStore.SearchFilter
}

// GetByID returns a seeded account.
func (m *mockAccountStore) GetByID(_ context.Context, id string) (domainAccount.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return domainAccount.Account{}, fmt.Errorf("account not found: %w", sql.ErrNoRows)
}

func (m *mockAccountStore) matches(q string) []domainAccount.Account {
	q = strings.ToLower(q)
	var out []domainAccount.Account
	for _, a := range m.accounts {
		if strings.Contains(strings.ToLower(a.Username), q) || strings.Contains(strings.ToLower(a.Email), q) {
			out = append(out, a)
		}
	}
	return out
}

// Search returns one page of matching accounts.
func (m *mockAccountStore) Search(_ context.Context, f accountStore.SearchFilter) ([]domainAccount.Account, error) {
	m.filters = append(m.filters, f)
	all := m.matches(f.Query)
	if f.Offset >= len(all) {
		return nil, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, nil
}

// CountSearch counts matching accounts.
func (m *mockAccountStore) CountSearch(_ context.Context, q string) (int, error) {
	return len(m.matches(q)), nil
}

type mockPurchaseStore struct {
	purchases []domainFinance.Purchase
	err       error
}

// ListByClub returns the seeded purchases for the club.
func (m *mockPurchaseStore) ListByClub(_ context.Context, clubID string) ([]domainFinance.Purchase, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domainFinance.Purchase
	for _, p := range m.purchases {
		if p.ClubID == clubID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockAnnouncementStore struct {
	list    []domainAnnouncement.Announcement
	filters []announcementStore.ListFilter
	err     error
}

// List returns seeded announcements up to the filter's limit.
func (m *mockAnnouncementStore) List(_ context.Context, f announcementStore.ListFilter) ([]domainAnnouncement.Announcement, error) {
	m.filters = append(m.filters, f)
	if m.err != nil {
		return nil, m.err
	}
	out := m.list
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
