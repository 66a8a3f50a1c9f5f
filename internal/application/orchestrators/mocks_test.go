package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	emailAdapter "clubdash/internal/adapters/email"
	"clubdash/internal/domain/account"
	"clubdash/internal/domain/announcement"
	"clubdash/internal/domain/calendar"
	"clubdash/internal/domain/club"
	"clubdash/internal/domain/feed"
	"clubdash/internal/domain/finance"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func nowFn() time.Time { return fixedNow }

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type mockAccountStore struct {
	accounts map[string]account.Account
	saveErr  error
}

func newMockAccountStore(accts ...account.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: make(map[string]account.Account)}
	for _, a := range accts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *mockAccountStore) GetByID(ctx context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, sql.ErrNoRows
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == account.NormalizeEmail(email) {
			return a, nil
		}
	}
	return account.Account{}, sql.ErrNoRows
}

func (m *mockAccountStore) GetByUsername(ctx context.Context, username string) (account.Account, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Username, username) {
			return a, nil
		}
	}
	return account.Account{}, sql.ErrNoRows
}

func (m *mockAccountStore) GetByLogin(ctx context.Context, login string) (account.Account, error) {
	if strings.Contains(login, "@") {
		if a, err := m.GetByEmail(ctx, login); err == nil {
			return a, nil
		}
	}
	return m.GetByUsername(ctx, login)
}

func (m *mockAccountStore) Save(ctx context.Context, a account.Account) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Count(ctx context.Context) (int, error) {
	return len(m.accounts), nil
}

type mockClubStore struct {
	clubs   map[string]club.Club
	members map[string]map[string]club.Membership // club -> account -> membership
	emails  map[string]string                     // account -> email, for ListMembers
}

func newMockClubStore() *mockClubStore {
	return &mockClubStore{
		clubs:   make(map[string]club.Club),
		members: make(map[string]map[string]club.Membership),
		emails:  make(map[string]string),
	}
}

func (m *mockClubStore) GetByID(ctx context.Context, id string) (club.Club, error) {
	if c, ok := m.clubs[id]; ok {
		return c, nil
	}
	return club.Club{}, fmt.Errorf("club not found: %w", sql.ErrNoRows)
}

func (m *mockClubStore) GetByName(ctx context.Context, name string) (club.Club, error) {
	for _, c := range m.clubs {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return club.Club{}, fmt.Errorf("club not found: %w", sql.ErrNoRows)
}

func (m *mockClubStore) Save(ctx context.Context, c club.Club) error {
	m.clubs[c.ID] = c
	if m.members[c.ID] == nil {
		m.members[c.ID] = make(map[string]club.Membership)
	}
	m.members[c.ID][c.OwnerID] = club.Membership{ClubID: c.ID, AccountID: c.OwnerID, Role: club.RoleOwner, JoinedAt: c.CreatedAt}
	return nil
}

func (m *mockClubStore) AddMember(ctx context.Context, ms club.Membership) error {
	if m.members[ms.ClubID] == nil {
		m.members[ms.ClubID] = make(map[string]club.Membership)
	}
	if _, ok := m.members[ms.ClubID][ms.AccountID]; ok {
		return club.ErrAlreadyMember
	}
	m.members[ms.ClubID][ms.AccountID] = ms
	return nil
}

func (m *mockClubStore) RemoveMember(ctx context.Context, clubID, accountID string) error {
	ms, ok := m.members[clubID][accountID]
	if !ok {
		return club.ErrNotMember
	}
	if ms.IsOwner() {
		return club.ErrCannotRemoveOwner
	}
	delete(m.members[clubID], accountID)
	return nil
}

func (m *mockClubStore) GetMembership(ctx context.Context, clubID, accountID string) (club.Membership, error) {
	if ms, ok := m.members[clubID][accountID]; ok {
		return ms, nil
	}
	return club.Membership{}, sql.ErrNoRows
}

func (m *mockClubStore) ListMembers(ctx context.Context, clubID string) ([]club.Member, error) {
	var out []club.Member
	for id, ms := range m.members[clubID] {
		out = append(out, club.Member{AccountID: id, Email: m.emails[id], Role: ms.Role})
	}
	return out, nil
}

type mockEventStore struct {
	events   map[string]calendar.Event
	replaced map[string][]calendar.Event // source -> events
	saveErr  error
	saves    int
}

func newMockEventStore(events ...calendar.Event) *mockEventStore {
	m := &mockEventStore{events: make(map[string]calendar.Event), replaced: make(map[string][]calendar.Event)}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *mockEventStore) Save(ctx context.Context, e calendar.Event) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.events[e.ID] = e
	return nil
}

func (m *mockEventStore) GetByID(ctx context.Context, id string) (calendar.Event, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return calendar.Event{}, fmt.Errorf("event not found: %w", sql.ErrNoRows)
}

func (m *mockEventStore) Delete(ctx context.Context, id string) error {
	delete(m.events, id)
	return nil
}

func (m *mockEventStore) ReplaceSourceEvents(ctx context.Context, clubID, source string, events []calendar.Event) error {
	m.replaced[source] = events
	return nil
}

func (m *mockEventStore) DeleteBySource(ctx context.Context, source string) (int64, error) {
	n := int64(len(m.replaced[source]))
	delete(m.replaced, source)
	return n, nil
}

type mockPurchaseStore struct {
	purchases map[string]finance.Purchase
}

func (m *mockPurchaseStore) Save(ctx context.Context, p finance.Purchase) error {
	if m.purchases == nil {
		m.purchases = make(map[string]finance.Purchase)
	}
	m.purchases[p.ID] = p
	return nil
}

func (m *mockPurchaseStore) Delete(ctx context.Context, clubID, id string) error {
	p, ok := m.purchases[id]
	if !ok || p.ClubID != clubID {
		return fmt.Errorf("purchase not found: %w", sql.ErrNoRows)
	}
	delete(m.purchases, id)
	return nil
}

type mockAnnouncementStore struct {
	saved []announcement.Announcement
}

func (m *mockAnnouncementStore) Save(ctx context.Context, a announcement.Announcement) error {
	m.saved = append(m.saved, a)
	return nil
}

type mockSender struct {
	mu   sync.Mutex
	reqs []emailAdapter.SendRequest
	err  error
}

func (m *mockSender) Send(ctx context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	res, err := m.SendBatch(ctx, []emailAdapter.SendRequest{req})
	if err != nil {
		return emailAdapter.SendResult{}, err
	}
	return res[0], nil
}

func (m *mockSender) SendBatch(ctx context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.reqs = append(m.reqs, reqs...)
	out := make([]emailAdapter.SendResult, len(reqs))
	for i := range out {
		out[i] = emailAdapter.SendResult{MessageID: fmt.Sprintf("msg-%d", i), SentAt: fixedNow}
	}
	return out, nil
}

type mockFeedStore struct {
	feeds map[string]feed.Feed
}

func newMockFeedStore(feeds ...feed.Feed) *mockFeedStore {
	m := &mockFeedStore{feeds: make(map[string]feed.Feed)}
	for _, f := range feeds {
		m.feeds[f.ID] = f
	}
	return m
}

func (m *mockFeedStore) Save(ctx context.Context, f feed.Feed) error {
	m.feeds[f.ID] = f
	return nil
}

func (m *mockFeedStore) GetByID(ctx context.Context, id string) (feed.Feed, error) {
	if f, ok := m.feeds[id]; ok {
		return f, nil
	}
	return feed.Feed{}, sql.ErrNoRows
}

func (m *mockFeedStore) ListAll(ctx context.Context) ([]feed.Feed, error) {
	var out []feed.Feed
	for _, f := range m.feeds {
		out = append(out, f)
	}
	return out, nil
}

func (m *mockFeedStore) Delete(ctx context.Context, id string) error {
	delete(m.feeds, id)
	return nil
}

// mockFetcher serves bodies by URL; unknown URLs fail.
type mockFetcher struct {
	bodies map[string]string
}

var errUnreachable = errors.New("connection refused")

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, ok := m.bodies[url]
	if !ok {
		return nil, errUnreachable
	}
	return []byte(body), nil
}
