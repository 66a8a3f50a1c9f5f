package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"clubdash/internal/domain/calendar"
	"clubdash/internal/domain/feed"
)

const campusICS = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Example//Campus//EN\r\n" +
	"BEGIN:VEVENT\r\nUID:fair@example.edu\r\nDTSTAMP:20240101T000000Z\r\nDTSTART;VALUE=DATE:20240320\r\nSUMMARY:Club Fair\r\nEND:VEVENT\r\n" +
	"BEGIN:VEVENT\r\nUID:talk@example.edu\r\nDTSTAMP:20240101T000000Z\r\nDTSTART:20240322T180000Z\r\nRRULE:FREQ=WEEKLY;COUNT=2\r\nSUMMARY:Guest talk\r\nEND:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func feedDeps(feeds *mockFeedStore, events *mockEventStore, fetcher FeedFetcher) FeedDeps {
	return FeedDeps{
		FeedStore:  feeds,
		EventStore: events,
		Fetcher:    fetcher,
		Location:   time.UTC,
		GenerateID: sequentialIDs("feed"),
		Now:        nowFn,
	}
}

func TestExecuteCreateFeed(t *testing.T) {
	feeds := newMockFeedStore()
	deps := feedDeps(feeds, newMockEventStore(), nil)

	f, err := ExecuteCreateFeed(context.Background(), CreateFeedInput{ClubID: "c1", Name: "Campus", URL: " webcal://events.example.edu/all.ics "}, deps)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.URL != "webcal://events.example.edu/all.ics" || feeds.feeds[f.ID].Name != "Campus" {
		t.Errorf("feed = %+v", f)
	}

	if _, err := ExecuteCreateFeed(context.Background(), CreateFeedInput{ClubID: "c1", Name: "Bad", URL: "ftp://x/y.ics"}, deps); !errors.Is(err, feed.ErrInvalidURL) {
		t.Errorf("err = %v, want ErrInvalidURL", err)
	}
}

func TestExecuteRefreshFeeds(t *testing.T) {
	good := feed.Feed{ID: "good", ClubID: "c1", Name: "Campus", URL: "webcal://events.example.edu/all.ics"}
	bad := feed.Feed{ID: "bad", ClubID: "c1", Name: "Broken", URL: "https://down.example.edu/x.ics"}
	feeds := newMockFeedStore(good, bad)
	events := newMockEventStore()
	stale := []calendar.Event{{ID: "old", ClubID: "c1", Title: "Old", Date: calendar.NewDate(2024, 1, 1), Source: "bad"}}
	events.replaced["bad"] = stale

	fetcher := &mockFetcher{bodies: map[string]string{"https://events.example.edu/all.ics": campusICS}}
	sum, err := ExecuteRefreshFeeds(context.Background(), feedDeps(feeds, events, fetcher))
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if sum.Refreshed != 1 || sum.Failed != 1 || sum.Events != 3 {
		t.Errorf("summary = %+v", sum)
	}

	got := events.replaced["good"]
	var titles []string
	for _, e := range got {
		if e.ClubID != "c1" || e.Source != "good" || !strings.HasPrefix(e.ID, "good:") {
			t.Errorf("imported event = %+v", e)
		}
		titles = append(titles, e.Title+"@"+e.Date.String())
	}
	want := "Club Fair@2024-03-20,Guest talk@2024-03-22,Guest talk@2024-03-29"
	if strings.Join(titles, ",") != want {
		t.Errorf("events = %v, want %s", titles, want)
	}

	if len(events.replaced["bad"]) != 1 {
		t.Error("failing feed lost its previous events")
	}
	if feeds.feeds["bad"].LastError != errUnreachable.Error() {
		t.Errorf("LastError = %q", feeds.feeds["bad"].LastError)
	}
	if g := feeds.feeds["good"]; g.LastError != "" || g.EventCount != 3 || !g.LastFetchedAt.Equal(fixedNow) {
		t.Errorf("good feed = %+v", g)
	}
}

func TestExecuteRefreshFeed_ParseError(t *testing.T) {
	f := feed.Feed{ID: "junk", ClubID: "c1", Name: "Junk", URL: "https://example.edu/junk.ics"}
	feeds := newMockFeedStore(f)
	fetcher := &mockFetcher{bodies: map[string]string{f.URL: "this is not a calendar"}}
	if _, err := ExecuteRefreshFeed(context.Background(), f, feedDeps(feeds, newMockEventStore(), fetcher)); err == nil {
		t.Fatal("expected parse error")
	}
	if feeds.feeds["junk"].LastError == "" {
		t.Error("failure not recorded")
	}
}

func TestExecuteDeleteFeed(t *testing.T) {
	f := feed.Feed{ID: "f1", ClubID: "c1", Name: "Campus", URL: "https://example.edu/a.ics"}
	feeds := newMockFeedStore(f)
	events := newMockEventStore()
	events.replaced["f1"] = []calendar.Event{{ID: "f1:x:2024-01-01"}}
	deps := feedDeps(feeds, events, nil)

	if err := ExecuteDeleteFeed(context.Background(), "c2", "f1", deps); !errors.Is(err, ErrFeedNotFound) {
		t.Errorf("other club err = %v, want ErrFeedNotFound", err)
	}
	if err := ExecuteDeleteFeed(context.Background(), "c1", "f1", deps); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(feeds.feeds) != 0 || len(events.replaced) != 0 {
		t.Error("feed or its events survived")
	}
}
