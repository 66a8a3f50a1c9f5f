package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clubdash/internal/adapters/ics"
	"clubdash/internal/domain/calendar"
	"clubdash/internal/domain/feed"
)

// FeedStore defines the subscription operations.
type FeedStore interface {
	Save(ctx context.Context, f feed.Feed) error
	GetByID(ctx context.Context, id string) (feed.Feed, error)
	ListAll(ctx context.Context) ([]feed.Feed, error)
	Delete(ctx context.Context, id string) error
}

// FeedEventStore holds the cached events of each feed.
type FeedEventStore interface {
	ReplaceSourceEvents(ctx context.Context, clubID, source string, events []calendar.Event) error
	DeleteBySource(ctx context.Context, source string) (int64, error)
}

// FeedFetcher downloads a feed body.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FeedDeps holds dependencies for the feed orchestrators.
type FeedDeps struct {
	FeedStore  FeedStore
	EventStore FeedEventStore
	Fetcher    FeedFetcher
	Location   *time.Location
	GenerateID func() string
	Now        func() time.Time
}

// ErrFeedNotFound is returned for feeds that do not exist or belong to
// another club.
var ErrFeedNotFound = errors.New("feed not found")

// CreateFeedInput carries the subscription form.
type CreateFeedInput struct {
	ClubID    string
	Name      string
	URL       string
	CreatedBy string
}

// ExecuteCreateFeed registers a subscription. Events arrive on the next refresh.
// PRE: caller belongs to the club
// POST: feed saved; a URL already subscribed by the club is rejected by the store
func ExecuteCreateFeed(ctx context.Context, input CreateFeedInput, deps FeedDeps) (feed.Feed, error) {
	f := feed.Feed{
		ID:        deps.GenerateID(),
		ClubID:    input.ClubID,
		Name:      strings.TrimSpace(input.Name),
		URL:       strings.TrimSpace(input.URL),
		CreatedBy: input.CreatedBy,
		CreatedAt: deps.Now(),
	}
	if err := f.Validate(); err != nil {
		return feed.Feed{}, err
	}
	if err := deps.FeedStore.Save(ctx, f); err != nil {
		return feed.Feed{}, err
	}
	slog.Info("feed_event", "event", "feed_created", "feed_id", f.ID, "club_id", f.ClubID, "url", ics.RedactURL(f.URL))
	return f, nil
}

// ExecuteDeleteFeed removes a subscription and the events it imported.
// PRE: caller belongs to clubID
// POST: ErrFeedNotFound when the feed is not the club's
func ExecuteDeleteFeed(ctx context.Context, clubID, feedID string, deps FeedDeps) error {
	f, err := deps.FeedStore.GetByID(ctx, feedID)
	if err != nil || f.ClubID != clubID {
		return ErrFeedNotFound
	}
	removed, err := deps.EventStore.DeleteBySource(ctx, f.ID)
	if err != nil {
		return err
	}
	if err := deps.FeedStore.Delete(ctx, f.ID); err != nil {
		return err
	}
	slog.Info("feed_event", "event", "feed_deleted", "feed_id", f.ID, "club_id", clubID, "events_removed", removed)
	return nil
}

// RefreshSummary counts the outcome of a refresh pass.
type RefreshSummary struct {
	Refreshed int
	Failed    int
	Events    int
}

// ExecuteRefreshFeeds refreshes every subscription. A failing feed keeps its
// previous events and the pass continues; only the next tick retries it.
// PRE: deps.Fetcher is set
// POST: each feed records its last fetch time and error
func ExecuteRefreshFeeds(ctx context.Context, deps FeedDeps) (RefreshSummary, error) {
	feeds, err := deps.FeedStore.ListAll(ctx)
	if err != nil {
		return RefreshSummary{}, err
	}
	var sum RefreshSummary
	for _, f := range feeds {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		n, err := ExecuteRefreshFeed(ctx, f, deps)
		if err != nil {
			sum.Failed++
			continue
		}
		sum.Refreshed++
		sum.Events += n
	}
	slog.Info("feed_event", "event", "refresh_pass", "feeds", len(feeds), "refreshed", sum.Refreshed, "failed", sum.Failed, "events", sum.Events)
	return sum, nil
}

// ExecuteRefreshFeed fetches one feed, expands it over a window of a year
// either side of today and replaces its cached events.
// POST: returns the number of events stored; on error old events are kept
// and the failure is recorded on the feed
func ExecuteRefreshFeed(ctx context.Context, f feed.Feed, deps FeedDeps) (int, error) {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	now := deps.Now()
	today := calendar.DateOf(now.In(loc))

	events, err := loadFeed(ctx, f, deps.Fetcher, now, ics.ExpandConfig{
		From:     calendar.NewDate(today.Year-1, today.Month, today.Day),
		To:       calendar.NewDate(today.Year+1, today.Month, today.Day),
		Location: loc,
	})
	if err == nil {
		err = deps.EventStore.ReplaceSourceEvents(ctx, f.ClubID, f.ID, events)
	}
	if err != nil {
		slog.Warn("feed_event", "event", "refresh_failed", "feed_id", f.ID, "url", ics.RedactURL(f.URL), "error", err)
		f.RecordFailure(now, err)
		if saveErr := deps.FeedStore.Save(ctx, f); saveErr != nil {
			slog.Error("feed_event", "event", "status_save_failed", "feed_id", f.ID, "error", saveErr)
		}
		return 0, err
	}

	f.RecordSuccess(now, len(events))
	if err := deps.FeedStore.Save(ctx, f); err != nil {
		return len(events), err
	}
	slog.Info("feed_event", "event", "feed_refreshed", "feed_id", f.ID, "club_id", f.ClubID, "events", len(events))
	return len(events), nil
}

func loadFeed(ctx context.Context, f feed.Feed, fetcher FeedFetcher, now time.Time, cfg ics.ExpandConfig) ([]calendar.Event, error) {
	body, err := fetcher.Fetch(ctx, f.FetchURL())
	if err != nil {
		return nil, err
	}
	parsed, err := ics.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	events, err := ics.Expand(f.ID, parsed, cfg)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].ClubID = f.ClubID
		events[i].CreatedAt = now
	}
	return events, nil
}
