package projections

import (
	"context"
	"sort"

	"clubdash/internal/domain/calendar"
)

// EventSource supplies the events of one club month. Month is 0-based.
type EventSource interface {
	FetchEvents(ctx context.Context, clubID string, year, month int) ([]calendar.Event, error)
}

// ClubEventSource reads a month from the event store: one-off events
// (including imported feed events) plus every occurrence of recurring events
// that falls in the month.
type ClubEventSource struct {
	Events EventStore
}

// FetchEvents returns the month's events ordered by date. Events on the same
// day keep store order, with one-off events before recurring occurrences.
// PRE: month is 0..11
// POST: every event's Date lies within the month
func (s ClubEventSource) FetchEvents(ctx context.Context, clubID string, year, month int) ([]calendar.Event, error) {
	cur, err := calendar.NewCursor(year, month)
	if err != nil {
		return nil, err
	}
	from, to := cur.Range()

	oneOff, err := s.Events.ListByClubRange(ctx, clubID, from, to)
	if err != nil {
		return nil, err
	}
	series, err := s.Events.ListRecurring(ctx, clubID, to)
	if err != nil {
		return nil, err
	}

	events := append(oneOff, calendar.ExpandAll(series, from, to)...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

// QueryMonthEvents returns a club's events for a month.
func QueryMonthEvents(ctx context.Context, clubID string, cursor calendar.Cursor, source EventSource) ([]calendar.Event, error) {
	events, err := source.FetchEvents(ctx, clubID, cursor.Year, cursor.Month)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []calendar.Event{}
	}
	return events, nil
}
