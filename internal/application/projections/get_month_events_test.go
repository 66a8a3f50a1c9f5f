package projections

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"clubdash/internal/domain/calendar"
)

func titlesOn(events []calendar.Event) string {
	parts := make([]string, 0, len(events))
	for _, e := range events {
		parts = append(parts, e.Title+"@"+e.Date.String())
	}
	return strings.Join(parts, ",")
}

func TestClubEventSource_MergesSeriesAndOneOffs(t *testing.T) {
	weekly := ev("s1", "Practice", calendar.NewDate(2024, time.February, 21))
	weekly.Recurrence = "FREQ=WEEKLY"
	store := &mockEventStore{events: []calendar.Event{
		ev("e1", "Fair", calendar.NewDate(2024, time.March, 13)),
		ev("e2", "Social", calendar.NewDate(2024, time.March, 6)),
		ev("e3", "Outside", calendar.NewDate(2024, time.April, 1)),
		weekly,
		{ID: "x", ClubID: "c2", Title: "Other club", Date: calendar.NewDate(2024, time.March, 6)},
	}}

	got, err := ClubEventSource{Events: store}.FetchEvents(context.Background(), "c1", 2024, 2)
	if err != nil {
		t.Fatalf("FetchEvents: %v", err)
	}
	want := "Social@2024-03-06,Practice@2024-03-06,Fair@2024-03-13,Practice@2024-03-13,Practice@2024-03-20,Practice@2024-03-27"
	if titlesOn(got) != want {
		t.Errorf("events = %s\nwant     %s", titlesOn(got), want)
	}
	for _, e := range got {
		if e.Title == "Practice" && e.ID != "s1" {
			t.Errorf("occurrence ID = %q, want series ID", e.ID)
		}
	}
}

func TestClubEventSource_Errors(t *testing.T) {
	src := ClubEventSource{Events: &mockEventStore{}}
	if _, err := src.FetchEvents(context.Background(), "c1", 2024, 12); !errors.Is(err, calendar.ErrInvalidMonth) {
		t.Errorf("err = %v, want ErrInvalidMonth", err)
	}
	src = ClubEventSource{Events: &mockEventStore{err: errStoreDown}}
	if _, err := src.FetchEvents(context.Background(), "c1", 2024, 0); !errors.Is(err, errStoreDown) {
		t.Errorf("err = %v, want store error", err)
	}
}

func TestQueryMonthEvents_NeverNil(t *testing.T) {
	cur, _ := calendar.NewCursor(2024, 0)
	got, err := QueryMonthEvents(context.Background(), "c1", cur, ClubEventSource{Events: &mockEventStore{}})
	if err != nil {
		t.Fatalf("QueryMonthEvents: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("events = %#v, want empty non-nil", got)
	}
}
