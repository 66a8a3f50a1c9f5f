package orchestrators

import (
	"context"
	"errors"
	"testing"

	"clubdash/internal/domain/calendar"
)

func eventDeps(store *mockEventStore) SaveEventDeps {
	return SaveEventDeps{EventStore: store, GenerateID: sequentialIDs("ev"), Now: nowFn}
}

func TestExecuteSaveEvent_AssignsID(t *testing.T) {
	store := newMockEventStore()
	e, err := ExecuteSaveEvent(context.Background(), calendar.Event{
		ClubID: "c1", Title: "  Opening night ", Date: calendar.NewDate(2024, 3, 20), Recurrence: "RRULE:FREQ=WEEKLY;COUNT=3",
	}, eventDeps(store))
	if err != nil {
		t.Fatalf("ExecuteSaveEvent: %v", err)
	}
	if e.ID != "ev-1" || e.Source != calendar.SourceClub || !e.CreatedAt.Equal(fixedNow) {
		t.Errorf("saved = %+v", e)
	}
	if e.Title != "Opening night" || e.Recurrence != "FREQ=WEEKLY;COUNT=3" {
		t.Errorf("not normalized: %q %q", e.Title, e.Recurrence)
	}
	if _, ok := store.events["ev-1"]; !ok {
		t.Error("event not stored")
	}
}

func TestExecuteSaveEvent_KeepsExistingID(t *testing.T) {
	store := newMockEventStore()
	e, err := ExecuteSaveEvent(context.Background(), calendar.Event{
		ID: "keep", ClubID: "c1", Title: "Meeting", Date: calendar.NewDate(2024, 3, 20),
	}, eventDeps(store))
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != "keep" {
		t.Errorf("ID = %q", e.ID)
	}
}

func TestExecuteSaveEvent_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		event calendar.Event
		want  error
	}{
		{"no title", calendar.Event{ClubID: "c1", Date: calendar.NewDate(2024, 1, 1)}, calendar.ErrEmptyTitle},
		{"no date", calendar.Event{ClubID: "c1", Title: "x"}, calendar.ErrMissingDate},
		{"no club", calendar.Event{Title: "x", Date: calendar.NewDate(2024, 1, 1)}, calendar.ErrMissingClub},
		{"bad rrule", calendar.Event{ClubID: "c1", Title: "x", Date: calendar.NewDate(2024, 1, 1), Recurrence: "FREQ=SOMETIMES"}, calendar.ErrInvalidRecurrence},
		{"minutely rrule", calendar.Event{ClubID: "c1", Title: "x", Date: calendar.NewDate(2020, 1, 1), Recurrence: "FREQ=MINUTELY"}, calendar.ErrRecurrenceTooFrequent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockEventStore()
			if _, err := ExecuteSaveEvent(context.Background(), tt.event, eventDeps(store)); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if store.saves != 0 {
				t.Error("invalid event reached the store")
			}
		})
	}
}

func TestExecuteSaveEvent_StoreFailureNotRetried(t *testing.T) {
	boom := errors.New("disk full")
	store := newMockEventStore()
	store.saveErr = boom
	_, err := ExecuteSaveEvent(context.Background(), calendar.Event{ClubID: "c1", Title: "x", Date: calendar.NewDate(2024, 1, 1)}, eventDeps(store))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want exactly 1", store.saves)
	}
}

func TestExecuteUpdateEvent(t *testing.T) {
	orig := calendar.Event{ID: "e1", ClubID: "c1", Title: "Meeting", Date: calendar.NewDate(2024, 3, 1), Location: "Room 1", Source: calendar.SourceClub}
	store := newMockEventStore(orig)

	title, date := "Board meeting", "2024-03-08"
	e, err := ExecuteUpdateEvent(context.Background(), UpdateEventInput{ID: "e1", Title: &title, Date: &date}, eventDeps(store))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if e.Title != title || e.Date != calendar.NewDate(2024, 3, 8) || e.Location != "Room 1" {
		t.Errorf("updated = %+v", e)
	}

	bad := "March 8"
	if _, err := ExecuteUpdateEvent(context.Background(), UpdateEventInput{ID: "e1", Date: &bad}, eventDeps(store)); !errors.Is(err, calendar.ErrInvalidDate) {
		t.Errorf("bad date err = %v", err)
	}
}

func TestExecuteUpdateEvent_FeedEventReadOnly(t *testing.T) {
	store := newMockEventStore(calendar.Event{ID: "f:uid:2024-03-01", ClubID: "c1", Title: "Imported", Date: calendar.NewDate(2024, 3, 1), Source: "feed-1"})
	title := "Edited"
	if _, err := ExecuteUpdateEvent(context.Background(), UpdateEventInput{ID: "f:uid:2024-03-01", Title: &title}, eventDeps(store)); !errors.Is(err, ErrFeedEventReadOnly) {
		t.Errorf("err = %v, want ErrFeedEventReadOnly", err)
	}
	if err := ExecuteDeleteEvent(context.Background(), "f:uid:2024-03-01", eventDeps(store)); !errors.Is(err, ErrFeedEventReadOnly) {
		t.Errorf("delete err = %v", err)
	}
}

func TestExecuteDeleteEvent(t *testing.T) {
	store := newMockEventStore(calendar.Event{ID: "e1", ClubID: "c1", Title: "x", Date: calendar.NewDate(2024, 1, 1), Source: calendar.SourceClub})
	if err := ExecuteDeleteEvent(context.Background(), "e1", eventDeps(store)); err != nil {
		t.Fatal(err)
	}
	if len(store.events) != 0 {
		t.Error("event still present")
	}
	if err := ExecuteDeleteEvent(context.Background(), "e1", eventDeps(store)); err == nil {
		t.Error("expected not-found error")
	}
}
