package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clubdash/internal/domain/calendar"
)

// EventStoreForSave defines the store interface needed by the event orchestrators.
type EventStoreForSave interface {
	Save(ctx context.Context, e calendar.Event) error
	GetByID(ctx context.Context, id string) (calendar.Event, error)
	Delete(ctx context.Context, id string) error
}

// SaveEventDeps holds dependencies for the event orchestrators.
type SaveEventDeps struct {
	EventStore EventStoreForSave
	GenerateID func() string
	Now        func() time.Time
}

// ErrFeedEventReadOnly is returned when editing an event imported from a feed.
var ErrFeedEventReadOnly = errors.New("events imported from a feed are read-only")

// ExecuteSaveEvent persists a club event, assigning an ID when it has none.
// A failed write is returned as is; nothing is retried.
// PRE: e.ClubID names a club the caller may write to
// POST: the saved event, with ID, Source and CreatedAt filled
func ExecuteSaveEvent(ctx context.Context, e calendar.Event, deps SaveEventDeps) (calendar.Event, error) {
	created := e.ID == ""
	if created {
		e.ID = deps.GenerateID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = deps.Now()
	}
	if e.Source == "" {
		e.Source = calendar.SourceClub
	}
	e.Title = strings.TrimSpace(e.Title)
	e.Recurrence = calendar.NormalizeRecurrence(e.Recurrence)

	if err := e.Validate(); err != nil {
		return calendar.Event{}, err
	}
	if err := deps.EventStore.Save(ctx, e); err != nil {
		slog.Error("calendar_event", "event", "save_failed", "event_id", e.ID, "club_id", e.ClubID, "error", err)
		return calendar.Event{}, fmt.Errorf("save event: %w", err)
	}

	slog.Info("calendar_event", "event", "event_saved", "event_id", e.ID, "club_id", e.ClubID, "date", e.Date.String(), "created", created)
	return e, nil
}

// UpdateEventInput is a partial update; nil fields keep their value.
type UpdateEventInput struct {
	ID          string
	Title       *string
	Date        *string
	Description *string
	Location    *string
	Recurrence  *string
}

// ExecuteUpdateEvent applies a partial update to a club event.
// PRE: caller may write to the event's club
// POST: updated event saved; feed events are rejected with ErrFeedEventReadOnly
func ExecuteUpdateEvent(ctx context.Context, input UpdateEventInput, deps SaveEventDeps) (calendar.Event, error) {
	e, err := deps.EventStore.GetByID(ctx, input.ID)
	if err != nil {
		return calendar.Event{}, err
	}
	if e.FromFeed() {
		return calendar.Event{}, ErrFeedEventReadOnly
	}

	if input.Title != nil {
		e.Title = *input.Title
	}
	if input.Date != nil {
		d, err := calendar.ParseDate(*input.Date)
		if err != nil {
			return calendar.Event{}, err
		}
		e.Date = d
	}
	if input.Description != nil {
		e.Description = *input.Description
	}
	if input.Location != nil {
		e.Location = *input.Location
	}
	if input.Recurrence != nil {
		e.Recurrence = *input.Recurrence
	}
	return ExecuteSaveEvent(ctx, e, deps)
}

// ExecuteDeleteEvent removes a club event.
// PRE: caller may write to the event's club
// POST: event gone; feed events are rejected with ErrFeedEventReadOnly
func ExecuteDeleteEvent(ctx context.Context, id string, deps SaveEventDeps) error {
	e, err := deps.EventStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.FromFeed() {
		return ErrFeedEventReadOnly
	}
	if err := deps.EventStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("calendar_event", "event", "event_deleted", "event_id", id, "club_id", e.ClubID)
	return nil
}
