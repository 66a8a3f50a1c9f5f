package projections

import (
	"context"
	"log/slog"
	"sync"

	"clubdash/internal/domain/calendar"
)

// MonthView is one calendar view: a cursor, a display mode and the events
// most recently loaded for the cursor. Preview and full views each hold
// their own MonthView so navigating one never moves the other.
//
// Loads run without the lock. A load whose month no longer matches the
// cursor when it finishes is dropped.
type MonthView struct {
	clubID string
	source EventSource
	clock  calendar.Clock
	mode   calendar.Mode
	nav    calendar.Navigator

	mu       sync.Mutex
	cursor   calendar.Cursor
	selected calendar.Date
	loaded   calendar.Cursor
	hasData  bool
	events   []calendar.Event
}

// NewMonthView starts on the month of selected, or on today's month.
func NewMonthView(clubID string, source EventSource, clock calendar.Clock, mode calendar.Mode, selected calendar.Date) *MonthView {
	return &MonthView{
		clubID:   clubID,
		source:   source,
		clock:    clock,
		mode:     mode,
		nav:      calendar.NavigatorFor(mode),
		cursor:   calendar.InitialCursor(clock, selected),
		selected: selected,
	}
}

// Cursor returns the month currently shown.
func (v *MonthView) Cursor() calendar.Cursor {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursor
}

// Apply moves the view through its navigator and returns the new cursor.
// A selection is remembered for highlighting whether or not the view moves.
func (v *MonthView) Apply(t calendar.Transition) calendar.Cursor {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t.Kind == calendar.TransitionSelect {
		v.selected = t.Selected
	}
	v.cursor = v.nav.Navigate(v.cursor, t)
	return v.cursor
}

// JumpTo moves the view to the month containing d, whatever the navigator.
func (v *MonthView) JumpTo(d calendar.Date) calendar.Cursor {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cursor = v.cursor.JumpTo(d)
	return v.cursor
}

// Load fetches events for the current cursor. A failed fetch commits an
// empty month and is logged; it is not retried.
// POST: returns false when the result was dropped because the cursor moved
func (v *MonthView) Load(ctx context.Context) bool {
	requested := v.Cursor()

	events, err := v.source.FetchEvents(ctx, v.clubID, requested.Year, requested.Month)
	if err != nil {
		slog.Warn("calendar_event", "event", "fetch_failed", "club_id", v.clubID, "month", requested.String(), "error", err)
		events = nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cursor != requested {
		slog.Debug("calendar_event", "event", "stale_fetch_dropped", "club_id", v.clubID, "requested", requested.String(), "current", v.cursor.String())
		return false
	}
	v.loaded = requested
	v.hasData = true
	v.events = events
	return true
}

// Render builds the grid for the current cursor and overlays the loaded
// events. Events loaded for another month are never shown.
// POST: ErrInvalidMonth only if the cursor was built from an invalid month
func (v *MonthView) Render() (calendar.View, error) {
	v.mu.Lock()
	cursor, selected := v.cursor, v.selected
	var events []calendar.Event
	if v.hasData && v.loaded == cursor {
		events = v.events
	}
	v.mu.Unlock()

	g, err := cursor.Grid()
	if err != nil {
		return calendar.View{}, err
	}
	return calendar.Render(g, events, v.mode, v.clock.Today(), selected), nil
}
