package projections

import (
	"context"
	"time"

	"clubdash/internal/domain/calendar"
)

// CalendarViewQuery describes the view a request asks for. Year and Month
// (0-based) are optional: without them the view opens on Selected, or on
// today's month.
type CalendarViewQuery struct {
	ClubID   string
	Year     int
	Month    int
	HasMonth bool
	Mode     calendar.Mode
	Dir      calendar.TransitionKind
	Selected calendar.Date
}

// CalendarViewResult is the rendered view plus its neighbours for links.
type CalendarViewResult struct {
	View calendar.View
	Prev calendar.Cursor
	Next calendar.Cursor
}

// GetCalendarViewDeps holds dependencies for QueryCalendarView.
type GetCalendarViewDeps struct {
	Source EventSource
	Clock  calendar.Clock
}

// QueryCalendarView positions a MonthView, applies the requested navigation,
// loads the month and renders it.
// PRE: when HasMonth, Month is validated by the caller or yields ErrInvalidMonth
// POST: the view shows at most one title per day in preview mode
func QueryCalendarView(ctx context.Context, q CalendarViewQuery, deps GetCalendarViewDeps) (CalendarViewResult, error) {
	if q.HasMonth {
		if _, err := calendar.NewCursor(q.Year, q.Month); err != nil {
			return CalendarViewResult{}, err
		}
	}

	view := NewMonthView(q.ClubID, deps.Source, deps.Clock, q.Mode, q.Selected)
	if q.HasMonth {
		view.JumpTo(calendar.NewDate(q.Year, time.Month(q.Month+1), 1))
	}
	switch q.Dir {
	case calendar.TransitionPrev, calendar.TransitionNext:
		view.Apply(calendar.Transition{Kind: q.Dir})
	case calendar.TransitionNone:
		if !q.Selected.IsZero() {
			// Preview views follow a selection into its month; full views only
			// highlight it.
			view.Apply(calendar.Transition{Kind: calendar.TransitionSelect, Selected: q.Selected})
		}
	}

	view.Load(ctx)
	v, err := view.Render()
	if err != nil {
		return CalendarViewResult{}, err
	}
	return CalendarViewResult{View: v, Prev: v.Cursor.Prev(), Next: v.Cursor.Next()}, nil
}
