package calendar

// DayEvents is a grid cell together with the events that fall on it.
type DayEvents struct {
	Cell
	Events []Event
}

// EventsForCell returns the events dated on the cell's day.
// PRE: none
// POST: input order is preserved; duplicates are kept; events with a zero
// Date never match
// INVARIANT: events is not mutated
func EventsForCell(cell Cell, events []Event) []Event {
	var out []Event
	for _, e := range events {
		if !e.Date.IsZero() && e.Date == cell.Date {
			out = append(out, e)
		}
	}
	return out
}

// Overlay attaches events to every cell of g. The result for each cell is
// the same as EventsForCell for that cell.
func Overlay(g Grid, events []Event) [GridCells]DayEvents {
	byDate := make(map[Date][]Event, len(events))
	for _, e := range events {
		if e.Date.IsZero() {
			continue
		}
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	var out [GridCells]DayEvents
	for i, c := range g.Cells {
		out[i] = DayEvents{Cell: c, Events: byDate[c.Date]}
	}
	return out
}
