package calendar

// DayView is a single rendered cell.
type DayView struct {
	Date           Date
	InCurrentMonth bool
	IsToday        bool
	IsSelected     bool
	EventCount     int
	Events         []Event // every event in ModeFull, at most one in ModePreview
}

// HasEvents reports whether the day shows an event indicator.
func (d DayView) HasEvents() bool {
	return d.EventCount > 0
}

// View is a month grid with events overlaid, shaped for one display mode.
type View struct {
	Cursor Cursor
	Mode   Mode
	Title  string
	Days   [GridCells]DayView
}

// Weeks returns the days as six rows of seven.
func (v View) Weeks() [][7]DayView {
	weeks := make([][7]DayView, 0, GridCells/7)
	for w := 0; w < GridCells/7; w++ {
		var row [7]DayView
		copy(row[:], v.Days[w*7:w*7+7])
		weeks = append(weeks, row)
	}
	return weeks
}

// Render overlays events on g and trims each day to what mode displays.
// PRE: g was produced by BuildMonthGrid
// POST: Days[i] corresponds to g.Cells[i]; EventCount is the full count in
// every mode
func Render(g Grid, events []Event, mode Mode, today, selected Date) View {
	v := View{
		Cursor: Cursor{Year: g.Year, Month: g.Month},
		Mode:   mode,
		Title:  g.Title(),
	}
	for i, de := range Overlay(g, events) {
		day := DayView{
			Date:           de.Date,
			InCurrentMonth: de.InCurrentMonth,
			IsToday:        de.Date == today,
			IsSelected:     !selected.IsZero() && de.Date == selected,
			EventCount:     len(de.Events),
			Events:         de.Events,
		}
		if mode == ModePreview && len(day.Events) > 1 {
			day.Events = day.Events[:1]
		}
		v.Days[i] = day
	}
	return v
}
