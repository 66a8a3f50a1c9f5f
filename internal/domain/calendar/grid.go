package calendar

import (
	"errors"
	"fmt"
	"time"
)

// GridCells is the number of day slots in a month grid: six weeks of seven days.
const GridCells = 42

var (
	ErrInvalidMonth = errors.New("month must be between 0 and 11")
	ErrGridOverflow = errors.New("month does not fit in a 42-cell grid")
)

// Cell is one day slot in a month grid.
type Cell struct {
	Date           Date
	InCurrentMonth bool
}

// Grid is the fixed 6x7 layout of a month. Cells[0] is always a Sunday and
// consecutive cells are consecutive days.
type Grid struct {
	Year  int
	Month int // 0 = January
	Cells [GridCells]Cell
}

// BuildMonthGrid lays out the month as 42 consecutive days starting on the
// Sunday on or before the 1st.
// PRE: month is a 0-based month index
// POST: exactly 42 cells; cell i falls on weekday i mod 7; the in-month run
// covers day 1 through the last day of the month
func BuildMonthGrid(year, month int) (Grid, error) {
	if month < 0 || month > 11 {
		return Grid{}, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}

	m := time.Month(month + 1)
	firstWeekday := int(NewDate(year, m, 1).Weekday())
	daysInMonth := DaysIn(year, m)

	prevYear, prevMonth := year, m-1
	if m == time.January {
		prevYear, prevMonth = year-1, time.December
	}
	daysInPrevMonth := DaysIn(prevYear, prevMonth)

	nextYear, nextMonth := year, m+1
	if m == time.December {
		nextYear, nextMonth = year+1, time.January
	}

	trailing := GridCells - firstWeekday - daysInMonth
	if trailing < 0 {
		return Grid{}, fmt.Errorf("%w: %04d-%02d", ErrGridOverflow, year, int(m))
	}

	g := Grid{Year: year, Month: month}
	i := 0
	for ; i < firstWeekday; i++ {
		g.Cells[i] = Cell{
			Date: Date{Year: prevYear, Month: prevMonth, Day: daysInPrevMonth - firstWeekday + i + 1},
		}
	}
	for day := 1; day <= daysInMonth; day++ {
		g.Cells[i] = Cell{Date: Date{Year: year, Month: m, Day: day}, InCurrentMonth: true}
		i++
	}
	for day := 1; day <= trailing; day++ {
		g.Cells[i] = Cell{Date: Date{Year: nextYear, Month: nextMonth, Day: day}}
		i++
	}
	return g, nil
}

// Weeks returns the grid as six rows of seven cells.
func (g Grid) Weeks() [][7]Cell {
	weeks := make([][7]Cell, 0, GridCells/7)
	for w := 0; w < GridCells/7; w++ {
		var row [7]Cell
		copy(row[:], g.Cells[w*7:w*7+7])
		weeks = append(weeks, row)
	}
	return weeks
}

// Title returns the display heading, e.g. "January 2024".
func (g Grid) Title() string {
	return fmt.Sprintf("%s %d", time.Month(g.Month+1), g.Year)
}
