package calendar

import (
	"errors"
	"testing"
	"time"
)

// forEachMonth runs fn for every month of a span of years that includes
// leap years, century rules and both month-boundary crossings.
func forEachMonth(t *testing.T, fn func(t *testing.T, year, month int, g Grid)) {
	t.Helper()
	years := []int{1899, 1900, 1999, 2000, 2015, 2023, 2024, 2025, 2100}
	for _, y := range years {
		for m := 0; m < 12; m++ {
			g, err := BuildMonthGrid(y, m)
			if err != nil {
				t.Fatalf("BuildMonthGrid(%d, %d): %v", y, m, err)
			}
			fn(t, y, m, g)
		}
	}
}

// TestBuildMonthGrid_Invariants checks the structural guarantees of every grid.
func TestBuildMonthGrid_Invariants(t *testing.T) {
	forEachMonth(t, func(t *testing.T, year, month int, g Grid) {
		if len(g.Cells) != GridCells {
			t.Fatalf("%d-%d: %d cells, want %d", year, month, len(g.Cells), GridCells)
		}
		for i := 0; i+1 < GridCells; i++ {
			if want := g.Cells[i].Date.AddDays(1); g.Cells[i+1].Date != want {
				t.Fatalf("%d-%d: cell %d = %s, want %s", year, month, i+1, g.Cells[i+1].Date, want)
			}
		}
		for i, c := range g.Cells {
			if got := int(c.Date.Weekday()); got != i%7 {
				t.Fatalf("%d-%d: cell %d weekday = %d, want %d", year, month, i, got, i%7)
			}
		}

		m := time.Month(month + 1)
		inMonth := 0
		first, last := -1, -1
		for i, c := range g.Cells {
			if c.InCurrentMonth != (c.Date.Year == year && c.Date.Month == m) {
				t.Fatalf("%d-%d: cell %d InCurrentMonth = %v for %s", year, month, i, c.InCurrentMonth, c.Date)
			}
			if c.InCurrentMonth {
				inMonth++
				if first < 0 {
					first = i
				}
				last = i
			}
		}
		if inMonth != DaysIn(year, m) {
			t.Fatalf("%d-%d: %d in-month cells, want %d", year, month, inMonth, DaysIn(year, m))
		}
		if last-first+1 != inMonth {
			t.Fatalf("%d-%d: in-month run is not contiguous", year, month)
		}
		if g.Cells[first].Date.Day != 1 || g.Cells[last].Date.Day != inMonth {
			t.Fatalf("%d-%d: in-month run spans %s..%s", year, month, g.Cells[first].Date, g.Cells[last].Date)
		}
	})
}

// TestBuildMonthGrid_February checks leap-year handling.
func TestBuildMonthGrid_February(t *testing.T) {
	tests := []struct {
		year int
		want int
	}{
		{2024, 29},
		{2023, 28},
		{2000, 29},
		{1900, 28},
	}
	for _, tc := range tests {
		g, err := BuildMonthGrid(tc.year, 1)
		if err != nil {
			t.Fatalf("BuildMonthGrid(%d, 1): %v", tc.year, err)
		}
		got := 0
		for _, c := range g.Cells {
			if c.InCurrentMonth {
				got++
			}
		}
		if got != tc.want {
			t.Errorf("February %d: %d in-month cells, want %d", tc.year, got, tc.want)
		}
	}
}

// TestBuildMonthGrid_January2024 checks the year-crossing leading cell.
func TestBuildMonthGrid_January2024(t *testing.T) {
	g, err := BuildMonthGrid(2024, 0)
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}
	if g.Cells[0].Date != NewDate(2023, time.December, 31) || g.Cells[0].InCurrentMonth {
		t.Errorf("cell 0 = %+v, want out-of-month 2023-12-31", g.Cells[0])
	}
	if g.Cells[1].Date != NewDate(2024, time.January, 1) || !g.Cells[1].InCurrentMonth {
		t.Errorf("cell 1 = %+v, want in-month 2024-01-01", g.Cells[1])
	}
	if got := g.Cells[GridCells-1].Date; got != NewDate(2024, time.February, 10) {
		t.Errorf("last cell = %s, want 2024-02-10", got)
	}
}

// TestBuildMonthGrid_Padding checks leading and trailing counts at the edges.
func TestBuildMonthGrid_Padding(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		leading   int
		trailing  int
		firstCell Date
	}{
		{"starts on sunday", 2024, 8, 0, 12, NewDate(2024, time.September, 1)},
		{"four-week february", 2015, 1, 0, 14, NewDate(2015, time.February, 1)},
		{"december crosses year", 2023, 11, 5, 6, NewDate(2023, time.November, 26)},
		{"starts on saturday", 2025, 10, 6, 6, NewDate(2025, time.October, 26)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, err := BuildMonthGrid(tc.year, tc.month)
			if err != nil {
				t.Fatalf("BuildMonthGrid: %v", err)
			}
			leading, trailing := 0, 0
			seenMonth := false
			for _, c := range g.Cells {
				switch {
				case c.InCurrentMonth:
					seenMonth = true
				case seenMonth:
					trailing++
				default:
					leading++
				}
			}
			if leading != tc.leading || trailing != tc.trailing {
				t.Errorf("leading/trailing = %d/%d, want %d/%d", leading, trailing, tc.leading, tc.trailing)
			}
			if g.Cells[0].Date != tc.firstCell {
				t.Errorf("first cell = %s, want %s", g.Cells[0].Date, tc.firstCell)
			}
		})
	}
}

// TestBuildMonthGrid_InvalidMonth checks that out-of-range months fail fast.
func TestBuildMonthGrid_InvalidMonth(t *testing.T) {
	for _, m := range []int{-1, 12, 99} {
		if _, err := BuildMonthGrid(2024, m); !errors.Is(err, ErrInvalidMonth) {
			t.Errorf("BuildMonthGrid(2024, %d) err = %v, want ErrInvalidMonth", m, err)
		}
	}
}

// TestGrid_WeeksAndTitle checks the row layout helpers.
func TestGrid_WeeksAndTitle(t *testing.T) {
	g, err := BuildMonthGrid(2024, 1)
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}
	weeks := g.Weeks()
	if len(weeks) != 6 {
		t.Fatalf("weeks = %d, want 6", len(weeks))
	}
	if weeks[5][6] != g.Cells[41] {
		t.Errorf("last week last day = %+v, want %+v", weeks[5][6], g.Cells[41])
	}
	if g.Title() != "February 2024" {
		t.Errorf("Title = %q, want %q", g.Title(), "February 2024")
	}
}
