package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Mode selects how much of each day a calendar view shows.
type Mode int

const (
	// ModeFull shows every event title and description on its day.
	ModeFull Mode = iota
	// ModePreview shows an indicator and at most one title per day.
	ModePreview
)

// ErrInvalidMode is returned by ParseMode for unknown mode names.
var ErrInvalidMode = errors.New("mode must be 'preview' or 'full'")

// ParseMode reads a mode name; the empty string selects ModeFull.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "full":
		return ModeFull, nil
	case "preview":
		return ModePreview, nil
	}
	return ModeFull, ErrInvalidMode
}

func (m Mode) String() string {
	if m == ModePreview {
		return "preview"
	}
	return "full"
}

// Cursor is the (year, month) a calendar view is showing. Month is 0-based.
type Cursor struct {
	Year  int
	Month int
}

// NewCursor validates the month index.
func NewCursor(year, month int) (Cursor, error) {
	if month < 0 || month > 11 {
		return Cursor{}, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	return Cursor{Year: year, Month: month}, nil
}

// CursorAt returns the cursor for the month containing d.
func CursorAt(d Date) Cursor {
	return Cursor{Year: d.Year, Month: int(d.Month) - 1}
}

// InitialCursor starts on the month of selected, or on today's month when
// selected is the zero Date.
func InitialCursor(clock Clock, selected Date) Cursor {
	if !selected.IsZero() {
		return CursorAt(selected)
	}
	return CursorAt(clock.Today())
}

// Prev returns the previous month, crossing into December of the prior year.
func (c Cursor) Prev() Cursor {
	if c.Month == 0 {
		return Cursor{Year: c.Year - 1, Month: 11}
	}
	return Cursor{Year: c.Year, Month: c.Month - 1}
}

// Next returns the following month, crossing into January of the next year.
func (c Cursor) Next() Cursor {
	if c.Month == 11 {
		return Cursor{Year: c.Year + 1, Month: 0}
	}
	return Cursor{Year: c.Year, Month: c.Month + 1}
}

// JumpTo returns the cursor for the month containing d.
func (c Cursor) JumpTo(d Date) Cursor {
	return CursorAt(d)
}

// Grid builds the month grid for the cursor.
func (c Cursor) Grid() (Grid, error) {
	return BuildMonthGrid(c.Year, c.Month)
}

// Contains reports whether d falls in the cursor's month.
func (c Cursor) Contains(d Date) bool {
	return d.Year == c.Year && int(d.Month) == c.Month+1
}

// Range returns the first and last day of the cursor's month.
func (c Cursor) Range() (Date, Date) {
	m := time.Month(c.Month + 1)
	return Date{Year: c.Year, Month: m, Day: 1}, Date{Year: c.Year, Month: m, Day: DaysIn(c.Year, m)}
}

func (c Cursor) String() string {
	return fmt.Sprintf("%04d-%02d", c.Year, c.Month+1)
}

// TransitionKind names a navigation request.
type TransitionKind int

const (
	TransitionNone TransitionKind = iota
	TransitionPrev
	TransitionNext
	TransitionSelect
)

// ParseTransition reads the "dir" request parameter.
func ParseTransition(dir string) TransitionKind {
	switch dir {
	case "prev":
		return TransitionPrev
	case "next":
		return TransitionNext
	}
	return TransitionNone
}

// Transition is a navigation request. Selected is only read for
// TransitionSelect.
type Transition struct {
	Kind     TransitionKind
	Selected Date
}

// Navigator decides where a view moves for a transition.
type Navigator interface {
	Navigate(c Cursor, t Transition) Cursor
}

// StepNavigator moves one month at a time. Selecting a day highlights it
// without moving the view.
type StepNavigator struct{}

// Navigate applies prev/next steps and ignores selections.
func (StepNavigator) Navigate(c Cursor, t Transition) Cursor {
	switch t.Kind {
	case TransitionPrev:
		return c.Prev()
	case TransitionNext:
		return c.Next()
	}
	return c
}

// FollowNavigator steps like StepNavigator and also follows an externally
// selected date into its month.
type FollowNavigator struct {
	StepNavigator
}

// Navigate applies steps, and jumps when the selected date lies outside the
// current month.
func (n FollowNavigator) Navigate(c Cursor, t Transition) Cursor {
	if t.Kind == TransitionSelect {
		if t.Selected.IsZero() || c.Contains(t.Selected) {
			return c
		}
		return c.JumpTo(t.Selected)
	}
	return n.StepNavigator.Navigate(c, t)
}

// NavigatorFor returns the navigator a mode uses.
func NavigatorFor(m Mode) Navigator {
	if m == ModePreview {
		return FollowNavigator{}
	}
	return StepNavigator{}
}
