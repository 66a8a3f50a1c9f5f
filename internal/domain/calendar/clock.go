package calendar

import "time"

// Clock supplies today's date.
type Clock interface {
	Today() Date
}

// SystemClock reads the wall clock in a fixed display location.
type SystemClock struct {
	Location *time.Location
}

// Today returns the current calendar day in the clock's location
// (time.Local when unset).
func (c SystemClock) Today() Date {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

// FixedClock always reports the same day.
type FixedClock Date

// Today returns the fixed day.
func (c FixedClock) Today() Date {
	return Date(c)
}
