package calendar

import (
	"errors"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// MaxOccurrences caps how many instances one recurring event may produce in
// a single expansion window.
const MaxOccurrences = 500

// maxSteps bounds how many instances an expansion may walk past before the
// window starts. A daily series covers about 270 years within it.
const maxSteps = 100_000

// ErrRecurrenceTooFrequent is returned for rules that repeat more than once a day.
var ErrRecurrenceTooFrequent = errors.New("event recurrence cannot repeat more often than daily")

// NormalizeRecurrence strips an "RRULE:" prefix and surrounding whitespace.
func NormalizeRecurrence(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 6 && strings.EqualFold(s[:6], "RRULE:") {
		s = s[6:]
	}
	return s
}

// ParseRecurrence reads an RRULE body for a day-granular calendar. Rules
// that can fire more than once a day are refused: sub-daily frequencies and
// multi-valued BYHOUR, BYMINUTE or BYSECOND.
// PRE: none
// POST: returns ErrInvalidRecurrence or ErrRecurrenceTooFrequent on rejection
func ParseRecurrence(s string) (*rrule.ROption, error) {
	opt, err := rrule.StrToROption(NormalizeRecurrence(s))
	if err != nil {
		return nil, ErrInvalidRecurrence
	}
	if opt.Freq > rrule.DAILY || len(opt.Byhour) > 1 || len(opt.Byminute) > 1 || len(opt.Bysecond) > 1 {
		return nil, ErrRecurrenceTooFrequent
	}
	return opt, nil
}

// Window collects iterator values that fall within [from, to] and stops at
// the first value past to, after limit values, or when the walk runs too long.
// The bool result is false when the series was cut short.
func Window(next rrule.Next, from, to time.Time, limit int) ([]time.Time, bool) {
	var out []time.Time
	for steps := 0; steps < maxSteps; steps++ {
		t, ok := next()
		if !ok || t.After(to) {
			return out, true
		}
		if t.Before(from) {
			continue
		}
		if len(out) == limit {
			return out, false
		}
		out = append(out, t)
	}
	return out, false
}

// Occurrences returns the instances of e that fall within [from, to].
// One-off events yield themselves when in range. Every instance keeps e's
// ID so edits apply to the whole series.
// PRE: e.Recurrence, if set, was accepted by Validate
// POST: instances are in ascending date order, at most MaxOccurrences
func Occurrences(e Event, from, to Date) []Event {
	if !e.IsRecurring() {
		if e.Date.Before(from) || e.Date.After(to) {
			return nil
		}
		return []Event{e}
	}

	opt, err := ParseRecurrence(e.Recurrence)
	if err != nil {
		return nil
	}
	opt.Dtstart = e.Date.In(time.UTC)
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil
	}

	times, _ := Window(r.Iterator(), from.In(time.UTC), to.In(time.UTC), MaxOccurrences)
	out := make([]Event, 0, len(times))
	for _, t := range times {
		occ := e
		occ.Date = DateOf(t)
		out = append(out, occ)
	}
	return out
}

// ExpandAll expands every event into [from, to], preserving input order
// between series.
func ExpandAll(events []Event, from, to Date) []Event {
	var out []Event
	for _, e := range events {
		out = append(out, Occurrences(e, from, to)...)
	}
	return out
}
