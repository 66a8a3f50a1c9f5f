package ics

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/teambition/rrule-go"

	"clubdash/internal/domain/calendar"
)

const untitled = "(untitled)"

// ExpandConfig bounds recurrence expansion.
type ExpandConfig struct {
	From, To       calendar.Date  // inclusive window
	Location       *time.Location // timed events are placed on their day in this zone; nil means UTC
	MaxOccurrences int            // per series; zero means calendar.MaxOccurrences
}

// Expand turns parsed feed events into one-off calendar events within the
// window. Series are expanded with their EXDATEs removed and RECURRENCE-ID
// overrides applied. Each result's Source is source and its ID is derived
// from source, UID and date, so a re-import yields the same IDs.
// PRE: cfg.From <= cfg.To
// POST: results are in input order, instances of a series in date order, no duplicate IDs
func Expand(source string, events []ParsedEvent, cfg ExpandConfig) ([]calendar.Event, error) {
	if cfg.To.Before(cfg.From) {
		return nil, errors.New("expand: window ends before it starts")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = calendar.MaxOccurrences
	}

	overrides := make(map[string]map[calendar.Date]ParsedEvent)
	for _, ev := range events {
		if !ev.IsOverride() {
			continue
		}
		if overrides[ev.UID] == nil {
			overrides[ev.UID] = make(map[calendar.Date]ParsedEvent)
		}
		overrides[ev.UID][civilDate(ev.RecurrenceID, ev.AllDay, cfg.Location)] = ev
	}

	seen := make(map[string]bool)
	var out []calendar.Event
	add := func(ev ParsedEvent, d calendar.Date) {
		if d.Before(cfg.From) || d.After(cfg.To) {
			return
		}
		e := toEvent(source, ev, d)
		if seen[e.ID] {
			return
		}
		seen[e.ID] = true
		out = append(out, e)
	}

	for _, ev := range events {
		if ev.IsOverride() {
			// Orphan overrides (no base series in this feed) stand alone.
			if hasBase(events, ev.UID) {
				continue
			}
			add(ev, civilDate(ev.Start, ev.AllDay, cfg.Location))
			continue
		}
		if ev.RRule == "" {
			add(ev, civilDate(ev.Start, ev.AllDay, cfg.Location))
			continue
		}
		for _, occ := range occurrences(ev, cfg) {
			d := civilDate(occ, ev.AllDay, cfg.Location)
			if o, ok := overrides[ev.UID][d]; ok {
				add(o, civilDate(o.Start, o.AllDay, cfg.Location))
				continue
			}
			add(ev, d)
		}
	}
	return out, nil
}

func occurrences(ev ParsedEvent, cfg ExpandConfig) []time.Time {
	opt, err := calendar.ParseRecurrence(ev.RRule)
	if err != nil {
		slog.Warn("feed_rrule_rejected", "uid", ev.UID, "rrule", ev.RRule, "error", err)
		return nil
	}
	opt.Dtstart = ev.Start
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		slog.Warn("feed_rrule_rejected", "uid", ev.UID, "rrule", ev.RRule, "error", err)
		return nil
	}

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen by a day on each side; civilDate filtering trims the edges.
	loc := ev.Start.Location()
	from := cfg.From.AddDays(-1).In(loc)
	to := cfg.To.AddDays(2).In(loc)
	times, complete := calendar.Window(set.Iterator(), from, to, cfg.MaxOccurrences)
	if !complete {
		slog.Warn("feed_series_truncated", "uid", ev.UID, "cap", cfg.MaxOccurrences)
	}
	return times
}

func hasBase(events []ParsedEvent, uid string) bool {
	for _, ev := range events {
		if ev.UID == uid && !ev.IsOverride() {
			return true
		}
	}
	return false
}

// civilDate places t on a calendar day. All-day values keep their written
// date; timed values are converted to loc first.
func civilDate(t time.Time, allDay bool, loc *time.Location) calendar.Date {
	if allDay {
		return calendar.NewDate(t.Year(), t.Month(), t.Day())
	}
	return calendar.DateOf(t.In(loc))
}

func toEvent(source string, ev ParsedEvent, d calendar.Date) calendar.Event {
	title := strings.TrimSpace(ev.Summary)
	if title == "" {
		title = untitled
	}
	return calendar.Event{
		ID:          fmt.Sprintf("%s:%s:%s", source, ev.UID, d),
		Title:       truncate(title, calendar.MaxTitleLength),
		Date:        d,
		Description: truncate(ev.Description, calendar.MaxDescriptionLength),
		Location:    truncate(ev.Location, calendar.MaxLocationLength),
		Source:      source,
	}
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
