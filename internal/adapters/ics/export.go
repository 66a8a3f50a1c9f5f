package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"clubdash/internal/domain/calendar"
)

// ProductID identifies exported calendars.
const ProductID = "-//clubdash//club calendar//EN"

// Export renders events as an all-day iCalendar stream named name. Instances
// of a series share an event ID, so the UID also carries the date.
// PRE: events have set dates
// POST: one VEVENT per event, in input order
func Export(name string, events []calendar.Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName(name)

	for _, e := range events {
		ve := cal.AddEvent(e.ID + "-" + e.Date.String() + "@clubdash")
		ve.SetDtStampTime(stamp)
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		start := e.Date.In(time.UTC)
		ve.SetAllDayStartAt(start)
		ve.SetAllDayEndAt(start.AddDate(0, 0, 1))
	}
	return cal.Serialize()
}
