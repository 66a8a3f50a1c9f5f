package calendar

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// SourceClub marks events created by club members. Feed events carry the
// feed ID as their source.
const SourceClub = "club"

// Max length constants.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxLocationLength    = 200
	MaxRecurrenceLength  = 500
)

var (
	ErrEmptyTitle         = errors.New("event title cannot be empty")
	ErrTitleTooLong       = errors.New("event title cannot exceed 200 characters")
	ErrMissingDate        = errors.New("event date is required")
	ErrMissingClub        = errors.New("event must belong to a club")
	ErrInvalidRecurrence  = errors.New("event recurrence is not a valid RRULE")
	ErrDescriptionTooLong = errors.New("event description cannot exceed 2000 characters")
	ErrLocationTooLong    = errors.New("event location cannot exceed 200 characters")
	ErrRecurrenceTooLong  = errors.New("event recurrence cannot exceed 500 characters")
)

// Event is a dated entry on a club calendar. Date has day granularity.
// INVARIANT: Title is non-empty, Date is set.
type Event struct {
	ID          string
	ClubID      string
	Title       string
	Date        Date
	Description string
	Location    string
	Recurrence  string // RRULE body without the "RRULE:" prefix, empty for one-off events
	Source      string
	CreatedBy   string
	CreatedAt   time.Time
}

// Validate checks the event's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(e.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if e.ClubID == "" {
		return ErrMissingClub
	}
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if utf8.RuneCountInString(e.Location) > MaxLocationLength {
		return ErrLocationTooLong
	}
	if len(e.Recurrence) > MaxRecurrenceLength {
		return ErrRecurrenceTooLong
	}
	if e.Recurrence != "" {
		if _, err := ParseRecurrence(e.Recurrence); err != nil {
			return err
		}
	}
	return nil
}

// IsRecurring returns true if the event repeats.
func (e *Event) IsRecurring() bool {
	return e.Recurrence != ""
}

// FromFeed returns true if the event was imported from a subscription.
func (e *Event) FromFeed() bool {
	return e.Source != "" && e.Source != SourceClub
}
