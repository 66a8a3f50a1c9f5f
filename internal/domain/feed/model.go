package feed

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Max length constants.
const (
	MaxNameLength = 100
	MaxURLLength  = 2048
)

// Domain errors
var (
	ErrEmptyName   = errors.New("feed name cannot be empty")
	ErrInvalidURL  = errors.New("feed URL must be an absolute http, https or webcal URL")
	ErrNameTooLong = errors.New("feed name cannot exceed 100 characters")
	ErrMissingClub = errors.New("feed must belong to a club")
	ErrURLTooLong  = errors.New("feed URL cannot exceed 2048 characters")
)

// Feed is an external iCalendar subscription merged into a club's calendar.
type Feed struct {
	ID            string
	ClubID        string
	Name          string
	URL           string
	CreatedBy     string
	CreatedAt     time.Time
	LastFetchedAt time.Time
	LastError     string
	EventCount    int
}

// Validate checks the feed's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (f *Feed) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if len(f.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if f.ClubID == "" {
		return ErrMissingClub
	}
	if len(f.URL) > MaxURLLength {
		return ErrURLTooLong
	}
	u, err := url.Parse(f.URL)
	if err != nil || u.Host == "" {
		return ErrInvalidURL
	}
	switch u.Scheme {
	case "http", "https", "webcal":
	default:
		return ErrInvalidURL
	}
	return nil
}

// FetchURL returns the URL to request; webcal:// is served over https.
func (f *Feed) FetchURL() string {
	if strings.HasPrefix(f.URL, "webcal://") {
		return "https://" + strings.TrimPrefix(f.URL, "webcal://")
	}
	return f.URL
}

// RecordSuccess notes a completed refresh.
func (f *Feed) RecordSuccess(at time.Time, events int) {
	f.LastFetchedAt = at
	f.LastError = ""
	f.EventCount = events
}

// RecordFailure notes a failed refresh; previously imported events stay.
func (f *Feed) RecordFailure(at time.Time, err error) {
	f.LastFetchedAt = at
	f.LastError = err.Error()
}
