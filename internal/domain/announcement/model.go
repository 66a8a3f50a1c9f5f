package announcement

import (
	"errors"
	"time"
)

// Status constants for the announcement lifecycle.
const (
	StatusSending = "sending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Max length constants.
const (
	MaxSubjectLength = 200
	MaxBodyLength    = 20000
)

// Domain errors
var (
	ErrEmptySubject   = errors.New("announcement subject is required")
	ErrEmptyBody      = errors.New("announcement body is required")
	ErrEmptySenderID  = errors.New("sender ID is required")
	ErrNoRecipients   = errors.New("club has no members to notify")
	ErrSubjectTooLong = errors.New("announcement subject cannot exceed 200 characters")
	ErrBodyTooLong    = errors.New("announcement body cannot exceed 20000 characters")
	ErrMissingClub    = errors.New("announcement must belong to a club")
)

// Announcement is a markdown message emailed to every member of a club.
type Announcement struct {
	ID             string
	ClubID         string
	Subject        string
	Body           string // markdown
	SenderID       string // AccountID of the sender
	Status         string
	RecipientCount int
	FailureReason  string
	CreatedAt      time.Time
	SentAt         time.Time
}

// Validate checks that the Announcement has valid data.
// PRE: Announcement struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Announcement) Validate() error {
	if a.Subject == "" {
		return ErrEmptySubject
	}
	if len(a.Subject) > MaxSubjectLength {
		return ErrSubjectTooLong
	}
	if a.Body == "" {
		return ErrEmptyBody
	}
	if len(a.Body) > MaxBodyLength {
		return ErrBodyTooLong
	}
	if a.SenderID == "" {
		return ErrEmptySenderID
	}
	if a.ClubID == "" {
		return ErrMissingClub
	}
	return nil
}

// MarkSent records a successful delivery.
// POST: Status is sent, SentAt set
func (a *Announcement) MarkSent(at time.Time, recipients int) {
	a.Status = StatusSent
	a.SentAt = at
	a.RecipientCount = recipients
	a.FailureReason = ""
}

// MarkFailed records a failed delivery.
// POST: Status is failed, reason kept for display
func (a *Announcement) MarkFailed(reason string) {
	a.Status = StatusFailed
	a.FailureReason = reason
}

// IsSent returns true if the announcement has been delivered.
// INVARIANT: Status field is not mutated
func (a *Announcement) IsSent() bool {
	return a.Status == StatusSent
}
