package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	emailAdapter "clubdash/internal/adapters/email"
	"clubdash/internal/domain/announcement"
	"clubdash/internal/domain/club"
)

// markdown renders announcement bodies. Raw HTML in the source is escaped.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts a markdown body to HTML.
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// AnnouncementStore defines the store interface needed by SendAnnouncement.
type AnnouncementStore interface {
	Save(ctx context.Context, a announcement.Announcement) error
}

// MemberLister lists the members of a club.
type MemberLister interface {
	ListMembers(ctx context.Context, clubID string) ([]club.Member, error)
}

// SendAnnouncementInput carries the compose form.
type SendAnnouncementInput struct {
	ClubID   string
	ClubName string
	SenderID string
	Subject  string
	Body     string // markdown
}

// SendAnnouncementDeps holds dependencies for SendAnnouncement.
type SendAnnouncementDeps struct {
	AnnouncementStore AnnouncementStore
	Members           MemberLister
	EmailSender       emailAdapter.Sender
	GenerateID        func() string
	Now               func() time.Time
	FromAddress       string
	ReplyTo           string
}

// ExecuteSendAnnouncement emails a markdown announcement to every member of
// a club, one message per member. Delivery is attempted once.
// PRE: caller belongs to the club
// POST: announcement stored as sent, or as failed with the reason when the
// provider rejects the batch (the error is also returned)
func ExecuteSendAnnouncement(ctx context.Context, input SendAnnouncementInput, deps SendAnnouncementDeps) (announcement.Announcement, error) {
	a := announcement.Announcement{
		ID:        deps.GenerateID(),
		ClubID:    input.ClubID,
		Subject:   strings.TrimSpace(input.Subject),
		Body:      input.Body,
		SenderID:  input.SenderID,
		Status:    announcement.StatusSending,
		CreatedAt: deps.Now(),
	}
	if err := a.Validate(); err != nil {
		return announcement.Announcement{}, err
	}

	members, err := deps.Members.ListMembers(ctx, input.ClubID)
	if err != nil {
		return announcement.Announcement{}, err
	}
	if len(members) == 0 {
		return announcement.Announcement{}, announcement.ErrNoRecipients
	}

	html, err := RenderMarkdown(a.Body)
	if err != nil {
		return announcement.Announcement{}, fmt.Errorf("render announcement: %w", err)
	}
	if err := deps.AnnouncementStore.Save(ctx, a); err != nil {
		return announcement.Announcement{}, err
	}

	subject := a.Subject
	if input.ClubName != "" {
		subject = "[" + input.ClubName + "] " + subject
	}
	reqs := make([]emailAdapter.SendRequest, 0, len(members))
	for _, m := range members {
		reqs = append(reqs, emailAdapter.SendRequest{
			To:      []string{m.Email},
			From:    deps.FromAddress,
			Subject: subject,
			HTML:    html,
			Text:    a.Body,
			ReplyTo: deps.ReplyTo,
			Tags:    map[string]string{"club_id": a.ClubID, "announcement_id": a.ID},
		})
	}

	if _, err := deps.EmailSender.SendBatch(ctx, reqs); err != nil {
		a.MarkFailed(err.Error())
		if saveErr := deps.AnnouncementStore.Save(ctx, a); saveErr != nil {
			slog.Error("email_event", "event", "status_save_failed", "announcement_id", a.ID, "error", saveErr)
		}
		slog.Error("email_event", "event", "announcement_failed", "announcement_id", a.ID, "club_id", a.ClubID, "error", err)
		return a, fmt.Errorf("send announcement: %w", err)
	}

	a.MarkSent(deps.Now(), len(reqs))
	if err := deps.AnnouncementStore.Save(ctx, a); err != nil {
		return a, err
	}
	slog.Info("email_event", "event", "announcement_sent", "announcement_id", a.ID, "club_id", a.ClubID, "recipient_count", len(reqs))
	return a, nil
}
