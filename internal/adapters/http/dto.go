package web

import (
	"time"

	"clubdash/internal/application/projections"
	domainAnnouncement "clubdash/internal/domain/announcement"
	"clubdash/internal/domain/calendar"
	domainClub "clubdash/internal/domain/club"
	domainFeed "clubdash/internal/domain/feed"
	domainFinance "clubdash/internal/domain/finance"
)

// JSON shapes. Months are 1-based on the wire except where noted; amounts
// are decimal strings with two places.

type eventDTO struct {
	ID          string        `json:"id"`
	ClubID      string        `json:"club_id,omitempty"`
	Title       string        `json:"title"`
	Date        calendar.Date `json:"date"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	Recurrence  string        `json:"recurrence,omitempty"`
	Source      string        `json:"source,omitempty"`
	ReadOnly    bool          `json:"read_only"`
}

func toEventDTO(e calendar.Event) eventDTO {
	return eventDTO{
		ID:          e.ID,
		ClubID:      e.ClubID,
		Title:       e.Title,
		Date:        e.Date,
		Description: e.Description,
		Location:    e.Location,
		Recurrence:  e.Recurrence,
		Source:      e.Source,
		ReadOnly:    e.FromFeed(),
	}
}

func toEventDTOs(events []calendar.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toEventDTO(e))
	}
	return out
}

type monthDTO struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func toMonthDTO(c calendar.Cursor) monthDTO {
	return monthDTO{Year: c.Year, Month: c.Month + 1}
}

type dayDTO struct {
	Date           calendar.Date `json:"date"`
	InCurrentMonth bool          `json:"in_current_month"`
	IsToday        bool          `json:"is_today"`
	IsSelected     bool          `json:"is_selected"`
	EventCount     int           `json:"event_count"`
	Events         []eventDTO    `json:"events"`
}

type calendarDTO struct {
	Title string     `json:"title"`
	Mode  string     `json:"mode"`
	Year  int        `json:"year"`
	Month int        `json:"month"`
	Prev  *monthDTO  `json:"prev,omitempty"`
	Next  *monthDTO  `json:"next,omitempty"`
	Weeks [][]dayDTO `json:"weeks"`
}

// toCalendarDTO shapes a view. month is written as given; callers choose
// the base.
func toCalendarDTO(v calendar.View, month int) calendarDTO {
	out := calendarDTO{
		Title: v.Title,
		Mode:  v.Mode.String(),
		Year:  v.Cursor.Year,
		Month: month,
		Weeks: make([][]dayDTO, 0, calendar.GridCells/7),
	}
	for _, week := range v.Weeks() {
		row := make([]dayDTO, 0, 7)
		for _, d := range week {
			row = append(row, dayDTO{
				Date:           d.Date,
				InCurrentMonth: d.InCurrentMonth,
				IsToday:        d.IsToday,
				IsSelected:     d.IsSelected,
				EventCount:     d.EventCount,
				Events:         toEventDTOs(d.Events),
			})
		}
		out.Weeks = append(out.Weeks, row)
	}
	return out
}

func toCalendarResultDTO(res projections.CalendarViewResult) calendarDTO {
	out := toCalendarDTO(res.View, res.View.Cursor.Month+1)
	prev, next := toMonthDTO(res.Prev), toMonthDTO(res.Next)
	out.Prev, out.Next = &prev, &next
	return out
}

type memberDTO struct {
	AccountID string    `json:"account_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

func toMemberDTOs(members []domainClub.Member) []memberDTO {
	out := make([]memberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, memberDTO{AccountID: m.AccountID, Username: m.Username, Email: m.Email, Role: m.Role, JoinedAt: m.JoinedAt})
	}
	return out
}

type clubDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id"`
	Budget      string `json:"budget"`
}

func toClubDTO(c domainClub.Club) clubDTO {
	return clubDTO{ID: c.ID, Name: c.Name, Description: c.Description, OwnerID: c.OwnerID, Budget: domainFinance.FormatCents(c.BudgetCents)}
}

type purchaseDTO struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Amount string        `json:"amount"`
	Date   calendar.Date `json:"date"`
}

func toPurchaseDTO(p domainFinance.Purchase) purchaseDTO {
	return purchaseDTO{ID: p.ID, Name: p.Name, Amount: domainFinance.FormatCents(p.AmountCents), Date: p.Date}
}

type financeDTO struct {
	Fund      string        `json:"fund"`
	Budget    string        `json:"budget"`
	Spent     string        `json:"spent"`
	Purchases []purchaseDTO `json:"purchases"`
}

func toFinanceDTO(s domainFinance.Summary) financeDTO {
	out := financeDTO{
		Fund:      domainFinance.FormatCents(s.FundCents),
		Budget:    domainFinance.FormatCents(s.BudgetCents),
		Spent:     domainFinance.FormatCents(s.SpentCents),
		Purchases: make([]purchaseDTO, 0, len(s.Purchases)),
	}
	for _, p := range s.Purchases {
		out.Purchases = append(out.Purchases, toPurchaseDTO(p))
	}
	return out
}

type announcementDTO struct {
	ID             string    `json:"id"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	Status         string    `json:"status"`
	RecipientCount int       `json:"recipient_count"`
	FailureReason  string    `json:"failure_reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toAnnouncementDTO(a domainAnnouncement.Announcement) announcementDTO {
	return announcementDTO{
		ID:             a.ID,
		Subject:        a.Subject,
		Body:           a.Body,
		Status:         a.Status,
		RecipientCount: a.RecipientCount,
		FailureReason:  a.FailureReason,
		CreatedAt:      a.CreatedAt,
	}
}

func toAnnouncementDTOs(list []domainAnnouncement.Announcement) []announcementDTO {
	out := make([]announcementDTO, 0, len(list))
	for _, a := range list {
		out = append(out, toAnnouncementDTO(a))
	}
	return out
}

type feedDTO struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	EventCount    int        `json:"event_count"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

func toFeedDTO(f domainFeed.Feed) feedDTO {
	out := feedDTO{ID: f.ID, Name: f.Name, URL: f.URL, EventCount: f.EventCount, LastError: f.LastError}
	if !f.LastFetchedAt.IsZero() {
		t := f.LastFetchedAt
		out.LastFetchedAt = &t
	}
	return out
}
