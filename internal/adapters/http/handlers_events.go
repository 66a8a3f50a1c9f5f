package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"clubdash/internal/adapters/ics"
	"clubdash/internal/application/orchestrators"
	"clubdash/internal/application/projections"
	"clubdash/internal/domain/calendar"
)

var errBadMonth = errors.New("month must be between 1 and 12")

type eventRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Recurrence  string `json:"recurrence"`
}

type eventUpdateRequest struct {
	Title       *string `json:"title"`
	Date        *string `json:"date"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Recurrence  *string `json:"recurrence"`
}

// renderRequest asks for a stateless grid. Month is 0-based.
type renderRequest struct {
	Year     int           `json:"year"`
	Month    int           `json:"month"`
	Mode     string        `json:"mode"`
	Selected string        `json:"selected"`
	Events   []renderEvent `json:"events"`
}

type renderEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

func eventSource() projections.EventSource {
	return projections.ClubEventSource{Events: stores.EventStore}
}

func calendarDeps() projections.GetCalendarViewDeps {
	return projections.GetCalendarViewDeps{Source: eventSource(), Clock: clock}
}

func saveEventDeps() orchestrators.SaveEventDeps {
	return orchestrators.SaveEventDeps{
		EventStore: stores.EventStore,
		GenerateID: generateID,
		Now:        timeNow,
	}
}

// wireMonth reads a 1-based month and returns it 0-based.
func wireMonth(s string) (int, error) {
	m, err := strconv.Atoi(s)
	if err != nil || m < 1 || m > 12 {
		return 0, errBadMonth
	}
	return m - 1, nil
}

// monthCursor reads year and 1-based month; both absent means today's month.
func monthCursor(yearStr, monthStr string) (calendar.Cursor, error) {
	if yearStr == "" && monthStr == "" {
		return calendar.CursorAt(clock.Today()), nil
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return calendar.Cursor{}, fmt.Errorf("invalid year %q", yearStr)
	}
	month, err := wireMonth(monthStr)
	if err != nil {
		return calendar.Cursor{}, err
	}
	return calendar.NewCursor(year, month)
}

// parseCalendarQuery reads year, month, mode, dir and selected.
func parseCalendarQuery(r *http.Request, clubID string, defaultMode calendar.Mode) (projections.CalendarViewQuery, error) {
	q := r.URL.Query()
	cq := projections.CalendarViewQuery{
		ClubID: clubID,
		Mode:   defaultMode,
		Dir:    calendar.ParseTransition(q.Get("dir")),
	}
	if s := q.Get("mode"); s != "" {
		mode, err := calendar.ParseMode(s)
		if err != nil {
			return cq, err
		}
		cq.Mode = mode
	}
	selected, err := optionalDate(q.Get("selected"))
	if err != nil {
		return cq, err
	}
	cq.Selected = selected
	if q.Get("year") != "" || q.Get("month") != "" {
		cur, err := monthCursor(q.Get("year"), q.Get("month"))
		if err != nil {
			return cq, err
		}
		cq.Year, cq.Month, cq.HasMonth = cur.Year, cur.Month, true
	}
	return cq, nil
}

func queryCalendar(w http.ResponseWriter, r *http.Request, access clubAccess) (projections.CalendarViewResult, calendar.Mode, bool) {
	cq, err := parseCalendarQuery(r, access.Club.ID, calendar.ModeFull)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return projections.CalendarViewResult{}, 0, false
	}
	res, err := projections.QueryCalendarView(r.Context(), cq, calendarDeps())
	if err != nil {
		writeError(w, err)
		return projections.CalendarViewResult{}, 0, false
	}
	return res, cq.Mode, true
}

// handleMonthEvents lists a club month (GET /api/clubs/{club}/events/{year}/{month}).
// PRE: month is 1-based
// POST: events ordered by date, recurring occurrences and feed events included
func handleMonthEvents(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	cur, err := monthCursor(r.PathValue("year"), r.PathValue("month"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	events, err := projections.QueryMonthEvents(r.Context(), access.Club.ID, cur, eventSource())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":   cur.Year,
		"month":  cur.Month + 1,
		"events": toEventDTOs(events),
	})
}

// handleCreateEvent adds an event to a club calendar (POST /api/clubs/{club}/events).
// POST: 201 with the saved event and its new ID
func handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	var req eventRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	var date calendar.Date
	if strings.TrimSpace(req.Date) != "" {
		d, err := calendar.ParseDate(strings.TrimSpace(req.Date))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		date = d
	}
	saved, err := orchestrators.ExecuteSaveEvent(r.Context(), calendar.Event{
		ClubID:      access.Club.ID,
		Title:       req.Title,
		Date:        date,
		Description: req.Description,
		Location:    req.Location,
		Recurrence:  req.Recurrence,
		CreatedBy:   access.Session.AccountID,
	}, saveEventDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTO(saved))
}

// requireEvent loads {id} and checks the caller may use its club.
func requireEvent(w http.ResponseWriter, r *http.Request) (calendar.Event, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return calendar.Event{}, false
	}
	e, err := stores.EventStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return calendar.Event{}, false
	}
	c, err := stores.ClubStore.GetByID(r.Context(), e.ClubID)
	if err != nil {
		writeError(w, err)
		return calendar.Event{}, false
	}
	if _, ok := authorizeClub(w, r, sess, c); !ok {
		return calendar.Event{}, false
	}
	return e, true
}

// handleGetEvent returns one event (GET /api/events/{id}).
func handleGetEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := requireEvent(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(e))
}

// handleUpdateEvent applies a partial update (PUT /api/events/{id}).
// POST: 409 for events imported from a feed
func handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := requireEvent(w, r)
	if !ok {
		return
	}
	var req eventUpdateRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	saved, err := orchestrators.ExecuteUpdateEvent(r.Context(), orchestrators.UpdateEventInput{
		ID:          e.ID,
		Title:       req.Title,
		Date:        req.Date,
		Description: req.Description,
		Location:    req.Location,
		Recurrence:  req.Recurrence,
	}, saveEventDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(saved))
}

// handleDeleteEvent removes an event (DELETE /api/events/{id}).
// POST: 204; 409 for events imported from a feed
func handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := requireEvent(w, r)
	if !ok {
		return
	}
	if err := orchestrators.ExecuteDeleteEvent(r.Context(), e.ID, saveEventDeps()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCalendarAPI returns a positioned month grid
// (GET /api/clubs/{club}/calendar?year=&month=&mode=&dir=&selected=).
// PRE: month is 1-based; mode defaults to full
// POST: the resulting cursor is in year/month with prev/next neighbours
func handleCalendarAPI(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	res, _, ok := queryCalendar(w, r, access)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCalendarResultDTO(res))
}

// handleCalendarPage renders the month grid page (GET /clubs/{club}/calendar).
func handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	res, mode, ok := queryCalendar(w, r, access)
	if !ok {
		return
	}
	renderTemplate(w, r, "calendar.html", map[string]any{
		"Club":     access.Club,
		"ClubRef":  access.Club.ID,
		"Calendar": res,
		"Mode":     mode.String(),
	})
}

// handleCalendarICS exports a club month as iCalendar
// (GET /api/clubs/{club}/calendar.ics?year=&month=).
func handleCalendarICS(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	cur, err := monthCursor(q.Get("year"), q.Get("month"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	events, err := projections.QueryMonthEvents(r.Context(), access.Club.ID, cur, eventSource())
	if err != nil {
		writeError(w, err)
		return
	}
	body := ics.Export(access.Club.Name, events, timeNow().UTC())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.ics"`, access.Club.ID, cur))
	w.Write([]byte(body))
}

// handleRenderCalendar renders caller-supplied events into a month grid
// (POST /api/calendar/render). Nothing is read from or written to storage.
// PRE: month is 0-based
// POST: an event's time of day is ignored; events whose date does not parse
// are skipped, never an error
func handleRenderCalendar(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	g, err := calendar.BuildMonthGrid(req.Year, req.Month)
	if err != nil {
		writeError(w, err)
		return
	}
	mode, err := calendar.ParseMode(req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}
	selected, err := optionalDate(req.Selected)
	if err != nil {
		writeError(w, err)
		return
	}

	events := make([]calendar.Event, 0, len(req.Events))
	for i, re := range req.Events {
		d, err := calendar.ParseEventDate(strings.TrimSpace(re.Date))
		if err != nil {
			slog.Debug("calendar_event", "event", "render_skip", "index", i, "date", re.Date)
			continue
		}
		events = append(events, calendar.Event{
			ID:          re.ID,
			Title:       re.Title,
			Date:        d,
			Description: re.Description,
			Location:    re.Location,
		})
	}

	view := calendar.Render(g, events, mode, clock.Today(), selected)
	writeJSON(w, http.StatusOK, toCalendarDTO(view, g.Month))
}
