package web

import (
	"bytes"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"

	"clubdash/internal/adapters/formtext"
	"clubdash/internal/adapters/http/middleware"
	feedStore "clubdash/internal/adapters/storage/feed"
	"clubdash/internal/application/orchestrators"
	"clubdash/internal/application/projections"
	domainAccount "clubdash/internal/domain/account"
	domainAnnouncement "clubdash/internal/domain/announcement"
	"clubdash/internal/domain/calendar"
	domainClub "clubdash/internal/domain/club"
	domainFeed "clubdash/internal/domain/feed"
	domainFinance "clubdash/internal/domain/finance"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode_failed", "error", err)
	}
}

// badRequestErrors are caller mistakes; their messages are safe to return.
var badRequestErrors = []error{
	calendar.ErrInvalidMonth, calendar.ErrInvalidDate, calendar.ErrInvalidMode,
	calendar.ErrEmptyTitle, calendar.ErrTitleTooLong, calendar.ErrMissingDate, calendar.ErrMissingClub,
	calendar.ErrInvalidRecurrence, calendar.ErrRecurrenceTooFrequent, calendar.ErrDescriptionTooLong, calendar.ErrLocationTooLong, calendar.ErrRecurrenceTooLong,
	domainAccount.ErrInvalidEmail, domainAccount.ErrEmptyEmail, domainAccount.ErrEmptyUsername,
	domainAccount.ErrInvalidUsername, domainAccount.ErrInvalidRole, domainAccount.ErrEmptyPassword,
	domainAccount.ErrPasswordTooShort, domainAccount.ErrPasswordMismatch, domainAccount.ErrWrongPassword,
	domainAccount.ErrUsernameTooLong, domainAccount.ErrEmailTooLong,
	domainClub.ErrEmptyName, domainClub.ErrNameTooLong, domainClub.ErrNegativeBudget, domainClub.ErrDescriptionTooLong,
	domainClub.ErrAlreadyMember, domainClub.ErrNotMember, domainClub.ErrCannotRemoveOwner,
	domainFinance.ErrEmptyName, domainFinance.ErrNonPositive, domainFinance.ErrMissingDate,
	domainFinance.ErrInvalidAmount, domainFinance.ErrNegativeBudget, domainFinance.ErrNameTooLong,
	domainAnnouncement.ErrEmptySubject, domainAnnouncement.ErrEmptyBody, domainAnnouncement.ErrNoRecipients,
	domainAnnouncement.ErrSubjectTooLong, domainAnnouncement.ErrBodyTooLong,
	domainFeed.ErrEmptyName, domainFeed.ErrInvalidURL, domainFeed.ErrNameTooLong, domainFeed.ErrURLTooLong,
	orchestrators.ErrEmailRequired, orchestrators.ErrEmailAlreadyExists, orchestrators.ErrUsernameTaken,
	orchestrators.ErrCurrentPasswordWrong, orchestrators.ErrNewPasswordSame,
	projections.ErrEmptyQuery, formtext.ErrUnsupported,
}

// errorStatus maps an orchestrator or projection error to an HTTP status.
// Zero means the error is internal.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, orchestrators.ErrAccountNotFound),
		errors.Is(err, orchestrators.ErrFeedNotFound), errors.Is(err, projections.ErrNoMembers):
		return http.StatusNotFound
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, orchestrators.ErrNotClubOwner), errors.Is(err, orchestrators.ErrAccountLocked):
		return http.StatusForbidden
	case errors.Is(err, orchestrators.ErrFeedEventReadOnly), errors.Is(err, feedStore.ErrDuplicateURL):
		return http.StatusConflict
	case errors.Is(err, formtext.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return 0
}

// writeError answers with the mapped status, or a generic 500.
func writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == 0 {
		internalError(w, err)
		return
	}
	msg := err.Error()
	if status == http.StatusNotFound && errors.Is(err, sql.ErrNoRows) {
		msg = "not found"
	}
	http.Error(w, msg, status)
}

//go:embed templates/*.html
var templateFS embed.FS

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

// renderTemplateStatus renders into a buffer first so a template error still
// produces a clean 500.
func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())

	funcMap := template.FuncMap{
		"currentUser": func() string { return sess.Username },
		"isLoggedIn":  func() bool { return loggedIn },
		"isAdmin":     func() bool { return loggedIn && sess.IsAdmin() },
		"csrfField":   func() template.HTML { return csrf.TemplateField(r) },
		"csrfToken":   func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			html, err := orchestrators.RenderMarkdown(md)
			if err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(html)
		},
		"cents":     domainFinance.FormatCents,
		"weekdays":  func() []string { return []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} },
		"wireMonth": func(c calendar.Cursor) int { return c.Month + 1 },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/grid.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", templateName, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// requireSession returns the signed-in session, or answers 401.
func requireSession(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireAdmin checks the session for admin role and returns the session.
// Returns false if the request should not proceed.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return middleware.Session{}, false
	}
	if !sess.IsAdmin() {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role, "required", "admin")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// clubAccess is a resolved club plus the caller's standing in it.
type clubAccess struct {
	Session middleware.Session
	Club    domainClub.Club
	IsOwner bool
}

// authorizeClub checks that sess may use clubID: members and site admins may.
func authorizeClub(w http.ResponseWriter, r *http.Request, sess middleware.Session, c domainClub.Club) (clubAccess, bool) {
	m, err := stores.ClubStore.GetMembership(r.Context(), c.ID, sess.AccountID)
	switch {
	case err == nil:
		return clubAccess{Session: sess, Club: c, IsOwner: m.IsOwner()}, true
	case !errors.Is(err, sql.ErrNoRows):
		internalError(w, err)
		return clubAccess{}, false
	case sess.IsAdmin():
		return clubAccess{Session: sess, Club: c}, true
	}
	slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "club_id", c.ID, "reason", "not a member")
	http.Error(w, "Forbidden", http.StatusForbidden)
	return clubAccess{}, false
}

// requireClub resolves the {club} path segment, by ID or by name, and checks
// the caller may use it.
func requireClub(w http.ResponseWriter, r *http.Request) (clubAccess, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return clubAccess{}, false
	}
	c, err := stores.ClubStore.Resolve(r.Context(), r.PathValue("club"))
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "club not found", http.StatusNotFound)
		return clubAccess{}, false
	}
	if err != nil {
		internalError(w, err)
		return clubAccess{}, false
	}
	return authorizeClub(w, r, sess, c)
}

