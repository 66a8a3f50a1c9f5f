package web

import (
	"log/slog"
	"net/http"
	"strings"

	"clubdash/internal/adapters/http/middleware"
	"clubdash/internal/application/listutil"
	"clubdash/internal/application/orchestrators"
	"clubdash/internal/application/projections"
	"clubdash/internal/domain/calendar"
)

type memberRequest struct {
	Email string `json:"email"`
}

// handleHome lists the signed-in account's clubs (GET /). RequireAuth
// guarantees a session.
func handleHome(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	detail, err := projections.QueryUserDetail(r.Context(), sess.AccountID, projections.GetUserDetailDeps{
		AccountStore: stores.AccountStore,
		ClubStore:    stores.ClubStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	if len(detail.Clubs) == 1 && !detail.IsAdmin() {
		http.Redirect(w, r, "/clubs/"+detail.Clubs[0].ID, http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "home.html", map[string]any{"User": detail})
}

func dashboardDeps() projections.GetDashboardDeps {
	return projections.GetDashboardDeps{
		ClubStore:         stores.ClubStore,
		CalendarDeps:      calendarDeps(),
		PurchaseStore:     stores.PurchaseStore,
		AnnouncementStore: stores.AnnouncementStore,
	}
}

func queryDashboard(w http.ResponseWriter, r *http.Request, access clubAccess) (projections.DashboardResult, bool) {
	selected, err := optionalDate(r.URL.Query().Get("selected"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return projections.DashboardResult{}, false
	}
	res, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		ClubID:    access.Club.ID,
		AccountID: access.Session.AccountID,
		Selected:  selected,
	}, dashboardDeps())
	if err != nil {
		writeError(w, err)
		return projections.DashboardResult{}, false
	}
	return res, true
}

// handleDashboardAPI returns the club dashboard (GET /api/clubs/{club}/dashboard).
// PRE: caller is a member of the club
// POST: calendar is in preview mode; finance is omitted when unavailable
func handleDashboardAPI(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	res, ok := queryDashboard(w, r, access)
	if !ok {
		return
	}
	body := map[string]any{
		"club":          toClubDTO(res.Club),
		"is_owner":      res.IsOwner,
		"member_count":  res.MemberCount,
		"calendar":      toCalendarResultDTO(res.Preview),
		"announcements": toAnnouncementDTOs(res.Announcements),
	}
	if res.Finance != nil {
		body["finance"] = toFinanceDTO(*res.Finance)
	}
	writeJSON(w, http.StatusOK, body)
}

// handleDashboardPage renders the club dashboard (GET /clubs/{club}).
func handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	res, ok := queryDashboard(w, r, access)
	if !ok {
		return
	}
	renderTemplate(w, r, "dashboard.html", map[string]any{
		"Club":      res.Club,
		"ClubRef":   res.Club.ID,
		"Dashboard": res,
		"Calendar":  res.Preview,
	})
}

// handleListMembers returns the members of a club (GET /api/clubs/{club}/members).
// POST: 404 when the club has no members
func handleListMembers(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	members, err := projections.QueryClubMembers(r.Context(), access.Club.ID, stores.ClubStore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": toMemberDTOs(members)})
}

func membersDeps() orchestrators.MembersDeps {
	return orchestrators.MembersDeps{
		ClubStore:    stores.ClubStore,
		AccountStore: stores.AccountStore,
		Now:          timeNow,
	}
}

func decodeMemberRequest(w http.ResponseWriter, r *http.Request) (memberRequest, bool) {
	var req memberRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return memberRequest{}, false
	}
	req.Email = strings.TrimSpace(req.Email)
	return req, true
}

// handleAddMember enrolls an existing account by email (POST /api/clubs/{club}/members).
// PRE: caller is a member of the club
// POST: 201 with the new member; 400 when already a member; 404 unknown email
func handleAddMember(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	req, ok := decodeMemberRequest(w, r)
	if !ok {
		return
	}
	acct, err := orchestrators.ExecuteAddMember(r.Context(), orchestrators.MemberChangeInput{
		ClubID: access.Club.ID,
		Email:  req.Email,
	}, membersDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	slog.Info("club_event", "event", "member_added", "club_id", access.Club.ID, "account_id", acct.ID, "by", access.Session.AccountID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"account_id": acct.ID,
		"username":   acct.Username,
		"email":      acct.Email,
	})
}

// handleRemoveMember removes a member by email (DELETE /api/clubs/{club}/members).
// PRE: caller owns the club, is a site admin, or is removing themselves
// POST: 204; 400 when the account is not a member or owns the club
func handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	access, ok := requireClub(w, r)
	if !ok {
		return
	}
	req, ok := decodeMemberRequest(w, r)
	if !ok {
		return
	}
	self := strings.EqualFold(req.Email, access.Session.Email)
	if !access.IsOwner && !access.Session.IsAdmin() && !self {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", access.Session.AccountID, "club_id", access.Club.ID, "reason", "not owner")
		http.Error(w, orchestrators.ErrNotClubOwner.Error(), http.StatusForbidden)
		return
	}
	err := orchestrators.ExecuteRemoveMember(r.Context(), orchestrators.MemberChangeInput{
		ClubID: access.Club.ID,
		Email:  req.Email,
	}, membersDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSearchUsers finds accounts to add to a club (GET /api/users/search?query=).
// POST: 400 for an empty query; paginated with page and per_page
func handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	q := r.URL.Query()
	res, err := projections.QuerySearchAccounts(r.Context(), projections.SearchAccountsQuery{
		Query: q.Get("query"),
		Page:  listutil.ParsePageParams(q),
	}, stores.AccountStore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// optionalDate parses a YYYY-MM-DD query value; empty means none.
func optionalDate(s string) (calendar.Date, error) {
	if s == "" {
		return calendar.Date{}, nil
	}
	return calendar.ParseDate(s)
}
