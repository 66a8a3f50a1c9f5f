package web

import (
	"net/http"

	"clubdash/internal/adapters/http/middleware"
)

// registerRoutes maps every endpoint. {club} accepts a club ID or name.
func registerRoutes(mux *http.ServeMux) {
	// Ops
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/admin/perf", handleAdminPerf)

	// Accounts and sessions
	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLoginForm)
	mux.HandleFunc("POST /api/login", handleLoginAPI)
	mux.HandleFunc("GET /register", handleRegisterPage)
	mux.HandleFunc("POST /register", handleRegisterForm)
	mux.HandleFunc("POST /api/register", handleRegisterAPI)
	mux.HandleFunc("POST /logout", handleLogout)
	mux.HandleFunc("GET /api/user", handleCurrentUser)
	mux.HandleFunc("POST /api/user/password", handleChangePassword)
	mux.HandleFunc("GET /api/users/search", handleSearchUsers)

	// Pages; anonymous visitors go to the login form
	page := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }
	mux.Handle("GET /{$}", page(handleHome))
	mux.Handle("GET /clubs/{club}", page(handleDashboardPage))
	mux.Handle("GET /clubs/{club}/calendar", page(handleCalendarPage))

	// Club dashboard and members
	mux.HandleFunc("GET /api/clubs/{club}/dashboard", handleDashboardAPI)
	mux.HandleFunc("GET /api/clubs/{club}/members", handleListMembers)
	mux.HandleFunc("POST /api/clubs/{club}/members", handleAddMember)
	mux.HandleFunc("DELETE /api/clubs/{club}/members", handleRemoveMember)

	// Calendar
	mux.HandleFunc("GET /api/clubs/{club}/events/{year}/{month}", handleMonthEvents)
	mux.HandleFunc("POST /api/clubs/{club}/events", handleCreateEvent)
	mux.HandleFunc("GET /api/events/{id}", handleGetEvent)
	mux.HandleFunc("PUT /api/events/{id}", handleUpdateEvent)
	mux.HandleFunc("DELETE /api/events/{id}", handleDeleteEvent)
	mux.HandleFunc("GET /api/clubs/{club}/calendar", handleCalendarAPI)
	mux.HandleFunc("GET /api/clubs/{club}/calendar.ics", handleCalendarICS)
	mux.HandleFunc("POST /api/calendar/render", handleRenderCalendar)

	// Feed subscriptions
	mux.HandleFunc("GET /api/clubs/{club}/feeds", handleListFeeds)
	mux.HandleFunc("POST /api/clubs/{club}/feeds", handleCreateFeed)
	mux.HandleFunc("DELETE /api/clubs/{club}/feeds/{id}", handleDeleteFeed)
	mux.HandleFunc("POST /api/clubs/{club}/feeds/{id}/refresh", handleRefreshFeed)

	// Finance
	mux.HandleFunc("GET /api/clubs/{club}/finance", handleFinance)
	mux.HandleFunc("POST /api/clubs/{club}/finance/purchases", handleRecordPurchase)
	mux.HandleFunc("DELETE /api/clubs/{club}/finance/purchases/{id}", handleDeletePurchase)
	mux.HandleFunc("PUT /api/clubs/{club}/finance/budget", handleSetBudget)

	// Announcements
	mux.HandleFunc("GET /api/clubs/{club}/announcements", handleListAnnouncements)
	mux.HandleFunc("POST /api/clubs/{club}/announcements", handleSendAnnouncement)

	// Funding forms
	mux.HandleFunc("POST /api/analyze-form", handleAnalyzeForm)
}
