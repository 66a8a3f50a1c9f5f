package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"clubdash/internal/adapters/http/middleware"
	"clubdash/internal/application/orchestrators"
	"clubdash/internal/application/projections"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	ClubName  string `json:"club_name"`
}

// startSession creates a session for the account and sets the cookie.
func startSession(w http.ResponseWriter, s middleware.Session) error {
	token, err := sessions.Create(s)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(w, token, secureCookie)
	return nil
}

func login(r *http.Request, req loginRequest) (orchestrators.LoginResult, error) {
	return orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Login:    strings.TrimSpace(req.Login),
		Password: req.Password,
	}, orchestrators.LoginDeps{AccountStore: stores.AccountStore, Now: timeNow})
}

func sessionFor(res orchestrators.LoginResult) middleware.Session {
	return middleware.Session{AccountID: res.AccountID, Username: res.Username, Email: res.Email, Role: res.Role}
}

// handleLoginPage renders the login form (GET /login).
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login.html", map[string]any{})
}

// handleLoginForm handles the login form post (POST /login).
// PRE: CSRF token present
// POST: session cookie set and redirect home, or the form re-rendered with an error
func handleLoginForm(w http.ResponseWriter, r *http.Request) {
	req := loginRequest{Login: r.FormValue("login"), Password: r.FormValue("password")}
	res, err := login(r, req)
	if err != nil {
		status := errorStatus(err)
		if status == 0 {
			internalError(w, err)
			return
		}
		renderTemplateStatus(w, r, status, "login.html", map[string]any{"Error": errorMessage(err), "Login": req.Login})
		return
	}
	if err := startSession(w, sessionFor(res)); err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLoginAPI handles JSON login (POST /api/login).
// PRE: body is {login, password}
// POST: session cookie set; returns the account
func handleLoginAPI(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := login(r, req)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := startSession(w, sessionFor(res)); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       res.AccountID,
		"username": res.Username,
		"email":    res.Email,
		"role":     res.Role,
	})
}

func register(r *http.Request, req registerRequest) (orchestrators.RegisterResult, error) {
	return orchestrators.ExecuteRegister(r.Context(), orchestrators.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Password2: req.Password2,
		ClubName:  req.ClubName,
	}, orchestrators.RegisterDeps{
		AccountStore: stores.AccountStore,
		ClubStore:    stores.ClubStore,
		Now:          timeNow,
	})
}

func sessionForRegistration(res orchestrators.RegisterResult) middleware.Session {
	a := res.Account
	return middleware.Session{AccountID: a.ID, Username: a.Username, Email: a.Email, Role: a.Role}
}

// handleRegisterPage renders the sign-up form (GET /register).
func handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "register.html", map[string]any{})
}

// handleRegisterForm handles the sign-up form post (POST /register).
// POST: account created, signed in and sent to its club, or the form
// re-rendered with the validation error
func handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	req := registerRequest{
		Username:  r.FormValue("username"),
		Email:     r.FormValue("email"),
		Password:  r.FormValue("password"),
		Password2: r.FormValue("password2"),
		ClubName:  r.FormValue("club_name"),
	}
	res, err := register(r, req)
	if err != nil {
		status := errorStatus(err)
		if status == 0 {
			internalError(w, err)
			return
		}
		renderTemplateStatus(w, r, status, "register.html", map[string]any{
			"Error":    errorMessage(err),
			"Username": req.Username,
			"Email":    req.Email,
			"ClubName": req.ClubName,
		})
		return
	}
	if err := startSession(w, sessionForRegistration(res)); err != nil {
		internalError(w, err)
		return
	}
	if res.Club.ID != "" {
		http.Redirect(w, r, "/clubs/"+res.Club.ID, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRegisterAPI handles JSON sign-up (POST /api/register).
// POST: 201 with the account and club; the new account is signed in
func handleRegisterAPI(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := register(r, req)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := startSession(w, sessionForRegistration(res)); err != nil {
		internalError(w, err)
		return
	}
	body := map[string]any{
		"id":       res.Account.ID,
		"username": res.Account.Username,
		"email":    res.Account.Email,
	}
	if res.Club.ID != "" {
		body["club"] = toClubDTO(res.Club)
		body["created_club"] = res.CreatedClub
	}
	writeJSON(w, http.StatusCreated, body)
}

// handleLogout ends the session (POST /logout).
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w, secureCookie)
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		slog.Info("auth_event", "event", "logout", "account_id", sess.AccountID)
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleCurrentUser returns the signed-in account and its clubs (GET /api/user).
func handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	detail, err := projections.QueryUserDetail(r.Context(), sess.AccountID, projections.GetUserDetailDeps{
		AccountStore: stores.AccountStore,
		ClubStore:    stores.ClubStore,
	})
	if err != nil {
		if errorStatus(err) == http.StatusNotFound {
			// The account was deleted under a live session.
			sessions.DeleteAccount(sess.AccountID)
			middleware.ClearSessionCookie(w, secureCookie)
			http.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	NewPassword2    string `json:"new_password2"`
}

// handleChangePassword replaces the signed-in account's password
// (POST /api/user/password).
// POST: 204 with a new session cookie, other sessions of the account ended;
// 400 when the current password is wrong or the new one is rejected
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       sess.AccountID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		NewPassword2:    req.NewPassword2,
	}, orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore})
	if err != nil {
		writeError(w, err)
		return
	}
	// Sign out everywhere else; this browser gets a fresh session.
	n := sessions.DeleteAccount(sess.AccountID)
	if err := startSession(w, sess); err != nil {
		internalError(w, err)
		return
	}
	slog.Info("auth_event", "event", "sessions_revoked", "account_id", sess.AccountID, "count", n)
	w.WriteHeader(http.StatusNoContent)
}

// errorMessage is the text shown to a form user for err.
func errorMessage(err error) string {
	if errors.Is(err, orchestrators.ErrInvalidCredentials) {
		return "Invalid username or password."
	}
	return err.Error()
}
