package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Vijay-1289/Expense-Tracker/internal/auth"
	"github.com/Vijay-1289/Expense-Tracker/internal/core"
	"github.com/Vijay-1289/Expense-Tracker/internal/store"
)

const oauthStateCookie = "oauth_state"

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.google == nil {
		http.NotFound(w, r)
		return
	}

	state := auth.NewState()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.google.AuthURL(state), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.google == nil {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	if errStr := r.URL.Query().Get("error"); errStr != "" {
		slog.WarnContext(ctx, "oauth consent denied", "error", errStr)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		slog.WarnContext(ctx, "oauth state mismatch")
		http.Error(w, "invalid oauth state", http.StatusBadRequest)
		return
	}
	clearCookie(w, oauthStateCookie, "/auth")

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	user, err := s.google.Exchange(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "oauth exchange failed", "error", err)
		http.Error(w, "sign-in failed", http.StatusBadGateway)
		return
	}

	s.signIn(w, r, user)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleDevLogin signs in with just a name, for local development when
// Google OAuth is not configured.
func (s *Server) handleDevLogin(w http.ResponseWriter, r *http.Request) {
	if s.google != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.Form.Get("name"))
	if name == "" {
		writeFragment(w, http.StatusUnprocessableEntity, "error", "Name is required.")
		return
	}
	email := strings.TrimSpace(r.Form.Get("email"))

	user := auth.User{
		Identity: core.Identity("dev:" + strings.ToLower(name)),
		Email:    email,
		FullName: name,
	}
	s.signIn(w, r, user)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Dashboard teardown happens through the session manager's
	// identity-change hook.
	if c, err := r.Cookie(auth.SessionCookie); err == nil {
		s.sessions.SignOut(c.Value)
	}
	clearCookie(w, auth.SessionCookie, "/")
	http.Redirect(w, r, "/", http.StatusFound)
}

// signIn bootstraps the profile row, creates the session and sets the
// cookie.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, user auth.User) {
	ctx := r.Context()

	if err := s.profiles.UpsertProfile(ctx, store.Profile{
		ID:       user.Identity,
		Email:    user.Email,
		FullName: user.FullName,
	}); err != nil {
		// The session still works; the profile row is best-effort.
		slog.ErrorContext(ctx, "profile upsert failed", "owner", user.Identity, "error", err)
	}

	token := s.sessions.SignIn(user)
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	slog.InfoContext(ctx, "user signed in", "owner", user.Identity)
}

func clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
	})
}
