// Package http serves the expense tracker web UI: the dashboard page,
// its form endpoints and partials, and the event stream that keeps
// open dashboards current.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Vijay-1289/Expense-Tracker/internal/auth"
	"github.com/Vijay-1289/Expense-Tracker/internal/cache"
	"github.com/Vijay-1289/Expense-Tracker/internal/core"
	"github.com/Vijay-1289/Expense-Tracker/internal/dashboard"
	"github.com/Vijay-1289/Expense-Tracker/internal/middleware/ratelimit"
	"github.com/Vijay-1289/Expense-Tracker/internal/middleware/security"
	"github.com/Vijay-1289/Expense-Tracker/internal/middleware/trace"
	"github.com/Vijay-1289/Expense-Tracker/internal/services"
	"github.com/Vijay-1289/Expense-Tracker/internal/store"
	appweb "github.com/Vijay-1289/Expense-Tracker/web"
)

// Deps carries everything the server needs from the composition root.
type Deps struct {
	Sessions   *auth.Manager
	Google     *auth.GoogleVerifier
	Profiles   store.ProfileStore
	Expenses   *services.Expenses
	Budgets    *services.Budgets
	Dashboards *dashboard.Manager
}

type Server struct {
	http.Server

	templates  *template.Template
	sessions   *auth.Manager
	google     *auth.GoogleVerifier
	profiles   store.ProfileStore
	expenses   *services.Expenses
	budgets    *services.Budgets
	dashboards *dashboard.Manager

	limiter    *ratelimit.Limiter
	ipResolver *security.ClientIPResolver

	// trendCache holds computed chart series per identity. Entries are
	// invalidated on local writes and on feed ticks; the TTL bounds
	// staleness for idle dashboards.
	trendCache *cache.LRU[[]TrendPoint]

	baseCtx      context.Context
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates. baseCtx bounds
// the lifetime of dashboard aggregators started by requests.
func NewServer(baseCtx context.Context, addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		sessions:   deps.Sessions,
		google:     deps.Google,
		profiles:   deps.Profiles,
		expenses:   deps.Expenses,
		budgets:    deps.Budgets,
		dashboards: deps.Dashboards,
		limiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		ipResolver: security.NewClientIPResolver(),
		trendCache: cache.NewLRU[[]TrendPoint](100, time.Minute),
		baseCtx:    baseCtx,
	}

	// Any dashboard refresh invalidates that owner's cached chart
	// series, local or relayed.
	deps.Dashboards.OnRefresh(func(owner core.Identity) {
		s.trendCache.Delete(string(owner))
	})

	// When an identity's last session ends its aggregator and cached
	// chart go with it.
	deps.Sessions.OnIdentityChange(func(owner core.Identity) {
		deps.Dashboards.Close(owner)
		s.trendCache.Delete(string(owner))
	})

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssets(3600)(static))
	} else {
		slog.Warn("failed to mount embedded static fs", "error", err)
	}

	limited := s.limiter.Middleware(s.ipResolver.ClientIP)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /auth/login", s.handleGoogleLogin)
	mux.HandleFunc("GET /auth/callback", s.handleGoogleCallback)
	mux.Handle("POST /auth/dev-login", limited(http.HandlerFunc(s.handleDevLogin)))
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.Handle("POST /expenses", limited(http.HandlerFunc(s.handleCreateExpense)))
	mux.Handle("POST /budgets", limited(http.HandlerFunc(s.handleSetBudget)))
	mux.Handle("POST /budgets/delete", limited(http.HandlerFunc(s.handleDeleteBudget)))
	mux.HandleFunc("GET /ui/overview", s.handleOverview)
	mux.HandleFunc("GET /ui/expenses", s.handleExpenseList)
	mux.HandleFunc("GET /ui/trend", s.handleTrend)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	handler := trace.Middleware(s.ipResolver.ClientIP)(
		security.Headers(security.DefaultHeadersConfig())(mux))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      0, // /events streams indefinitely
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops background routines before draining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// currentUser resolves the session cookie to a signed-in user.
func (s *Server) currentUser(r *http.Request) (auth.User, bool) {
	c, err := r.Cookie(auth.SessionCookie)
	if err != nil {
		return auth.User{}, false
	}
	return s.sessions.Lookup(c.Value)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "templates not loaded", "path", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	user, ok := s.currentUser(r)
	if !ok {
		data := struct {
			GoogleEnabled bool
		}{GoogleEnabled: s.google != nil}
		if err := s.templates.ExecuteTemplate(w, "signin.html", data); err != nil {
			slog.ErrorContext(r.Context(), "sign-in template failed", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	s.dashboards.Open(s.baseCtx, user.Identity)

	data := struct {
		FullName   string
		Email      string
		Categories []string
		Today      string
		TodayISO   string
	}{
		FullName:   user.FullName,
		Email:      user.Email,
		Categories: categoryNames(),
		Today:      time.Now().Format("02/01/2006"),
		TodayISO:   time.Now().Format("2006-01-02"),
	}
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		slog.ErrorContext(r.Context(), "dashboard template failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
