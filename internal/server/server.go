package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vector76/news_server/internal/auth"
	"github.com/vector76/news_server/internal/config"
	"github.com/vector76/news_server/internal/forms"
	"github.com/vector76/news_server/internal/logging"
	"github.com/vector76/news_server/internal/store"
)

// Config holds the server configuration.
type Config struct {
	Port                int
	NewsCountOnHomePage int
	BadWords            []string
	Secret              string
	SessionTTL          time.Duration
	SecureCookies       bool
	LoginRatePerMinute  int // 0 disables login/signup rate limiting
	Version             string
	Logger              *slog.Logger
}

// ConfigFromSettings maps loaded settings onto a server Config.
func ConfigFromSettings(s config.Settings, log *slog.Logger) Config {
	return Config{
		Port:                s.Port,
		NewsCountOnHomePage: s.NewsCountOnHomePage,
		BadWords:            s.BadWords,
		Secret:              s.Secret,
		SessionTTL:          s.SessionTTL,
		SecureCookies:       s.SecureCookies,
		LoginRatePerMinute:  s.LoginRatePerMinute,
		Logger:              log,
	}
}

// Server is the HTTP server for the news site.
type Server struct {
	Router   *chi.Mux
	Store    store.Repository
	Sessions *auth.Sessions
	filter   *forms.Filter
	limiter  *ipLimiter
	config   Config
	log      *slog.Logger
}

// New creates a Server backed by repo.
func New(cfg Config, repo store.Repository) (*Server, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository must not be nil")
	}
	if cfg.NewsCountOnHomePage < 1 {
		cfg.NewsCountOnHomePage = config.DefaultNewsCountOnHomePage
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	sessions, err := auth.NewSessions(cfg.Secret, cfg.SessionTTL, cfg.SecureCookies)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		Router:   chi.NewRouter(),
		Store:    repo,
		Sessions: sessions,
		filter:   forms.NewFilter(cfg.BadWords),
		limiter:  newIPLimiter(cfg.LoginRatePerMinute),
		config:   cfg,
		log:      log,
	}

	srv.Router.Use(middleware.RequestID)
	srv.Router.Use(logging.Middleware(log))
	srv.Router.Use(middleware.Recoverer)
	srv.Router.Use(metricsMiddleware)
	srv.Router.Use(sessions.Middleware(repo, log))

	srv.Router.NotFound(srv.notFound)

	srv.Router.Get("/healthz", srv.handleHealth)
	srv.Router.Handle("/metrics", promhttp.Handler())

	// Public pages
	srv.Router.Get("/", srv.handleHome)
	srv.Router.Get("/news/{id}/", srv.handleDetail)
	srv.Router.Post("/news/{id}/", srv.handleCreateComment)

	// Comment edit/delete require a logged-in user
	srv.Router.Group(func(r chi.Router) {
		r.Use(auth.RequireLogin(URL("users:login")))
		r.Get("/edit_comment/{id}/", srv.handleEditComment)
		r.Post("/edit_comment/{id}/", srv.handleEditComment)
		r.Get("/delete_comment/{id}/", srv.handleDeleteComment)
		r.Post("/delete_comment/{id}/", srv.handleDeleteComment)
		r.Delete("/delete_comment/{id}/", srv.handleDeleteComment)
	})

	srv.Router.Get("/auth/login/", srv.handleLogin)
	srv.Router.With(srv.rateLimit).Post("/auth/login/", srv.handleLogin)
	srv.Router.Post("/auth/logout/", srv.handleLogout)
	srv.Router.Get("/auth/signup/", srv.handleSignup)
	srv.Router.With(srv.rateLimit).Post("/auth/signup/", srv.handleSignup)

	return srv, nil
}

// ListenAddr returns the address the server should listen on.
func (s *Server) ListenAddr() string {
	return fmt.Sprintf(":%d", s.config.Port)
}

// handleHealth returns a simple health check response with the build
// version.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	version := s.config.Version
	if version == "" {
		version = "dev"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": version})
}
