// Package app is the composition root: it picks storage backends,
// wires the event store and its listeners, and assembles the router.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/driftwood-collective/server/internal/api"
	"github.com/driftwood-collective/server/internal/api/handlers"
	"github.com/driftwood-collective/server/internal/api/middleware"
	"github.com/driftwood-collective/server/internal/audit"
	"github.com/driftwood-collective/server/internal/auth"
	"github.com/driftwood-collective/server/internal/config"
	"github.com/driftwood-collective/server/internal/domain/users"
	"github.com/driftwood-collective/server/internal/email"
	"github.com/driftwood-collective/server/internal/events"
	"github.com/driftwood-collective/server/internal/storage/file"
	"github.com/driftwood-collective/server/internal/storage/memory"
	"github.com/driftwood-collective/server/internal/storage/postgres"
	"github.com/driftwood-collective/server/web"
	"github.com/gorilla/csrf"
	"github.com/rs/zerolog"
)

type App struct {
	cfg    config.Config
	router *api.Router

	repo     *postgres.Repository
	eventLog *file.EventLog
}

// New builds the full application. With DATABASE_URL set everything
// runs on postgres; otherwise users and sessions live in memory and the
// event log is the JSONL file (or memory when no path is configured).
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg}

	var (
		writer       events.Writer
		userStore    users.Store
		sessionStore auth.SessionStore
	)
	switch {
	case cfg.Database.URL != "":
		repo, err := postgres.NewRepository(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		a.repo = repo
		writer = repo.Events()
		userStore = repo.Users()
		sessionStore = repo.Sessions()
	default:
		userStore = memory.NewUserStore()
		sessionStore = memory.NewSessionStore()
		if cfg.Database.EventLogPath != "" {
			log, err := file.Open(cfg.Database.EventLogPath)
			if err != nil {
				return nil, fmt.Errorf("event log: %w", err)
			}
			a.eventLog = log
			writer = log
		} else {
			writer = memory.NewEventLog()
		}
	}

	store := events.NewStore(writer, logger)
	userService := users.NewService(userStore, store, logger)
	sessions := auth.NewSessions(sessionStore, cfg.Session.TTL)

	// Listeners are subscribed before traffic begins; the list is
	// read-only afterwards.
	store.Subscribe(users.NewRegistrationListener(userStore, logger))
	store.Subscribe(email.NewWelcomeListener(email.NewService(cfg.Email, logger)))

	a.router = newRouter(cfg, logger, userService, sessions)
	return a, nil
}

func newRouter(cfg config.Config, logger zerolog.Logger, userService *users.Service, sessions *auth.Sessions) *api.Router {
	router := api.NewRouter(cfg.Environment)
	router.Use(
		middleware.CorrelationID(logger),
		middleware.RequestLogging(logger),
		middleware.Metrics(),
		middleware.Tracing(),
		middleware.LoadSession(sessions),
	)

	authHandler := handlers.NewAuthHandler(userService, sessions, audit.NewLogger(logger))
	pages := handlers.NewPagesHandler(userService, sessions)

	router.Get("/", pages.Home)
	router.Get("/healthz", handlers.Healthz)
	router.Get("/readyz", handlers.Readyz)
	router.Get("/metrics", handlers.Metrics())
	router.Get("/robots.txt", web.Robots)

	router.Get("/login", authHandler.LoginForm)
	router.Post("/login", authHandler.Login, middleware.RateLimit(cfg.RateLimit))
	router.Post("/register", authHandler.Register)
	router.Post("/logout", authHandler.Logout)

	// Public profiles load lazily: the module is resolved on first use.
	router.Get("/users/:id", func() (any, error) {
		return api.Handler(pages.Profile), nil
	})

	router.Group("", func(g *api.Group) {
		g.Get("/dashboard", pages.Dashboard)
	}, middleware.RequireSession("/login"))

	if cfg.Server.StaticDir != "" {
		router.Static(cfg.Server.StaticDir)
	}
	return router
}

// Handler returns the outermost HTTP handler; CSRF protection wraps
// the router when a key is configured.
func (a *App) Handler() http.Handler {
	var handler http.Handler = a.router
	if a.cfg.Server.CSRFKey != "" {
		protect := csrf.Protect(
			[]byte(a.cfg.Server.CSRFKey),
			csrf.Secure(a.cfg.Environment == "production"),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
		)
		handler = protect(handler)
	}
	return handler
}

func (a *App) Close() {
	if a.repo != nil {
		a.repo.Close()
	}
	if a.eventLog != nil {
		_ = a.eventLog.Close()
	}
}
