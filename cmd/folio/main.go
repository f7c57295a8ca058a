// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package main is the entry point for the folio portfolio site.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/sync/singleflight"

	"github.com/olegiv/folio-go/internal/backend"
	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/cms"
	"github.com/olegiv/folio-go/internal/config"
	"github.com/olegiv/folio-go/internal/handler"
	"github.com/olegiv/folio-go/internal/i18n"
	"github.com/olegiv/folio-go/internal/logging"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/permission"
	"github.com/olegiv/folio-go/internal/render"
	"github.com/olegiv/folio-go/internal/scheduler"
	"github.com/olegiv/folio-go/internal/service"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/version"
	"github.com/olegiv/folio-go/web"
)

// Build-time variables injected via ldflags.
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// staticMaxAge is the Cache-Control max-age of embedded assets in production.
const staticMaxAge = 7 * 24 * 60 * 60

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help message")
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "folio - personal portfolio site\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  folio [flags]\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Flags:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  -v, --version    Show version information\n")
		_, _ = fmt.Fprintf(os.Stderr, "  -h, --help       Show this help message\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Environment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_SESSION_SECRET       Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_API_URL              Backend API base URL (default: http://localhost:8004)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_DB_PATH              SQLite database path (default: ./data/folio.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_SERVER_HOST          Server host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_SERVER_PORT          Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_ENV                  Environment: development, production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_LOG_LEVEL            Log level: debug, info, warn, error (default: info)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_DEFAULT_LANG         Default language: es, en (default: es)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_REDIS_URL            Redis URL for the content cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_SITE_URL             Public base URL (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		fmt.Printf("folio %s\n", info)
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	logger := logging.Setup(os.Stdout, cfg.LogFormat, cfg.LogLevel, db)
	slog.SetDefault(logger)
	logger.Info("starting folio", "version", info.String(), "env", cfg.Env)

	if err := i18n.Init(logger, cfg.DefaultLang); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	sessionManager := session.New(db, cfg.IsDevelopment())

	cacher, cacheKind := cache.NewCache(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTLDuration(),
		MaxSize:    cfg.CacheMaxSize,
	})
	defer func() { _ = cacher.Close() }()
	logger.Info("content cache ready", "backend", cacheKind)
	content := cache.NewContent(cacher, cfg.CacheTTLDuration())

	client := backend.New(cfg.APIURL, cfg.APITimeout)
	sources := service.NewSources(client, content)
	events := service.NewEventService(db)
	settings := service.NewSettingsStore(client, content, i18n.Default())

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		Settings:       settings.FetchPublic,
		SiteURL:        cfg.SiteURL,
		Version:        info.String(),
	})
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	sections := cms.NewRenderer(cms.RendererConfig{
		Templates: renderer.Sections(),
		Sections:  sources,
		Hero:      sources,
		Featured:  sources,
		Logger:    logger,
	})

	sched := scheduler.New(logger)
	if cfg.CacheWarmSchedule != "" {
		if err := sched.Add(scheduler.WarmCacheJob(cfg.CacheWarmSchedule, sources, handler.PublicPageKeys)); err != nil {
			return err
		}
	}
	if cfg.EventPurgeSchedule != "" && cfg.EventRetention > 0 {
		if err := sched.Add(scheduler.PurgeEventsJob(cfg.EventPurgeSchedule, events, cfg.EventRetention, logger)); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	loginProtection := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit: cfg.LoginRateLimit,
		IPBurst:     cfg.LoginRateBurst,
	})
	defer loginProtection.Close()

	deps := handler.Deps{
		Client:   client,
		Content:  content,
		Renderer: renderer,
		Sections: sections,
		Sources:  sources,
		Events:   events,
		Sessions: sessionManager,
		Jobs:     sched,
		SiteURL:  cfg.SiteURL,
	}

	publicHandler := handler.NewPublicHandler(deps)
	authHandler := handler.NewAuthHandler(deps, loginProtection)
	seoHandler := handler.NewSEOHandler(deps)
	healthHandler := handler.NewHealthHandler(db, client, info)
	adminHandler := handler.NewAdminHandler(deps)
	projectsHandler := handler.NewProjectsHandler(deps)
	cmsHandler := handler.NewCMSHandler(deps)
	settingsHandler := handler.NewSettingsHandler(deps)
	usersHandler := handler.NewUsersHandler(deps)
	eventsHandler := handler.NewEventsHandler(deps)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.RedirectSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)

	// Health checks skip sessions and rate limiting.
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("loading static files: %w", err)
	}
	r.With(middleware.StaticCache(staticMaxAge, cfg.IsDevelopment())).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	globalLimiter := middleware.NewGlobalRateLimiter(cfg.GlobalRateLimit, cfg.GlobalRateBurst)

	r.Group(func(r chi.Router) {
		r.Use(globalLimiter.Middleware())
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr())))
		r.Use(middleware.Language)
		r.Use(middleware.LoadAuth(middleware.AuthConfig{
			Sessions:   sessionManager,
			Client:     client,
			Group:      &singleflight.Group{},
			Revalidate: cfg.AuthRevalidate,
		}))
		r.Use(middleware.EditMode)
		r.Use(middleware.Maintenance(settings.FetchPublic, publicHandler.Maintenance,
			"/auth", "/admin", "/health", handler.RouteRobots, handler.RouteSitemap))

		// Admins get the detailed report, so /health needs the session.
		r.Get("/health", healthHandler.Health)

		// Public site
		r.Get(handler.RouteRoot, publicHandler.Home)
		r.Get(handler.RouteAbout, publicHandler.About)
		r.Get(handler.RoutePrivacy, publicHandler.Privacy)
		r.Get(handler.RouteTerms, publicHandler.Terms)
		r.Get(handler.RouteContact, publicHandler.Contact)
		r.Post(handler.RouteContact, publicHandler.ContactSubmit)
		r.Get(handler.RouteProjects, publicHandler.Projects)
		r.Get(handler.RouteProjects+handler.RouteParamSlug, publicHandler.Project)
		r.Get(handler.RouteCV, publicHandler.CV)
		r.Get(handler.RouteSitemap, seoHandler.Sitemap)
		r.Get(handler.RouteRobots, seoHandler.Robots)

		// Authentication
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Post(handler.RouteLogout, authHandler.Logout)

		// Admin
		r.Route(handler.RouteAdmin, func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/", adminHandler.Dashboard)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(permission.ManageSettings))
				r.Post("/cache/clear", adminHandler.ClearCache)
				r.Post("/jobs"+handler.RouteParamName+handler.RouteSuffixRun, adminHandler.RunJob)
			})

			r.Route("/projects", func(r chi.Router) {
				registerCRUD(r, crudRoutes{
					read:   permission.ReadProject,
					create: permission.CreateProject,
					update: permission.UpdateProject,
					delete: permission.DeleteProject,
					list:   projectsHandler.List,
					form:   projectsHandler.NewForm,
					store:  projectsHandler.Create,
					edit:   projectsHandler.EditForm,
					save:   projectsHandler.Update,
					remove: projectsHandler.Delete,
				})
			})

			r.Route("/users", func(r chi.Router) {
				registerCRUD(r, crudRoutes{
					read:   permission.ReadUser,
					create: permission.CreateUser,
					update: permission.UpdateUser,
					delete: permission.DeleteUser,
					list:   usersHandler.List,
					form:   usersHandler.NewForm,
					store:  usersHandler.Create,
					edit:   usersHandler.EditForm,
					save:   usersHandler.Update,
					remove: usersHandler.Delete,
				})
			})
			r.With(middleware.RequirePermission(permission.ManageRoles)).Get("/roles", usersHandler.Roles)

			r.With(middleware.RequirePermission(permission.ViewAnalytics)).Get("/events", eventsHandler.List)

			r.Route("/settings", func(r chi.Router) {
				r.Use(middleware.RequirePermission(permission.ManageSettings))
				r.Get("/", settingsHandler.Edit)
				r.Post("/", settingsHandler.Update)
				r.Post(handler.RouteSuffixReset, settingsHandler.Reset)
			})

			r.Route("/cms", func(r chi.Router) {
				registerCMSRoutes(r, cmsHandler)
			})
		})
	})

	r.NotFound(publicHandler.NotFound)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
