// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
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

	"github.com/olegiv/library-go/internal/auth"
	"github.com/olegiv/library-go/internal/cache"
	"github.com/olegiv/library-go/internal/config"
	"github.com/olegiv/library-go/internal/handler"
	"github.com/olegiv/library-go/internal/handler/api"
	"github.com/olegiv/library-go/internal/logging"
	"github.com/olegiv/library-go/internal/middleware"
	"github.com/olegiv/library-go/internal/scheduler"
	"github.com/olegiv/library-go/internal/session"
	"github.com/olegiv/library-go/internal/store"
	"github.com/olegiv/library-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// apiPrefix is where the library API is mounted.
const apiPrefix = "/api/v1"

const envHelp = `
Environment Variables:
  LIBRARY_SESSION_SECRET          Session and token signing key (required, min 32 bytes)
  LIBRARY_DB_PATH                 SQLite database path (default: ./data/library.db)
  LIBRARY_SERVER_PORT             Server port (default: 8080)
  LIBRARY_ENV                     Environment: development|production (default: development)
  LIBRARY_LENDING_DAYS            Loan period in days (default: 14)
  LIBRARY_REDIS_URL               Redis URL for the section cache (optional)
  LIBRARY_OVERDUE_SWEEP_SCHEDULE  Cron spec for expiring overdue loans (default: @hourly)
  LIBRARY_EVENT_RETENTION_DAYS    Days to keep event log entries, 0 keeps all (default: 90)
`

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		_, _ = fmt.Fprintf(out, "library - book lending REST service\n\nUsage: %s [options]\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
		_, _ = fmt.Fprint(out, envHelp)
	}
	flag.Parse()

	info := version.New(appVersion, appGitCommit, appBuildTime)
	if showVersion {
		fmt.Println(info.String())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, info version.Info) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	text := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	slog.SetDefault(slog.New(text))

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("closing database", "error", err)
		}
	}()

	// From here on WARN and ERROR records are mirrored into the events table.
	logger := slog.New(logging.NewEventLogHandler(text, db))
	slog.SetDefault(logger)

	opened, err := cache.Open(ctx, cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		TTL:        cfg.CacheTTLDuration(),
		MaxEntries: cfg.CacheMaxSize,
	})
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer func() { _ = opened.Backend.Close() }()
	slog.Info("section cache ready",
		"backend", opened.Backend.Name(),
		"fallback", opened.Fallback,
		"redis_url", cache.RedactURL(cfg.RedisURL),
	)
	sections := cache.NewSectionCache(opened.Backend, store.New(db), cfg.CacheTTLDuration())

	sched := scheduler.New(db, logger, cfg.OverdueSweepSchedule)
	sched.SetEventRetention(cfg.EventRetention())
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	tokens := auth.NewTokenIssuer([]byte(cfg.SessionSecret), cfg.TokenTTL)
	router := newRouter(cfg, db, tokens, sections, opened.Fallback, info)

	return serve(ctx, &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}, cfg.Env, info.Version)
}

// openStore opens, migrates and seeds the SQLite database.
func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.Seed(ctx, db, store.SeedConfig{
		AdminEmail:    cfg.AdminEmail,
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seeding database: %w", err)
	}

	slog.Info("database ready", "path", cfg.DBPath)
	return db, nil
}

// newRouter mounts the health endpoints at the root, the admin operations
// routes under /api/v1/admin and the library API under /api/v1.
func newRouter(cfg *config.Config, db *sql.DB, tokens *auth.TokenIssuer, sections *cache.SectionCache, cacheFallback bool, info version.Info) http.Handler {
	validator := middleware.NewTokenValidator(db, tokens)
	health := handler.NewHealthHandler(db, sections, info)
	events := handler.NewEventsHandler(db)
	cacheAdmin := handler.NewCacheHandler(sections, cacheFallback)
	library := api.NewHandler(db, api.Deps{
		Sessions:        session.New(db, cfg.IsDevelopment(), cfg.TokenTTL),
		Tokens:          tokens,
		Sections:        sections,
		LoginProtection: middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig()),
		LendingDays:     cfg.LendingDays,
		Version:         info,
	})

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Logger,
		chimw.Recoverer,
		chimw.Timeout(30*time.Second),
		middleware.SecurityHeaders(!cfg.IsDevelopment()),
		middleware.RequestPath,
		middleware.NewGlobalRateLimiter(100, 200).Middleware(),
	)

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalTokenAuth(validator))
		r.Get("/health", health.Health)
		r.Get("/health/live", health.Liveness)
		r.Get("/health/ready", health.Readiness)
	})

	r.Route(apiPrefix+"/admin", func(r chi.Router) {
		r.Use(middleware.TokenAuth(validator), middleware.RequireAdmin())
		r.Get("/events", events.List)
		r.Get("/cache", cacheAdmin.Stats)
		r.Post("/cache/clear", cacheAdmin.Clear)
	})

	r.Mount(apiPrefix, library.Routes(validator))
	return r
}

// serve runs srv until ctx is cancelled, then drains it for up to 30s.
func serve(ctx context.Context, srv *http.Server, env, ver string) error {
	errc := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "env", env, "version", ver)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
