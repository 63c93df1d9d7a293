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

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/blogdesk/internal/asset"
	"github.com/olegiv/blogdesk/internal/auth"
	"github.com/olegiv/blogdesk/internal/backend"
	"github.com/olegiv/blogdesk/internal/cache"
	"github.com/olegiv/blogdesk/internal/config"
	"github.com/olegiv/blogdesk/internal/handler"
	"github.com/olegiv/blogdesk/internal/logging"
	"github.com/olegiv/blogdesk/internal/middleware"
	"github.com/olegiv/blogdesk/internal/sanitize"
	"github.com/olegiv/blogdesk/internal/scheduler"
	"github.com/olegiv/blogdesk/internal/service"
	"github.com/olegiv/blogdesk/internal/session"
	"github.com/olegiv/blogdesk/internal/storage"
	"github.com/olegiv/blogdesk/internal/store"
	"github.com/olegiv/blogdesk/internal/version"
)

const (
	// profileCacheSize bounds the in-memory profile cache.
	profileCacheSize = 10000
	// postBodyLimit caps the JSON body of a post submission.
	postBodyLimit = 2 << 20
	// uploadBodyLimit leaves room for multipart framing around the largest asset.
	uploadBodyLimit = asset.MaxAssetSize + 1<<20
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "blogdesk - blog authoring back-end\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGDESK_MODE              remote|local (default: remote)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGDESK_BACKEND_URL       Hosted backend URL (remote mode)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGDESK_BACKEND_API_KEY   Hosted backend API key (remote mode)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGDESK_SESSION_SECRET    Session encryption key (local mode, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGDESK_DB_PATH           SQLite database path (default: ./data/blogdesk.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGDESK_UPLOADS_DIR       Local object directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGDESK_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOGDESK_REDIS_URL         Redis URL for the profile cache (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(version.Get().String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// backends holds the implementations chosen by the configured mode.
type backends struct {
	store        storage.Store
	posts        service.PostRepository
	profiles     service.ProfileSource
	checks       map[string]handler.Pinger
	authn        []func(http.Handler) http.Handler // authenticates /api/v1 requests
	apiRoutes    func(api chi.Router)
	publicRoutes func(r chi.Router)
	close        func()
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	slog.Info("starting blogdesk", "version", version.Get().Version, "mode", cfg.Mode)

	var b *backends
	if cfg.IsLocal() {
		b, logger, err = openLocal(cfg, logger)
	} else {
		b = openRemote(cfg, logger)
	}
	if err != nil {
		return err
	}
	defer b.close()

	// Profile cache (Redis when configured, memory otherwise)
	profileCache := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheDuration(),
		MaxSize:    profileCacheSize,
	}, logger)
	defer func() { _ = profileCache.Close() }()
	if rc, ok := profileCache.(*cache.RedisCache); ok {
		b.checks["cache"] = handler.PingFunc(rc.Ping)
	}

	// Services
	users := auth.ContextProvider{}
	assetService := service.NewAssetService(b.store, users, cfg.Buckets(), logger)
	profileService := service.NewProfileService(b.profiles, profileCache, cfg.CacheDuration(), logger)
	postService := service.NewPostService(b.posts, profileService, users, sanitize.New(), logger)

	// Handlers
	healthHandler := handler.NewHealthHandler(cfg.Mode, b.checks)
	if sp, ok := profileCache.(cache.StatsProvider); ok {
		healthHandler.WithCacheStats(sp)
	}
	assetsHandler := handler.NewAssetsHandler(assetService, logger)
	postsHandler := handler.NewPostsHandler(postService, logger)

	uploadLimiter := middleware.NewIPRateLimiter(cfg.UploadRPS, cfg.UploadBurst, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSONError(w, http.StatusNotFound, "Not found")
	})

	r.Get("/health", healthHandler.Health)

	r.Route("/api/v1", func(api chi.Router) {
		for _, mw := range b.authn {
			api.Use(mw)
		}

		api.Get("/auth/me", handler.Me)

		// Writes reject anonymous callers before the body is read.
		api.With(middleware.RequireUser, uploadLimiter.Middleware(), middleware.MaxBodySize(uploadBodyLimit)).
			Post("/buckets/{bucket}/assets", assetsHandler.Upload)
		api.With(middleware.RequireUser, uploadLimiter.Middleware(), middleware.MaxBodySize(postBodyLimit)).
			Delete("/buckets/{bucket}/assets", assetsHandler.Delete)

		api.With(middleware.RequireUser, middleware.MaxBodySize(postBodyLimit)).Post("/posts", postsHandler.Create)
		api.Get("/posts", postsHandler.List)
		api.Get("/posts/{slug}", postsHandler.Get)

		b.apiRoutes(api)
	})

	b.publicRoutes(r)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Allows for large uploads over slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openRemote wires every boundary to the hosted backend.
func openRemote(cfg *config.Config, logger *slog.Logger) *backends {
	client := backend.New(cfg.BackendURL, cfg.BackendAPIKey)
	slog.Info("using hosted backend", "url", client.BaseURL())

	return &backends{
		store:        client,
		posts:        client,
		profiles:     client,
		checks:       map[string]handler.Pinger{"backend": client},
		authn:        []func(http.Handler) http.Handler{middleware.BearerAuth(client, logger)},
		apiRoutes:    func(chi.Router) {},
		publicRoutes: func(chi.Router) {},
		close:        func() {},
	}
}

// openLocal wires every boundary to SQLite and the local filesystem.
// The returned logger also records warnings and errors in the events table.
func openLocal(cfg *config.Config, logger *slog.Logger) (*backends, *slog.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing database: %w", err)
	}

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	queries := store.New(db)

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger = slog.New(logging.NewEventLogHandler(textHandler, queries))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	if err := store.SeedAdmin(context.Background(), db, cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("seeding admin user: %w", err)
	}

	objects := storage.NewLocalStore(cfg.UploadsDir, cfg.PublicBaseURL())
	slog.Info("using local object store", "dir", objects.Root(), "public_url", cfg.PublicBaseURL())

	sched := scheduler.New(queries, cfg.EventRetention(), logger)
	if err := sched.Start(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("starting scheduler: %w", err)
	}

	sm := session.New(db, cfg.IsDevelopment())
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig(), logger)

	authHandler := handler.NewAuthHandler(queries, sm, loginProtection, logger)
	objectsHandler := handler.NewObjectsHandler(objects,
		[]string{cfg.PromotionalBucket, cfg.ContentBucket}, logger)

	return &backends{
		store:    objects,
		posts:    queries,
		profiles: queries,
		checks:   map[string]handler.Pinger{"database": db},
		authn:    sessionChain(cfg, sm, queries, logger),
		apiRoutes: func(api chi.Router) {
			api.With(loginProtection.Middleware()).Post("/auth/login", authHandler.Login)
			api.Post("/auth/logout", authHandler.Logout)
		},
		publicRoutes: func(r chi.Router) {
			r.Get(storage.PublicPathPrefix+"/{bucket}/{key}", objectsHandler.Serve)
		},
		close: func() {
			sched.Stop()
			loginProtection.Stop()
			closeDB(db)
		},
	}, logger, nil
}

// sessionChain loads the scs session, resolves its user and enforces CSRF.
func sessionChain(cfg *config.Config, sm *scs.SessionManager, users middleware.UserLookup, logger *slog.Logger) []func(http.Handler) http.Handler {
	csrfKey := []byte(cfg.SessionSecret)[:config.MinSessionSecretLength]
	return []func(http.Handler) http.Handler{
		sm.LoadAndSave,
		middleware.SessionAuth(sm, users, logger),
		middleware.CSRF(middleware.DefaultCSRFConfig(csrfKey, cfg.IsDevelopment(), logger)),
	}
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Error("error closing database connection", "error", err)
	}
}
