package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Richardv10/food-blog/internal/auth"
	"github.com/Richardv10/food-blog/internal/cache"
	"github.com/Richardv10/food-blog/internal/config"
	"github.com/Richardv10/food-blog/internal/database"
	"github.com/Richardv10/food-blog/internal/imagestore"
	"github.com/Richardv10/food-blog/internal/logging"
	"github.com/Richardv10/food-blog/internal/server"
	"github.com/Richardv10/food-blog/internal/spoonacular"
	"github.com/Richardv10/food-blog/internal/store"
	ws "github.com/Richardv10/food-blog/internal/websocket"
)

const sessionCleanupInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A nil *cache.Client must not reach the spoonacular.Cache interface.
	var apiCache spoonacular.Cache
	if redis := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger); redis != nil {
		defer redis.Close()
		if err := redis.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, search results will not be cached", "addr", cfg.Redis.Addr, "error", err)
		}
		apiCache = redis
	}

	api := spoonacular.NewClient(spoonacular.Config{
		APIKey:    cfg.Spoonacular.APIKey,
		BaseURL:   cfg.Spoonacular.BaseURL,
		Timeout:   cfg.Spoonacular.Timeout,
		SearchTTL: cfg.Cache.SearchTTL,
	}, apiCache, logger)
	if !api.Configured() {
		logger.Warn("spoonacular api key not set, search and recipe lookups will fail")
	}

	images := imagestore.New(imagestore.Config{
		Endpoint:      cfg.Images.Endpoint,
		Bucket:        cfg.Images.Bucket,
		Region:        cfg.Images.Region,
		AccessKey:     cfg.Images.AccessKey,
		SecretKey:     cfg.Images.SecretKey,
		PublicBaseURL: cfg.Images.PublicBaseURL,
	}, logger)
	if !images.Enabled() {
		logger.Info("image storage not configured, uploads disabled")
	}

	hub := ws.NewHub(logger.With("component", "websocket"))

	srv, err := server.New(db, api, images, hub, server.Options{
		SecureCookies:  cfg.Server.SecureCookies,
		OriginPatterns: originPatterns(cfg.Server.BaseURL),
	}, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	if cfg.Admin.Username != "" {
		if err := bootstrapAdmin(ctx, srv.UserStore(), cfg.Admin, logger); err != nil {
			logger.Error("failed to bootstrap admin", "error", err)
			os.Exit(1)
		}
	}

	go cleanupSessions(ctx, srv.SessionStore(), logger)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("food blog running", "addr", httpServer.Addr, "base_url", cfg.Server.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// originPatterns allows the configured public host to open the feed websocket.
func originPatterns(baseURL string) []string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}

// bootstrapAdmin creates the configured admin account, or promotes it if it
// already exists. An existing password is left unchanged.
func bootstrapAdmin(ctx context.Context, users *store.UserStore, cfg config.AdminConfig, logger *slog.Logger) error {
	existing, err := users.GetByUsername(ctx, cfg.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		if !existing.IsAdmin {
			if err := users.SetAdmin(ctx, existing.ID, true); err != nil {
				return err
			}
			logger.Info("promoted user to admin", "username", existing.Username)
		}
		return nil
	}

	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	u, err := users.Create(ctx, cfg.Username, hash, true)
	if err != nil {
		return err
	}
	logger.Info("created admin user", "username", u.Username)
	return nil
}

func cleanupSessions(ctx context.Context, sessions *store.SessionStore, logger *slog.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx)
			if err != nil {
				logger.Error("session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}
