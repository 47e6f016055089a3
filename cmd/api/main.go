package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/voicelab/voiceprobe/internal/api"
	"github.com/voicelab/voiceprobe/internal/config"
	"github.com/voicelab/voiceprobe/internal/database"
	"github.com/voicelab/voiceprobe/internal/session"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Usage logging is optional; run without it when no database is set.
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Warn("database unavailable, running without usage log", "error", err)
		db = nil
	} else {
		defer db.Close()

		if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
			slog.Warn("migrations failed", "error", err)
		}
	}

	// Session store: Redis when reachable, in-memory otherwise.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var sessions session.Store
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, using in-memory sessions", "error", err)
		rdb.Close()
		rdb = nil
		sessions = session.NewMemoryStore(cfg.Session.TTL)
	} else {
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb, cfg.Session.TTL)
	}

	router := api.NewRouter(db, rdb, cfg, sessions)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting voice API tester", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
