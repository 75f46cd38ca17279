package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"disaster-backend/internal/auth"
	"disaster-backend/internal/config"
	"disaster-backend/internal/database"
	"disaster-backend/internal/profile"
	"disaster-backend/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/redis/v3"
)

func main() {
	level := new(slog.LevelVar)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level.Set(cfg.SlogLevel())
	for _, w := range cfg.Warnings() {
		slog.Warn(w)
	}

	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AdminEmail != "" {
		if err := auth.EnsureAdmin(ctx, db, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			slog.Error("bootstrap administrator failed", "error", err)
			os.Exit(1)
		}
	}

	var sessionStorage fiber.Storage
	if cfg.RedisURL != "" {
		sessionStorage = redis.New(redis.Config{URL: cfg.RedisURL})
		slog.Info("sessions stored in redis")
	}

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		slog.Error("image storage unavailable", "error", err)
		os.Exit(1)
	}

	app := server.New(server.Deps{
		Config:   cfg,
		DB:       db,
		Sessions: auth.NewSessionManager(cfg.SessionTTL, cfg.SessionCookieSecure, sessionStorage),
		Images:   images,
	})

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", cfg.HTTPPort)
		errCh <- app.Listen(":" + cfg.HTTPPort)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
		if sessionStorage != nil {
			if err := sessionStorage.Close(); err != nil {
				slog.Warn("session storage close failed", "error", err)
			}
		}
	}
}

func newImageStore(ctx context.Context, cfg *config.Config) (profile.ImageStore, error) {
	if cfg.ImageStorage == config.StorageS3 {
		return profile.NewS3ImageStore(ctx, profile.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return profile.NewLocalImageStore(cfg.ProfileImagePath)
}
