package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wardrobe-client/internal/app"
	"wardrobe-client/internal/config"
	"wardrobe-client/internal/handler"
	"wardrobe-client/internal/lifetime"
	"wardrobe-client/internal/middleware"
	"wardrobe-client/internal/model"
	"wardrobe-client/internal/router"
	"wardrobe-client/internal/service"
	"wardrobe-client/internal/storage"
	"wardrobe-client/pkg/logging"
)

func main() {
	cfg := config.MustLoad()

	logging.SetupWithLevel(logging.ParseLevel(cfg.App.LogLevel))
	logger := slog.Default()
	logger.Info("Starting wardrobe companion",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"backend", cfg.Backend.BaseURL)

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		logger.Error("Failed to open storage", "type", cfg.Storage.Type, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	a := app.New(cfg, store, nil, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One view per signed-in session; renewed on login and logout.
	views := lifetime.NewSlot(ctx)
	defer views.Close()

	// Load the list the way the home screen does on start.
	if _, err := a.Sessions.UserID(ctx); err == nil {
		lifetime.Go(views.Current(), a.Capture.Refresh, func(items []model.Item, err error) {
			if err != nil {
				logger.Warn("Initial refresh failed", "error", err)
				return
			}
			logger.Info("Items loaded", "count", len(items))
		})
	}

	sweeper := service.NewConfirmationSweeper(a.Deletes, service.DefaultSweepInterval, logger)
	sweeper.Start()
	defer sweeper.Stop()

	var authMiddleware func(http.Handler) http.Handler
	if len(cfg.Companion.APIKeys) > 0 {
		authMiddleware = middleware.NewAuthMiddleware(middleware.AuthConfig{
			APIKeys:     cfg.Companion.APIKeys,
			PublicPaths: middleware.DefaultPublicPaths,
		})
	} else {
		logger.Warn("COMPANION_API_KEYS is empty; API is unauthenticated", "address", cfg.Companion.Address())
	}

	r := router.New(router.Config{
		Handler:        handler.New(cfg.App.Name, cfg.App.Version, cfg.Storage.Type, store),
		ItemHandler:    handler.NewItemHandler(a.Capture, a.Categorize, a.Deletes, a.Wardrobe, views),
		OptionsHandler: handler.NewOptionsHandler(a.Options),
		SessionHandler: handler.NewSessionHandler(a.Auth, a.Capture, views),
		AuthMiddleware: authMiddleware,
		AllowedOrigins: cfg.Companion.AllowedOrigins,
		Gatherer:       a.Registry,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.Companion.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Companion.ReadTimeout,
		WriteTimeout: cfg.Companion.WriteTimeout,
	}

	go func() {
		logger.Info("Companion listening", "address", cfg.Companion.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down companion...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Companion.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Companion stopped")
}
