// Package app wires configuration, storage and the backend client into the
// flows both front ends use.
package app

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"wardrobe-client/internal/backend"
	"wardrobe-client/internal/config"
	"wardrobe-client/internal/options"
	"wardrobe-client/internal/service"
	"wardrobe-client/internal/session"
	"wardrobe-client/internal/storage"
)

// App holds the wired components.
type App struct {
	Config     *config.Config
	Store      storage.Store
	Registry   *prometheus.Registry
	Backend    *backend.Client
	Sessions   *session.Store
	Options    *options.Cache
	Capture    *service.CapturePipeline
	Categorize *service.CategorizeFlow
	Deletes    *service.DeleteFlow
	Wardrobe   *service.WardrobeService
	Auth       *service.AuthService
	Logger     *slog.Logger
}

// New builds an App over an already opened store. httpClient may be nil.
func New(cfg *config.Config, store storage.Store, httpClient *http.Client, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client := backend.NewClient(backend.Options{
		BaseURL:      cfg.Backend.BaseURL,
		Timeout:      cfg.Backend.Timeout,
		Retries:      cfg.Backend.Retries,
		RetryBackoff: cfg.Backend.RetryBackoff,
		HTTPClient:   httpClient,
		Metrics:      backend.NewMetrics(reg),
		Logger:       logger,
	})

	sessions := session.NewStore(store, logger)
	opts := options.NewCache(store, logger)
	deletes := service.NewDeleteFlow(client, logger)

	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "wardrobe",
		Name:      "pending_delete_confirmations",
		Help:      "Delete confirmations issued and not yet confirmed, cancelled or expired.",
	}, func() float64 {
		return float64(deletes.Pending())
	}))

	return &App{
		Config:     cfg,
		Store:      store,
		Registry:   reg,
		Backend:    client,
		Sessions:   sessions,
		Options:    opts,
		Capture:    service.NewCapturePipeline(client, sessions, logger),
		Categorize: service.NewCategorizeFlow(client, sessions, opts, logger),
		Deletes:    deletes,
		Wardrobe:   service.NewWardrobeService(client, sessions, logger),
		Auth:       service.NewAuthService(client, sessions, logger),
		Logger:     logger,
	}
}
