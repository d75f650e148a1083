package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wardrobe-client/internal/handler"
	"wardrobe-client/internal/middleware"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	ItemHandler    *handler.ItemHandler
	OptionsHandler *handler.OptionsHandler
	SessionHandler *handler.SessionHandler
	AuthMiddleware func(http.Handler) http.Handler
	AllowedOrigins []string
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	// AUTHENTICATED routes
	r.Group(func(r chi.Router) {
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}

		if cfg.Gatherer != nil {
			r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
		}

		r.Route("/api/v1", func(r chi.Router) {
			// Health check endpoints
			if cfg.Handler != nil {
				r.Get("/health", cfg.Handler.Health)
				r.Get("/ready", cfg.Handler.Ready)
			}

			// Session endpoints
			if cfg.SessionHandler != nil {
				r.Route("/session", func(r chi.Router) {
					r.Get("/", cfg.SessionHandler.Current)
					r.Post("/login", cfg.SessionHandler.Login)
					r.Post("/signup", cfg.SessionHandler.Signup)
					r.Post("/social", cfg.SessionHandler.Social)
					r.Post("/logout", cfg.SessionHandler.Logout)
				})
			}

			// Item endpoints
			if cfg.ItemHandler != nil {
				r.Post("/capture", cfg.ItemHandler.Capture)
				r.Delete("/delete-requests/{token}", cfg.ItemHandler.CancelDelete)
				r.Route("/items", func(r chi.Router) {
					r.Get("/", cfg.ItemHandler.List)
					r.Post("/refresh", cfg.ItemHandler.Refresh)
					r.Route("/{id}", func(r chi.Router) {
						r.Delete("/", cfg.ItemHandler.ConfirmDelete)
						r.Post("/category", cfg.ItemHandler.Categorize)
						r.Post("/delete-request", cfg.ItemHandler.RequestDelete)
						r.Get("/share", cfg.ItemHandler.Share)
					})
				})
			}

			// Suggestion endpoints
			if cfg.OptionsHandler != nil {
				r.Get("/options/{list}", cfg.OptionsHandler.List)
			}
		})
	})

	return r
}
