package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmleblanc/gitrelay/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr                string
	corsOrigin          string
	defaultRepos        []string
	contributionsMaxAge int
	activityMaxAge      int
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithCORSOrigin sets the single origin allowed to call the relay
func WithCORSOrigin(origin string) Option {
	return func(c *config) {
		c.corsOrigin = origin
	}
}

// WithDefaultRepos sets the repository allow-list applied when a relay
// request carries no includeRepos parameter
func WithDefaultRepos(repos []string) Option {
	return func(c *config) {
		c.defaultRepos = repos
	}
}

// WithCacheMaxAges sets the Cache-Control max-age, in seconds, for the
// contributions and activity endpoints
func WithCacheMaxAges(contributions, activity int) Option {
	return func(c *config) {
		c.contributionsMaxAge = contributions
		c.activityMaxAge = activity
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	ingestUC interfaces.IngestUseCase,
	relayUC interfaces.RelayUseCase,
	secrets interfaces.SecretStore,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr:                "localhost:8080",
		corsOrigin:          "*",
		contributionsMaxAge: 300,
		activityMaxAge:      60,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", handleHealth)

	// Webhook endpoint
	webhookHandler := NewWebhookHandler(secrets, ingestUC)
	router.Post("/hooks/github/app", webhookHandler.Handle)

	// Relay endpoint, CORS scoped to the configured origin. Preflight
	// OPTIONS requests are answered by the CORS middleware before any
	// handler logic runs.
	relayHandler := NewRelayHandler(relayUC, cfg.defaultRepos, cfg.contributionsMaxAge, cfg.activityMaxAge)
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{cfg.corsOrigin},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/github", relayHandler.Handle)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
