package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// DefaultRequestTimeout applies when RouteOptions leaves RequestTimeout unset.
const DefaultRequestTimeout = 10 * time.Second

// RouteOptions carries the router settings that come from configuration.
type RouteOptions struct {
	CORSOrigins    []string
	RateLimitRPM   int
	RequestTimeout time.Duration
}

func (h *Handler) Routes(m *Middleware, metricsHandler http.Handler, opts RouteOptions) *chi.Mux {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.Timeout(timeout))
	r.Use(m.CORS(opts.CORSOrigins))

	// Health endpoints stay outside the rate limit
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(m.RateLimit(opts.RateLimitRPM))

		r.Get("/keys/random", h.GetRandomKey)
		r.Get("/structures/{kind}/{name}", h.GetStructure)
	})

	return r
}
