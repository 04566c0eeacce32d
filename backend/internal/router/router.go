package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/confessions/backend/internal/setup"
	mw "github.com/itchan-dev/confessions/shared/middleware"
	"github.com/itchan-dev/confessions/shared/middleware/metrics"
)

// New creates the chi router with all API routes.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(chimw.Compress(5, "application/json"))

	origins := deps.Config.Public.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Use(mw.SecurityHeaders(deps.Config.Public.HTTPS, mw.APIPolicy))

	h := deps.Handler

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/posts", func(r chi.Router) {
		r.Use(chimw.Timeout(15 * time.Second))
		r.Get("/", h.ListPosts)
		r.Post("/", h.CreatePost)
		r.Patch("/{post}", h.UpdatePostCounts)
	})

	return r
}
