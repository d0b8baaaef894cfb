package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appmiddleware "github.com/kaushiktak19/blog-website/internal/middleware"
)

type RouterConfig struct {
	CorsAllowedOrigins []string
	RevalidateToken    string
	PublicRateLimit    int
	PublicRateWindow   time.Duration
}

// NewRouter wires every route. The returned func releases the rate
// limiter and must be called on shutdown.
func NewRouter(cfg RouterConfig, h *LandingHandler) (http.Handler, func()) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmiddleware.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(appmiddleware.Metrics)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	publicLimiter := appmiddleware.NewRateLimiter(cfg.PublicRateLimit, cfg.PublicRateWindow)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(publicLimiter.Limit)
			r.Get("/posts", h.Posts)
			r.Get("/posts/authors", h.PostAuthors)
			r.Get("/community-posts", h.CommunityPosts)
		})

		r.Get("/post/{slug}", h.GetBySlug)
		r.Get("/post", h.GetBySlug)
		r.Get("/featured", h.Featured)
		r.Method(http.MethodGet, "/featured/ws", h.FeaturedSocket())
		r.Get("/tags", h.Tags)
		r.Get("/authors", h.Authors)
		r.Get("/collections", h.Collections)
		r.Get("/testimonials", h.Testimonials)

		r.With(appmiddleware.Auth(cfg.RevalidateToken)).Post("/revalidate", h.Revalidate)
	})

	return r, publicLimiter.Stop
}
