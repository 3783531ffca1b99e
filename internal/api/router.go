package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/boardlab/amazon-board-crawler/internal/stats"
)

// NewRouter builds the chi router for the read API. The metrics
// argument may be nil, in which case /metrics is not mounted.
func NewRouter(handlers *Handlers, metrics *stats.Metrics) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Access-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ranking", handlers.GetRanking)
		r.Get("/reviews", handlers.GetReviews)
		r.Get("/products", handlers.GetProducts)
	})

	return r
}
