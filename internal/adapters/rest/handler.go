// Package rest exposes the recommendation pipeline over HTTP.
package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ewilliams-labs/moodtune/internal/core/domain"
	"github.com/ewilliams-labs/moodtune/internal/core/services"
)

// pipelineRunner is the slice of the orchestrator the handlers need.
type pipelineRunner interface {
	Process(ctx context.Context, req services.Request) domain.PipelineResult
}

// catalogInfo reports the active index size for the health endpoint.
type catalogInfo interface {
	Size() int
}

// Handler manages the HTTP interface for the service.
type Handler struct {
	pipeline pipelineRunner
	catalog  catalogInfo
	router   chi.Router
	log      *slog.Logger
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(pipeline pipelineRunner, catalog catalogInfo, log *slog.Logger) *Handler {
	h := &Handler{
		pipeline: pipeline,
		catalog:  catalog,
		router:   chi.NewRouter(),
		log:      log,
	}
	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.Use(middleware.RequestID)
	h.router.Use(middleware.RealIP)
	h.router.Use(middleware.Recoverer)
	h.router.Use(middleware.Timeout(120 * time.Second))

	h.router.Get("/healthz", h.HealthCheck)
	h.router.Handle("/metrics", promhttp.Handler())

	h.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommend", h.RecommendText)
		r.Post("/recommend/audio", h.RecommendAudio)
	})
}

// HealthCheck reports liveness plus the size of the loaded catalog.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"catalog_records": h.catalog.Size(),
	})
}
