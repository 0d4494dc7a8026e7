package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chroniclehq/chronicle/internal/auth"
	"github.com/chroniclehq/chronicle/internal/handlers"
	"github.com/chroniclehq/chronicle/internal/middleware"
)

// NewRouter wires HTTP routes for the chronicle service.
func NewRouter(h *handlers.TimelineHandler, identity *auth.Identity) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/timeline", h.PutEntities)
	mux.HandleFunc("GET /api/v1/timeline/{type}", h.GetEntities)
	mux.HandleFunc("GET /api/v1/timeline/{type}/events", h.GetEntityTimelines)
	mux.HandleFunc("GET /api/v1/timeline/{type}/{id}", h.GetEntity)
	mux.HandleFunc("PUT /api/v1/domain", h.PutDomain)
	mux.HandleFunc("GET /api/v1/domain", h.GetDomains)
	mux.HandleFunc("GET /api/v1/domain/{id}", h.GetDomain)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
	return middleware.RequestID(identity.Extract(mux))
}
