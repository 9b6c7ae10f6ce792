// Package httptransport assembles the HTTP surface: platform middleware,
// health and metrics endpoints, and the enrollment routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"enrollsvc/internal/platform/metrics"
	"enrollsvc/internal/platform/middleware"
	"enrollsvc/internal/transport/http/shared"
)

// Registrar is anything that can attach its routes to the router. Each domain
// handler implements it.
type Registrar interface {
	Register(r chi.Router)
}

// HealthResponse is the root liveness payload.
type HealthResponse struct {
	Service   string    `json:"service"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRouter builds the full router. The middleware order matters: recovery
// outermost, then request identity, then logging and latency which depend on
// it.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)
		for _, h := range handlers {
			h.Register(api)
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, HealthResponse{
		Service:   "enrollment-service",
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}
