package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	chatapi "github.com/futig/rafiq-frontend/internal/api/chat"
	"github.com/futig/rafiq-frontend/internal/api/docs"
	"github.com/futig/rafiq-frontend/internal/api/middleware"
	"github.com/futig/rafiq-frontend/internal/api/web"
	"github.com/futig/rafiq-frontend/internal/config"
	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/metrics"
	"github.com/futig/rafiq-frontend/internal/pkg/response"
)

const healthProbeTimeout = 5 * time.Second

// HealthChecker probes the backend
type HealthChecker interface {
	Health(ctx context.Context) (*entity.HealthResponse, error)
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	webHandler *web.Handler,
	chatHandler *chatapi.Handler,
	health HealthChecker,
	cfg config.WebConfig,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(metrics.Middleware())
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", healthHandler(health))
	r.Handle("/metrics", promhttp.Handler())

	docs.RegisterRoutes(r)
	web.RegisterStatic(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(cfg))

		web.RegisterRoutes(r, webHandler)
		chatapi.RegisterRoutes(r, chatHandler)
	})

	return r
}

type healthResponse struct {
	Status  string                 `json:"status"`
	Backend *entity.HealthResponse `json:"backend,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// healthHandler reports healthy only when the backend answers its root endpoint.
func healthHandler(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		backend, err := health.Health(ctx)
		if err != nil {
			ctxzap.Warn(ctx, "backend health probe failed", zap.Error(err))
			response.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Error: err.Error()})
			return
		}

		response.Success(w, healthResponse{Status: "healthy", Backend: backend})
	}
}
