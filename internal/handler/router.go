package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/granaflow/grana-assistant-go/internal/infra/observability"
	"github.com/granaflow/grana-assistant-go/internal/port"
	"github.com/granaflow/grana-assistant-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// RouterConfig carries the auth knobs the router needs.
type RouterConfig struct {
	JWTSecret string
	DevAuth   bool
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc *service.Chat, store port.LedgerStore, metrics *observability.Metrics, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(store))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(TenantAuthMiddleware(cfg.JWTSecret, cfg.DevAuth, logger))

		// 💬 Chat — the single conversational entrypoint
		r.Post("/chat", chatHandler(svc, logger))

		// 📊 Operational snapshot
		r.Get("/metrics/assistant", assistantMetricsHandler(metrics))
	})

	return r
}

// healthzHandler probes the store with a cheap read. A failing backend
// degrades the report but the process itself is still "up".
func healthzHandler(store port.LedgerStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		storeStatus := "healthy"

		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if _, err := store.ListAccounts(ctx, "health-check"); err != nil {
				status = "degraded"
				storeStatus = "degraded"
			}
		} else {
			storeStatus = "unconfigured"
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":    status,
			"store":     storeStatus,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func assistantMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetAssistantSnapshot())
	}
}
