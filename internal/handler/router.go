// Package handler exposes the dashboard orchestrator as a JSON API for the
// browser frontend.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("handler")

// DefaultUploadMaxBytes caps CSV uploads when Services.UploadMaxBytes is unset.
const DefaultUploadMaxBytes = 10 << 20

// Pinger reports whether the backend answers.
type Pinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// Services bundles what the router serves. Nil services leave their routes
// answering 503.
type Services struct {
	Dashboard      *service.Dashboard
	Onboarding     *service.Onboarding
	Chat           *service.Chat
	Notices        *service.NoticeFeed
	Backend        Pinger
	UploadMaxBytes int64
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	if svcs.UploadMaxBytes <= 0 {
		svcs.UploadMaxBytes = DefaultUploadMaxBytes
	}

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", metricsHandler(metrics))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/categories", categoriesHandler())
		r.Get("/metrics/client", clientMetricsHandler(metrics))

		r.Group(func(r chi.Router) {
			r.Use(requireService(svcs.Dashboard != nil, "dashboard"))

			r.Get("/dashboard", dashboardHandler(svcs.Dashboard, logger))
			r.Get("/dashboard/{month}", dashboardMonthHandler(svcs.Dashboard, logger))
			r.Post("/dashboard/refresh", refreshHandler(svcs.Dashboard, logger))
			r.Post("/dashboard/navigate/{direction}", navigateHandler(svcs.Dashboard, logger))

			r.Post("/budget", budgetHandler(svcs.Dashboard, logger))
			r.Post("/upload", uploadHandler(svcs.Dashboard, svcs.UploadMaxBytes, logger))

			r.Post("/transactions", createTransactionHandler(svcs.Dashboard, logger))
			r.Group(func(r chi.Router) {
				r.Use(ConfirmationMiddleware(logger))
				r.Post("/transactions/actions", tableActionHandler(svcs.Dashboard, logger))
				r.Patch("/transactions/{id}", updateCategoryHandler(svcs.Dashboard, logger))
				r.Delete("/transactions/{id}", deleteTransactionHandler(svcs.Dashboard, logger))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireService(svcs.Chat != nil, "chat"))
			r.Post("/chat", chatHandler(svcs.Chat, logger))
			r.Get("/chat/messages", chatMessagesHandler(svcs.Chat))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireService(svcs.Onboarding != nil, "onboarding"))
			r.Get("/onboarding", onboardingStatusHandler(svcs.Onboarding, logger))
			r.Post("/onboarding/name", onboardingNameHandler(svcs.Onboarding, logger))
			r.Post("/onboarding/upload", onboardingUploadHandler(svcs.Onboarding, svcs.UploadMaxBytes, logger))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireService(svcs.Notices != nil, "notices"))
			r.Get("/notices", noticesHandler(svcs.Notices))
		})
	})

	return r
}

func requireService(ok bool, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ok {
				writeError(w, http.StatusServiceUnavailable, name+" service not configured")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(svcs Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "bfa-api", Status: "healthy", LastChecked: now},
		}
		var backend, state *domain.ServiceHealth

		g, gCtx := errgroup.WithContext(ctx)
		if svcs.Backend != nil {
			g.Go(func() error {
				latency, err := svcs.Backend.Ping(gCtx)
				status := "healthy"
				if err != nil {
					logger.Warn("backend health check failed", zap.Error(err))
					status = "unhealthy"
				}
				backend = &domain.ServiceHealth{Name: "budgetwise-backend", Status: status, LatencyMs: latency.Milliseconds(), LastChecked: now}
				return nil
			})
		}
		if svcs.Onboarding != nil {
			g.Go(func() error {
				start := time.Now()
				_, err := svcs.Onboarding.Status(gCtx)
				status := "healthy"
				if err != nil {
					logger.Warn("state store health check failed", zap.Error(err))
					status = "degraded"
				}
				state = &domain.ServiceHealth{Name: "state-store", Status: status, LatencyMs: time.Since(start).Milliseconds(), LastChecked: now}
				return nil
			})
		}
		_ = g.Wait()

		for _, s := range []*domain.ServiceHealth{backend, state} {
			if s != nil {
				services = append(services, *s)
			}
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// metricsHandler serves the application registry alongside the Go runtime
// collectors of the default one.
func metricsHandler(metrics *observability.Metrics) http.Handler {
	if metrics == nil || metrics.Registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(
		prometheus.Gatherers{prometheus.DefaultGatherer, metrics.Registry},
		promhttp.HandlerOpts{},
	)
}

func clientMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetClientSnapshot())
	}
}
