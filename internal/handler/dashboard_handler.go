package handler

import (
	"errors"
	"net/http"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Dashboard
// ============================================================

type navigateResponse struct {
	service.State
	Moved bool `json:"moved"`
}

// Read failures are already recorded in the state (phase=error, lastError),
// so dashboard reads answer 200 with whatever the dashboard now holds.
func logLoadError(logger *zap.Logger, err error) {
	if err != nil && !errors.Is(err, service.ErrSuperseded) {
		logger.Warn("dashboard load failed", zap.Error(err))
	}
}

func dashboardHandler(dash *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		if !dash.Loaded() {
			logLoadError(logger, dash.Load(ctx, domain.Month{}))
		}
		writeJSON(w, http.StatusOK, dash.State())
	}
}

func dashboardMonthHandler(dash *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard/{month}")
		defer span.End()

		month, err := domain.ParseMonth(chi.URLParam(r, "month"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("dashboard.month", month.String()))

		logLoadError(logger, dash.Load(ctx, month))
		writeJSON(w, http.StatusOK, dash.State())
	}
}

func refreshHandler(dash *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/dashboard/refresh")
		defer span.End()

		logLoadError(logger, dash.Refresh(ctx))
		writeJSON(w, http.StatusOK, dash.State())
	}
}

func navigateHandler(dash *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/dashboard/navigate/{direction}")
		defer span.End()

		dir, err := service.ParseDirection(chi.URLParam(r, "direction"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("dashboard.direction", string(dir)))

		moved, err := dash.Navigate(ctx, dir)
		logLoadError(logger, err)
		writeJSON(w, http.StatusOK, navigateResponse{State: dash.State(), Moved: moved})
	}
}

func budgetHandler(dash *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/budget")
		defer span.End()

		var req domain.BudgetRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		amount, err := domain.ParseAmount(req.Amount.String())
		if err != nil {
			handleServiceError(w, &domain.ErrValidation{Field: "amount", Message: "please enter a valid, positive number for your budget"}, logger)
			return
		}

		if err := dash.SetBudget(ctx, amount); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dash.State())
	}
}
