package handler

import (
	"encoding/json"
	"net/http"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Transactions
// ============================================================

type createTransactionRequest struct {
	MerchantName string      `json:"merchant_name"`
	Amount       json.Number `json:"amount"`
	Date         string      `json:"date"`
	Category     string      `json:"category"`
}

type createTransactionResponse struct {
	Transaction *domain.Transaction `json:"transaction"`
	Dashboard   service.State       `json:"dashboard"`
}

func createTransactionHandler(dash *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions")
		defer span.End()

		var req createTransactionRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		in := domain.NewTransaction{MerchantName: req.MerchantName, Category: domain.Category(req.Category)}
		amount, err := domain.ParseAmount(req.Amount.String())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		in.Amount = amount
		if req.Date != "" {
			d, err := domain.ParseDate(req.Date)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}
			in.Date = d
		}

		tx, err := dash.AddTransaction(ctx, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, createTransactionResponse{Transaction: tx, Dashboard: dash.State()})
	}
}

func updateCategoryHandler(dash *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/transactions/{id}")
		defer span.End()

		id, ok := transactionID(w, r)
		if !ok {
			return
		}
		span.SetAttributes(attribute.Int64("transaction.id", id))

		var req domain.UpdateCategoryRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		if err := dash.UpdateCategory(ctx, id, req.Category); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dash.State())
	}
}

func deleteTransactionHandler(dash *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/transactions/{id}")
		defer span.End()

		id, ok := transactionID(w, r)
		if !ok {
			return
		}
		span.SetAttributes(attribute.Int64("transaction.id", id))

		if err := dash.Delete(ctx, id, ConfirmerFromContext(ctx)); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dash.State())
	}
}

func tableActionHandler(dash *service.Dashboard, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions/actions")
		defer span.End()

		var action service.TableAction
		if !decodeJSON(w, r, &action) {
			return
		}
		span.SetAttributes(attribute.String("table.action", string(action.Kind)))

		if err := dash.Dispatch(ctx, action, ConfirmerFromContext(ctx)); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dash.State())
	}
}
