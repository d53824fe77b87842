package handler

import (
	"net/http"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"
	"github.com/boddenberg/budgetwise-bfa-go/internal/viewmodel"

	"go.uber.org/zap"
)

// ============================================================
// Chat
// ============================================================

type chatResponse struct {
	Message  domain.ChatMessage   `json:"message"`
	Messages []domain.ChatMessage `json:"messages"`
}

func chatHandler(chat *service.Chat, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat")
		defer span.End()

		var req domain.ChatRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		msg, err := chat.Ask(ctx, req.Question)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{Message: msg, Messages: chat.Messages()})
	}
}

func chatMessagesHandler(chat *service.Chat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, chat.Messages())
	}
}

// ============================================================
// Onboarding
// ============================================================

func onboardingStatusHandler(ob *service.Onboarding, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := ob.Status(r.Context())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func onboardingNameHandler(ob *service.Onboarding, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/onboarding/name")
		defer span.End()

		var req struct {
			Name string `json:"name"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		rec, err := ob.SubmitName(ctx, req.Name)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// ============================================================
// Reference data
// ============================================================

func categoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, viewmodel.AllCategories())
	}
}

func noticesHandler(notices *service.NoticeFeed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, notices.List())
	}
}
