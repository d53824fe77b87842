package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/boddenberg/budgetwise-bfa-go/internal/port"

	"go.uber.org/zap"
)

type contextKey string

const confirmedKey contextKey = "confirmed"

// ConfirmationMiddleware reads an explicit confirmation from ?confirm=true or
// the X-Confirm header and stores it in the request context.
func ConfirmationMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.URL.Query().Get("confirm")
			if raw == "" {
				raw = r.Header.Get("X-Confirm")
			}
			confirmed, err := strconv.ParseBool(raw)
			if raw != "" && err != nil {
				logger.Warn("ignoring malformed confirmation",
					zap.String("path", r.URL.Path),
					zap.String("value", raw),
				)
			}
			ctx := context.WithValue(r.Context(), confirmedKey, confirmed && err == nil)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ConfirmerFromContext answers the dashboard's confirmation prompt with
// whatever the request carried. Absent means no.
func ConfirmerFromContext(ctx context.Context) port.Confirmer {
	confirmed, _ := ctx.Value(confirmedKey).(bool)
	return port.ConfirmFunc(func(context.Context, string) (bool, error) {
		return confirmed, nil
	})
}
