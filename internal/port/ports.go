// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"io"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// DashboardFetcher retrieves the server-computed snapshot for a month.
// A zero month means "most recent month with data".
type DashboardFetcher interface {
	GetDashboard(ctx context.Context, month domain.Month) (domain.DashboardSnapshot, error)
}

// TransactionWriter mutates server-owned transactions.
type TransactionWriter interface {
	CreateTransaction(ctx context.Context, in domain.NewTransaction) (*domain.Transaction, error)
	UpdateCategory(ctx context.Context, id int64, category domain.Category) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

// Uploader sends a CSV export for import.
type Uploader interface {
	UploadCSV(ctx context.Context, filename string, r io.Reader) (*domain.UploadResult, error)
}

// BudgetSetter writes the monthly budget.
type BudgetSetter interface {
	SetBudget(ctx context.Context, amount decimal.Decimal) (*domain.BudgetResponse, error)
}

// ChatAsker forwards a question to the assistant.
type ChatAsker interface {
	Ask(ctx context.Context, question string) (*domain.ChatResponse, error)
}

// Backend is everything the dashboard orchestrator needs from the REST API.
type Backend interface {
	DashboardFetcher
	TransactionWriter
	Uploader
	BudgetSetter
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Purge()
}

// OnboardingStore persists the onboarding stage between runs.
// Load returns a landing record when nothing has been saved yet.
type OnboardingStore interface {
	Load(ctx context.Context) (domain.OnboardingRecord, error)
	Save(ctx context.Context, rec domain.OnboardingRecord) error
}

// Confirmer asks the user to confirm a destructive action.
// Only an explicit true allows the action to proceed.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Notifier publishes user-visible notices.
type Notifier interface {
	Notify(level domain.NoticeLevel, message string) domain.Notice
}
