// Package app wires the backend client, stores and services shared by the
// BFA server and the CLI.
package app

import (
	"net/http"

	"github.com/boddenberg/budgetwise-bfa-go/internal/config"
	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/cache"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/client"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/memory"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/sqlite"
	"github.com/boddenberg/budgetwise-bfa-go/internal/port"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"go.uber.org/zap"
)

// MemoryStatePath keeps the onboarding record in memory instead of SQLite.
const MemoryStatePath = ":memory:"

// App holds every long-lived dependency.
type App struct {
	Backend    *client.BackendClient
	Dashboard  *service.Dashboard
	Onboarding *service.Onboarding
	Chat       *service.Chat
	Notices    *service.NoticeFeed

	snapshots *cache.InMemory[domain.DashboardSnapshot]
	store     *sqlite.OnboardingStore
	logger    *zap.Logger
}

// New builds the application graph from cfg.
func New(cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (*App, error) {
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("budgetwise-backend", client.IsClientError)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	opts := []client.Option{client.WithMetrics(metrics)}
	if cfg.BackendAPIKey != "" {
		opts = append(opts, client.WithAPIKey(cfg.BackendAPIKey))
	}
	backend := client.NewBackendClient(httpClient, cfg.BackendAPIURL, cb, resilienceCfg, opts...)

	a := &App{
		Backend:   backend,
		snapshots: cache.New[domain.DashboardSnapshot](cfg.CacheTTL),
		logger:    logger,
	}

	var store port.OnboardingStore
	if cfg.StateDBPath == MemoryStatePath {
		logger.Info("onboarding state kept in memory")
		store = memory.NewOnboardingStore()
	} else {
		s, err := sqlite.NewOnboardingStore(cfg.StateDBPath, logger)
		if err != nil {
			a.snapshots.Close()
			return nil, err
		}
		logger.Info("onboarding state opened", zap.String("path", cfg.StateDBPath))
		a.store = s
		store = s
	}

	a.Notices = service.NewNoticeFeed(service.DefaultNoticeCapacity, metrics, logger)
	a.Dashboard = service.NewDashboard(backend, a.snapshots, a.Notices, metrics, logger)
	a.Onboarding = service.NewOnboarding(store, a.Dashboard, logger)
	a.Chat = service.NewChat(backend, a.Notices, metrics, logger)

	a.Dashboard.OnMonthChange(func(m domain.Month) {
		logger.Debug("selected month changed", zap.String("month", m.String()))
	})

	return a, nil
}

// Close releases the cache janitor and the state database.
func (a *App) Close() error {
	a.snapshots.Close()
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
