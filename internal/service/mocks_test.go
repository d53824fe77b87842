package service_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/cache"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- Mocks ---

type mockBackend struct {
	mu         sync.Mutex
	dashboards map[string]domain.DashboardSnapshot
	getErr     error
	getCalls   []domain.Month
	getHook    func(ctx context.Context, month domain.Month) (domain.DashboardSnapshot, bool, error)

	updateErr   error
	updateCalls int
	updateHook  func()

	deleteErr   error
	deleteCalls int

	createErr error
	created   []domain.NewTransaction

	uploadResult *domain.UploadResult
	uploadErr    error
	uploadCalls  int
	uploadedName string

	budgetErr   error
	budgetCalls int
}

func newMockBackend(snaps ...domain.DashboardSnapshot) *mockBackend {
	m := &mockBackend{dashboards: map[string]domain.DashboardSnapshot{}}
	for i, s := range snaps {
		m.dashboards[s.SelectedMonth.String()] = s
		if i == len(snaps)-1 {
			m.dashboards["latest"] = s
		}
	}
	return m
}

func (m *mockBackend) GetDashboard(ctx context.Context, month domain.Month) (domain.DashboardSnapshot, error) {
	m.mu.Lock()
	m.getCalls = append(m.getCalls, month)
	hook, err := m.getHook, m.getErr
	m.mu.Unlock()

	if hook != nil {
		if s, handled, err := hook(ctx, month); handled {
			return s, err
		}
	}
	if err != nil {
		return domain.DashboardSnapshot{}, err
	}

	key := "latest"
	if !month.IsZero() {
		key = month.String()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.dashboards[key]
	if !ok {
		return domain.DashboardSnapshot{}, &domain.ErrNotFound{Resource: "dashboard", ID: key}
	}
	return s.Clone(), nil
}

func (m *mockBackend) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.getCalls)
}

func (m *mockBackend) CreateTransaction(_ context.Context, in domain.NewTransaction) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, in)
	return &domain.Transaction{ID: 99, MerchantName: in.MerchantName, Amount: in.Amount, Date: in.Date, Category: in.Category}, nil
}

func (m *mockBackend) UpdateCategory(_ context.Context, id int64, c domain.Category) (*domain.Transaction, error) {
	m.mu.Lock()
	m.updateCalls++
	hook, err := m.updateHook, m.updateErr
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return &domain.Transaction{ID: id, Category: c}, nil
}

func (m *mockBackend) DeleteTransaction(_ context.Context, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	return m.deleteErr
}

func (m *mockBackend) UploadCSV(_ context.Context, filename string, r io.Reader) (*domain.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadCalls++
	m.uploadedName = filename
	_, _ = io.Copy(io.Discard, r)
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	return m.uploadResult, nil
}

func (m *mockBackend) SetBudget(_ context.Context, amount decimal.Decimal) (*domain.BudgetResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgetCalls++
	if m.budgetErr != nil {
		return nil, m.budgetErr
	}
	return &domain.BudgetResponse{ID: 1, Amount: amount}, nil
}

type mockConfirmer struct {
	answer bool
	asked  []string
}

func (m *mockConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	m.asked = append(m.asked, prompt)
	return m.answer, nil
}

// --- Helpers ---

type fixture struct {
	backend   *mockBackend
	dashboard *service.Dashboard
	notices   *service.NoticeFeed
	metrics   *observability.Metrics
}

func newFixture(t *testing.T, backend *mockBackend) fixture {
	t.Helper()
	metrics := observability.NewMetrics()
	notices := service.NewNoticeFeed(service.DefaultNoticeCapacity, metrics, zap.NewNop())
	c := cache.New[domain.DashboardSnapshot](time.Minute)
	t.Cleanup(c.Close)
	return fixture{
		backend:   backend,
		dashboard: service.NewDashboard(backend, c, notices, metrics, zap.NewNop()),
		notices:   notices,
		metrics:   metrics,
	}
}

func mustMonth(s string) domain.Month {
	m, err := domain.ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

func snapshotFor(month string, hasPrev, hasNext bool) domain.DashboardSnapshot {
	m := mustMonth(month)
	s := domain.EmptySnapshot(m)
	s.TotalSpend = decimal.NewFromInt(450)
	s.MonthlyBudget = decimal.NewFromInt(1500)
	s.AvgDailySpend = decimal.NewFromInt(15)
	s.TargetDailySpendPerDay = decimal.NewFromInt(50)
	s.Transactions = []domain.Transaction{
		{ID: 2, Date: domain.NewDate(m.Year, m.Month, 9), MerchantName: "Uber", Amount: decimal.NewFromInt(12), Category: domain.CategoryTransport},
		{ID: 1, Date: domain.NewDate(m.Year, m.Month, 2), MerchantName: "Tesco", Amount: decimal.RequireFromString("20.50"), Category: domain.CategoryGroceries},
	}
	s.SpendingBreakdown = []domain.CategoryTotal{
		{Category: domain.CategoryGroceries, Total: decimal.NewFromInt(300)},
		{Category: domain.CategoryTransport, Total: decimal.NewFromInt(150)},
	}
	s.HasPreviousMonthData = hasPrev
	s.HasNextMonthData = hasNext
	return s
}

func lastNotice(t *testing.T, f *service.NoticeFeed) domain.Notice {
	t.Helper()
	list := f.List()
	if len(list) == 0 {
		t.Fatal("expected at least one notice")
	}
	return list[len(list)-1]
}
