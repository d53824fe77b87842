package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/port"
	"github.com/boddenberg/budgetwise-bfa-go/internal/service"

	"github.com/shopspring/decimal"
)

func loaded(t *testing.T) fixture {
	t.Helper()
	f := newFixture(t, newMockBackend(snapshotFor("2024-05", true, false)))
	if err := f.dashboard.Load(context.Background(), domain.Month{}); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	return f
}

func categoryOf(f fixture, id int64) domain.Category {
	st := f.dashboard.State()
	return st.Snapshot.Transactions[st.Snapshot.FindTransaction(id)].Category
}

func TestUpdateCategory_OptimisticThenRevertOnFailure(t *testing.T) {
	f := loaded(t)

	var seenDuringPatch domain.Category
	f.backend.updateHook = func() { seenDuringPatch = categoryOf(f, 1) }
	f.backend.updateErr = &domain.ErrExternalService{Service: "backend", Err: errors.New("502")}

	err := f.dashboard.UpdateCategory(context.Background(), 1, domain.CategoryShopping)
	if err == nil {
		t.Fatal("expected error")
	}

	if seenDuringPatch != domain.CategoryShopping {
		t.Errorf("expected optimistic category visible during PATCH, got %s", seenDuringPatch)
	}
	if got := categoryOf(f, 1); got != domain.CategoryGroceries {
		t.Errorf("expected revert to Groceries, got %s", got)
	}

	n := lastNotice(t, f.notices)
	if n.Level != domain.NoticeError {
		t.Errorf("expected error notice, got %s", n.Level)
	}
	if !strings.Contains(n.Message, "Failed to update category") {
		t.Errorf("unexpected notice message %q", n.Message)
	}
	if got := f.metrics.GetClientSnapshot().OptimisticReverts; got != 1 {
		t.Errorf("expected one revert recorded, got %d", got)
	}
}

func TestUpdateCategory_SuccessReloads(t *testing.T) {
	f := loaded(t)
	before := f.backend.calls()

	if err := f.dashboard.UpdateCategory(context.Background(), 1, domain.CategoryShopping); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if f.backend.calls() != before+1 {
		t.Errorf("expected a reload after the update, got %d requests", f.backend.calls()-before)
	}
	if lastNotice(t, f.notices).Level != domain.NoticeSuccess {
		t.Error("expected success notice")
	}
}

func TestUpdateCategory_UnchangedIsNoop(t *testing.T) {
	f := loaded(t)

	if err := f.dashboard.UpdateCategory(context.Background(), 1, domain.CategoryGroceries); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if f.backend.updateCalls != 0 {
		t.Errorf("expected no PATCH, got %d", f.backend.updateCalls)
	}
}

func TestUpdateCategory_RejectsInvalidCategoryBeforeSending(t *testing.T) {
	f := loaded(t)

	err := f.dashboard.UpdateCategory(context.Background(), 1, "Pets")
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.backend.updateCalls != 0 {
		t.Error("expected no PATCH for an invalid category")
	}
}

func TestUpdateCategory_UnknownTransaction(t *testing.T) {
	f := loaded(t)

	err := f.dashboard.UpdateCategory(context.Background(), 404, domain.CategoryRent)
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDelete_RequiresAffirmativeConfirmation(t *testing.T) {
	f := loaded(t)

	declined := &mockConfirmer{answer: false}
	err := f.dashboard.Delete(context.Background(), 1, declined)
	var cr *domain.ErrConfirmationRequired
	if !errors.As(err, &cr) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
	if len(declined.asked) != 1 || !strings.Contains(declined.asked[0], "Tesco") {
		t.Errorf("expected a prompt naming the merchant, got %v", declined.asked)
	}

	if err := f.dashboard.Delete(context.Background(), 1, nil); !errors.As(err, &cr) {
		t.Fatalf("expected nil confirmer to refuse, got %v", err)
	}
	if f.backend.deleteCalls != 0 {
		t.Fatalf("expected no DELETE before confirmation, got %d", f.backend.deleteCalls)
	}

	before := f.backend.calls()
	if err := f.dashboard.Delete(context.Background(), 1, &mockConfirmer{answer: true}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if f.backend.deleteCalls != 1 {
		t.Errorf("expected one DELETE, got %d", f.backend.deleteCalls)
	}
	if f.backend.calls() != before+1 {
		t.Error("expected a full reload after delete")
	}
}

func TestDelete_FailureLeavesStateUntouched(t *testing.T) {
	f := loaded(t)
	f.backend.deleteErr = &domain.ErrExternalService{Service: "backend", Err: errors.New("500")}

	confirm := port.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
	if err := f.dashboard.Delete(context.Background(), 1, confirm); err == nil {
		t.Fatal("expected error")
	}

	if got := len(f.dashboard.State().Snapshot.Transactions); got != 2 {
		t.Errorf("expected 2 transactions, got %d", got)
	}
	if lastNotice(t, f.notices).Level != domain.NoticeError {
		t.Error("expected error notice")
	}
}

func TestUpload_ReportsImportedAndSkipped(t *testing.T) {
	f := loaded(t)
	f.backend.uploadResult = &domain.UploadResult{
		ImportedCount: 7,
		SkippedRows:   []domain.SkippedRow{{Row: 2}, {Row: 5}, {Row: 9}},
	}
	before := f.backend.calls()

	res, err := f.dashboard.Upload(context.Background(), "/tmp/exports/May.CSV", strings.NewReader("a,b\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if res.ImportedCount != 7 || res.SkippedCount() != 3 {
		t.Errorf("expected 7 imported / 3 skipped, got %d / %d", res.ImportedCount, res.SkippedCount())
	}
	if f.backend.uploadedName != "May.CSV" {
		t.Errorf("expected base filename to be sent, got %q", f.backend.uploadedName)
	}

	n := lastNotice(t, f.notices)
	if n.Message != "File processed! Imported: 7, Skipped: 3" {
		t.Errorf("unexpected notice %q", n.Message)
	}
	if n.Level != domain.NoticeWarning {
		t.Errorf("expected warning level when rows were skipped, got %s", n.Level)
	}
	if f.backend.calls() != before+1 {
		t.Error("expected a reload after upload")
	}
}

func TestUpload_RejectsMissingOrNonCSV(t *testing.T) {
	f := loaded(t)

	for _, name := range []string{"", "statement.pdf"} {
		_, err := f.dashboard.Upload(context.Background(), name, strings.NewReader("x"))
		var ve *domain.ErrValidation
		if !errors.As(err, &ve) {
			t.Errorf("%q: expected validation error, got %v", name, err)
		}
	}
	if f.backend.uploadCalls != 0 {
		t.Errorf("expected no upload request, got %d", f.backend.uploadCalls)
	}
}

func TestSetBudget_UpdatesViewWithoutReload(t *testing.T) {
	f := loaded(t)
	before := f.backend.calls()

	if err := f.dashboard.SetBudget(context.Background(), decimal.NewFromInt(900)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if f.backend.calls() != before {
		t.Errorf("expected no reload, got %d requests", f.backend.calls()-before)
	}
	st := f.dashboard.State()
	if !st.Snapshot.MonthlyBudget.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected budget 900, got %s", st.Snapshot.MonthlyBudget)
	}
	if st.View.SpendPercentage.String() != "50" {
		t.Errorf("expected 450/900 = 50%%, got %s", st.View.SpendPercentage)
	}
	if st.Phase != service.PhaseReady {
		t.Errorf("expected phase to stay ready, got %s", st.Phase)
	}
}

func TestSetBudget_SupersedesInFlightLoad(t *testing.T) {
	f := loaded(t)
	started := make(chan struct{})
	release := make(chan struct{})
	f.backend.mu.Lock()
	f.backend.getHook = func(_ context.Context, month domain.Month) (domain.DashboardSnapshot, bool, error) {
		close(started)
		<-release
		// Still carries the budget from before the write.
		return snapshotFor(month.String(), true, false), true, nil
	}
	f.backend.mu.Unlock()

	refresh := make(chan error, 1)
	go func() { refresh <- f.dashboard.Refresh(context.Background()) }()
	<-started

	if err := f.dashboard.SetBudget(context.Background(), decimal.NewFromInt(3000)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	close(release)

	select {
	case err := <-refresh:
		if !errors.Is(err, service.ErrSuperseded) {
			t.Errorf("expected ErrSuperseded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never returned")
	}

	f.backend.mu.Lock()
	f.backend.getHook = nil
	f.backend.mu.Unlock()

	st := f.dashboard.State()
	if !st.Snapshot.MonthlyBudget.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected budget 3000 to survive the refresh, got %s", st.Snapshot.MonthlyBudget)
	}
	if st.Phase != service.PhaseReady {
		t.Errorf("expected phase ready, got %s", st.Phase)
	}

	before := f.backend.calls()
	if err := f.dashboard.Load(context.Background(), mustMonth("2024-05")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if f.backend.calls() != before+1 {
		t.Error("expected the stale snapshot not to be served from the cache")
	}
}

func TestSetBudget_RejectsNonPositive(t *testing.T) {
	f := loaded(t)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		if err := f.dashboard.SetBudget(context.Background(), amount); err == nil {
			t.Errorf("expected error for %s", amount)
		}
	}
	if f.backend.budgetCalls != 0 {
		t.Errorf("expected no request, got %d", f.backend.budgetCalls)
	}
}

func TestAddTransaction(t *testing.T) {
	f := loaded(t)

	_, err := f.dashboard.AddTransaction(context.Background(), domain.NewTransaction{MerchantName: " "})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(f.backend.created) != 0 {
		t.Fatal("expected nothing sent for invalid input")
	}

	before := f.backend.calls()
	tx, err := f.dashboard.AddTransaction(context.Background(), domain.NewTransaction{
		MerchantName: "Cafe",
		Amount:       decimal.RequireFromString("4.50"),
		Date:         domain.NewDate(2024, time.May, 3),
		Category:     domain.CategoryDiningOut,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.ID != 99 {
		t.Errorf("expected created id 99, got %d", tx.ID)
	}
	if got := lastNotice(t, f.notices).Message; got != "Transaction for 'Cafe' added." {
		t.Errorf("unexpected notice %q", got)
	}
	if f.backend.calls() != before+1 {
		t.Error("expected a reload after add")
	}
}

func TestDispatch(t *testing.T) {
	f := loaded(t)

	if err := f.dashboard.Dispatch(context.Background(), service.TableAction{
		Kind: service.ActionEditCategory, TransactionID: 2, Category: domain.CategoryRent,
	}, nil); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if f.backend.updateCalls != 1 {
		t.Errorf("expected PATCH, got %d", f.backend.updateCalls)
	}

	err := f.dashboard.Dispatch(context.Background(), service.TableAction{Kind: service.ActionDelete, TransactionID: 2}, nil)
	var cr *domain.ErrConfirmationRequired
	if !errors.As(err, &cr) {
		t.Errorf("expected confirmation required, got %v", err)
	}

	if err := f.dashboard.Dispatch(context.Background(), service.TableAction{Kind: "archive"}, nil); err == nil {
		t.Error("expected error for unknown action")
	}
}
