package commands_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boddenberg/budgetwise-bfa-go/internal/commands"
)

// backend fakes the BudgetWise REST API with one month of data.
type backend struct {
	mu       sync.Mutex
	deletes  int
	budgets  int
	uploads  int
	hasPrev  bool
	requests []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r.Method+" "+r.URL.RequestURI())
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/dashboard-data/":
		json.NewEncoder(w).Encode(map[string]any{
			"totalSpend":           "450.00",
			"monthlyBudget":        "1500.00",
			"avgDailySpend":        "15.00",
			"selectedMonth":        "2024-03",
			"hasPreviousMonthData": b.hasPrev,
			"hasNextMonthData":     false,
			"transactions": []map[string]any{
				{"id": 7, "date": "2024-03-04", "merchant_name": "Corner Grocer", "amount": "42.50", "category": "Groceries"},
			},
		})
	case r.Method == http.MethodPost && r.URL.Path == "/upload/":
		b.uploads++
		json.NewEncoder(w).Encode(map[string]any{"imported_count": 7, "skipped_rows": []map[string]any{{"row": 2}, {"row": 5}, {"row": 9}}})
	case r.Method == http.MethodDelete && r.URL.Path == "/transactions/7/":
		b.deletes++
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && r.URL.Path == "/budget/":
		b.budgets++
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "amount": 2000})
	case r.Method == http.MethodPost && r.URL.Path == "/chat/":
		json.NewEncoder(w).Encode(map[string]string{"response": "Mostly groceries."})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *backend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *backend) count(field *int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *field
}

// setup points the CLI at a fake backend and a fresh state database.
func setup(t *testing.T) (*backend, string) {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("BACKEND_API_URL", srv.URL)
	t.Setenv("STATE_DB_PATH", filepath.Join(dir, "state.db"))
	t.Setenv("MAX_RETRIES", "0")

	csv := filepath.Join(dir, "march.csv")
	require.NoError(t, os.WriteFile(csv, []byte("date,merchant,amount\n2024-03-04,Corner Grocer,42.50\n"), 0o644))
	return b, csv
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func onboard(t *testing.T, csv string) {
	t.Helper()
	_, err := run(t, "", "onboard", "--name", "Sam", csv)
	require.NoError(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")
}

func TestOnboard_WithFlags(t *testing.T) {
	b, csv := setup(t)

	out, err := run(t, "", "onboard", "--name", "Sam", csv)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported: 7, Skipped: 3")
	assert.Contains(t, out, "You're all set, Sam")
	assert.Equal(t, 1, b.count(&b.uploads))

	out, err = run(t, "", "onboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome back, Sam")
	assert.Equal(t, 1, b.count(&b.uploads), "completed onboarding must not upload again")
}

func TestOnboard_Prompts(t *testing.T) {
	_, csv := setup(t)

	out, err := run(t, "Sam\n"+csv+"\n", "onboard")
	require.NoError(t, err)
	assert.Contains(t, out, "What should we call you?")
	assert.Contains(t, out, "Hi Sam!")
	assert.Contains(t, out, "You're all set, Sam")
}

func TestOnboard_FailedUploadStaysIncomplete(t *testing.T) {
	_, _ = setup(t)

	_, err := run(t, "", "onboard", "--name", "Sam", "missing.csv")
	require.Error(t, err)

	_, err = run(t, "", "dashboard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "onboarding not finished")
}

func TestDashboard_RequiresOnboarding(t *testing.T) {
	b, _ := setup(t)

	_, err := run(t, "", "dashboard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "onboarding not finished")
	assert.Empty(t, b.seen())
}

func TestDashboard_Renders(t *testing.T) {
	_, csv := setup(t)
	onboard(t, csv)

	out, err := run(t, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "Corner Grocer")
	assert.Contains(t, out, "£450.00")
}

func TestDashboard_PrevWithoutData(t *testing.T) {
	b, csv := setup(t)
	onboard(t, csv)

	out, err := run(t, "", "dashboard", "--prev")
	require.NoError(t, err)
	assert.Contains(t, out, "No previous month with data.")
	assert.Contains(t, out, "March 2024")

	for _, r := range b.seen() {
		assert.NotContains(t, r, "month=2024-02")
	}
}

func TestDashboard_PrevAndNextConflict(t *testing.T) {
	_, err := run(t, "", "dashboard", "--prev", "--next")
	require.Error(t, err)
}

func TestDelete_DeclinedSendsNothing(t *testing.T) {
	b, csv := setup(t)
	onboard(t, csv)

	out, err := run(t, "n\n", "delete", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Corner Grocer")
	assert.Contains(t, out, "Nothing deleted.")
	assert.Zero(t, b.count(&b.deletes))
}

func TestDelete_Confirmed(t *testing.T) {
	b, csv := setup(t)
	onboard(t, csv)

	out, err := run(t, "y\n", "delete", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Transaction deleted.")
	assert.Equal(t, 1, b.count(&b.deletes))

	_, err = run(t, "", "delete", "7", "--yes")
	require.NoError(t, err)
	assert.Equal(t, 2, b.count(&b.deletes))
}

func TestDelete_BadID(t *testing.T) {
	_, err := run(t, "", "delete", "seven")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive integer")
}

func TestBudget(t *testing.T) {
	b, csv := setup(t)
	onboard(t, csv)

	out, err := run(t, "", "budget", "2000")
	require.NoError(t, err)
	assert.Contains(t, out, "Monthly budget set to £2000.00.")
	assert.Equal(t, 1, b.count(&b.budgets))
}

func TestBudget_RejectsNonPositive(t *testing.T) {
	b, _ := setup(t)

	_, err := run(t, "", "budget", "-5")
	require.Error(t, err)
	assert.Zero(t, b.count(&b.budgets))
}

func TestChat(t *testing.T) {
	_, csv := setup(t)
	onboard(t, csv)

	out, err := run(t, "", "chat", "where", "did", "it", "go?")
	require.NoError(t, err)
	assert.Contains(t, out, "Mostly groceries.")
}

func TestAdd_ValidatesBeforeCalling(t *testing.T) {
	b, _ := setup(t)

	_, err := run(t, "", "add", "--merchant", "Cafe", "--amount", "abc")
	require.Error(t, err)
	assert.Empty(t, b.seen())
}
