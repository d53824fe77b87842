package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/budgetwise-bfa-go/internal/app"
	"github.com/boddenberg/budgetwise-bfa-go/internal/config"
	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
)

func TestNew_MemoryState(t *testing.T) {
	cfg := config.Load()
	cfg.StateDBPath = app.MemoryStatePath

	a, err := app.New(cfg, observability.NewMetrics(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	rec, err := a.Onboarding.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OnboardingLanding, rec.Stage)
	assert.False(t, a.Dashboard.Loaded())
	assert.Len(t, a.Chat.Messages(), 1)
}

func TestNew_SQLiteStatePersists(t *testing.T) {
	cfg := config.Load()
	cfg.StateDBPath = filepath.Join(t.TempDir(), "state.db")

	a, err := app.New(cfg, observability.NewMetrics(), zap.NewNop())
	require.NoError(t, err)
	_, err = a.Onboarding.SubmitName(context.Background(), "Sam")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	reopened, err := app.New(cfg, observability.NewMetrics(), zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	rec, err := reopened.Onboarding.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OnboardingUpload, rec.Stage)
	assert.Equal(t, "Sam", rec.DisplayName)
}
