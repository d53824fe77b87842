package observability_test

import (
	"testing"

	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
)

func TestGetClientSnapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrLoad(observability.LoadSuccess)
	m.IncrLoad(observability.LoadSuccess)
	m.IncrLoad(observability.LoadSuccess)
	m.IncrLoad(observability.LoadError)
	m.IncrCacheHit("snapshot")
	m.IncrCacheMiss("snapshot")
	m.IncrOptimisticRevert()

	snap := m.GetClientSnapshot()

	if snap.TotalLoads != 4 {
		t.Errorf("expected 4 loads, got %d", snap.TotalLoads)
	}
	if snap.FailedLoads != 1 {
		t.Errorf("expected 1 failed load, got %d", snap.FailedLoads)
	}
	if snap.ErrorRate != 0.25 {
		t.Errorf("expected error rate 0.25, got %f", snap.ErrorRate)
	}
	if snap.CacheHitRate != 0.5 {
		t.Errorf("expected cache hit rate 0.5, got %f", snap.CacheHitRate)
	}
	if snap.OptimisticReverts != 1 {
		t.Errorf("expected 1 revert, got %d", snap.OptimisticReverts)
	}
}

func TestNewMetrics_Twice(t *testing.T) {
	// A private registry per instance must not panic on re-registration.
	_ = observability.NewMetrics()
	_ = observability.NewMetrics()
}
