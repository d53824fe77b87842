// Package memory holds in-process adapters for the ports.
package memory

import (
	"context"
	"sync"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
)

// OnboardingStore keeps the onboarding record in memory. Used in tests and
// when no state file is configured.
type OnboardingStore struct {
	mu  sync.RWMutex
	rec domain.OnboardingRecord
}

// NewOnboardingStore starts at the landing stage.
func NewOnboardingStore() *OnboardingStore {
	return &OnboardingStore{rec: domain.OnboardingRecord{Stage: domain.OnboardingLanding}}
}

func (s *OnboardingStore) Load(_ context.Context) (domain.OnboardingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec, nil
}

func (s *OnboardingStore) Save(_ context.Context, rec domain.OnboardingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	return nil
}
