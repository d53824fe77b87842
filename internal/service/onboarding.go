package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/port"

	"go.uber.org/zap"
)

// CSVUploader is satisfied by Dashboard.
type CSVUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*domain.UploadResult, error)
}

// Onboarding gates first use: landing (name) -> upload (first CSV) -> complete.
type Onboarding struct {
	store    port.OnboardingStore
	uploader CSVUploader
	logger   *zap.Logger
}

// NewOnboarding creates the onboarding gate.
func NewOnboarding(store port.OnboardingStore, uploader CSVUploader, logger *zap.Logger) *Onboarding {
	return &Onboarding{store: store, uploader: uploader, logger: logger}
}

// Status returns the persisted record.
func (o *Onboarding) Status(ctx context.Context) (domain.OnboardingRecord, error) {
	rec, err := o.store.Load(ctx)
	if err != nil {
		return domain.OnboardingRecord{}, fmt.Errorf("loading onboarding: %w", err)
	}
	if rec.Stage == "" {
		rec.Stage = domain.OnboardingLanding
	}
	return rec, nil
}

// SubmitName leaves the landing stage. Once onboarding is complete it only
// updates the display name.
func (o *Onboarding) SubmitName(ctx context.Context, name string) (domain.OnboardingRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.OnboardingRecord{}, &domain.ErrValidation{Field: "name", Message: "please enter your name"}
	}

	rec, err := o.Status(ctx)
	if err != nil {
		return domain.OnboardingRecord{}, err
	}
	rec.DisplayName = name
	if rec.Stage == domain.OnboardingLanding {
		rec.Stage = domain.OnboardingUpload
	}
	if err := o.store.Save(ctx, rec); err != nil {
		return domain.OnboardingRecord{}, fmt.Errorf("saving onboarding: %w", err)
	}
	o.logger.Info("onboarding name submitted", zap.String("stage", string(rec.Stage)))
	return rec, nil
}

// Upload performs the first CSV import. Onboarding completes only when the
// import succeeds.
func (o *Onboarding) Upload(ctx context.Context, filename string, r io.Reader) (*domain.UploadResult, domain.OnboardingRecord, error) {
	rec, err := o.Status(ctx)
	if err != nil {
		return nil, domain.OnboardingRecord{}, err
	}
	if rec.Stage == domain.OnboardingLanding {
		return nil, rec, &domain.ErrValidation{Field: "name", Message: "please enter your name first"}
	}

	res, err := o.uploader.Upload(ctx, filename, r)
	if err != nil {
		return nil, rec, err
	}

	if !rec.Complete() {
		rec.Stage = domain.OnboardingComplete
		if err := o.store.Save(ctx, rec); err != nil {
			return res, rec, fmt.Errorf("saving onboarding: %w", err)
		}
		o.logger.Info("onboarding complete", zap.Int("imported", res.ImportedCount))
	}
	return res, rec, nil
}
