// Package sqlite persists the onboarding stage in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// OnboardingStore is a single-row table holding the onboarding record.
type OnboardingStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOnboardingStore opens (creating if needed) the database at dbPath and migrates it.
func NewOnboardingStore(dbPath string, logger *zap.Logger) (*OnboardingStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &OnboardingStore{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *OnboardingStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns the saved record, or a landing record when nothing was saved yet.
func (s *OnboardingStore) Load(ctx context.Context) (domain.OnboardingRecord, error) {
	var rec domain.OnboardingRecord
	var stage string
	err := s.db.QueryRowContext(ctx,
		`SELECT stage, display_name FROM onboarding WHERE id = 1`,
	).Scan(&stage, &rec.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.OnboardingRecord{Stage: domain.OnboardingLanding}, nil
	}
	if err != nil {
		return domain.OnboardingRecord{}, fmt.Errorf("load onboarding: %w", err)
	}
	rec.Stage = domain.OnboardingStage(stage)
	return rec, nil
}

// Save upserts the record.
func (s *OnboardingStore) Save(ctx context.Context, rec domain.OnboardingRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO onboarding (id, stage, display_name, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stage = excluded.stage,
			display_name = excluded.display_name,
			updated_at = excluded.updated_at`,
		string(rec.Stage), rec.DisplayName, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save onboarding: %w", err)
	}
	s.logger.Debug("onboarding saved", zap.String("stage", string(rec.Stage)))
	return nil
}
