package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/port"
	"github.com/boddenberg/budgetwise-bfa-go/internal/viewmodel"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// UpdateCategory re-categorizes a transaction optimistically: the local copy
// changes before the PATCH is sent. If the PATCH fails the transaction is
// reverted and an error notice is emitted.
func (d *Dashboard) UpdateCategory(ctx context.Context, id int64, category domain.Category) error {
	ctx, span := tracer.Start(ctx, "Dashboard.UpdateCategory")
	defer span.End()
	span.SetAttributes(attribute.Int64("transaction.id", id))

	category, err := domain.ParseCategory(string(category))
	if err != nil {
		return err
	}

	d.mu.Lock()
	i := d.snapshot.FindTransaction(id)
	if i < 0 {
		d.mu.Unlock()
		return &domain.ErrNotFound{Resource: "transaction", ID: fmt.Sprint(id)}
	}
	previous := d.snapshot.Transactions[i].Category
	if previous == category {
		d.mu.Unlock()
		return nil
	}
	d.setCategory(i, category)
	d.mu.Unlock()

	if _, err := d.backend.UpdateCategory(ctx, id, category); err != nil {
		d.mu.Lock()
		// Only undo our own write; a reload may have replaced the row meanwhile.
		if j := d.snapshot.FindTransaction(id); j >= 0 && d.snapshot.Transactions[j].Category == category {
			d.setCategory(j, previous)
		}
		d.mu.Unlock()

		d.metrics.IncrOptimisticRevert()
		d.logger.Warn("category update failed, reverted",
			zap.Int64("transaction_id", id),
			zap.String("category", string(category)),
			zap.Error(err),
		)
		d.notices.Notify(domain.NoticeError, "Failed to update category. "+detailOr(err, "Please try again."))
		return fmt.Errorf("updating category: %w", err)
	}

	d.notices.Notify(domain.NoticeSuccess, fmt.Sprintf("Category changed to %s.", category))
	d.reloadAfterWrite(ctx)
	return nil
}

// setCategory copies the transaction slice before writing so snapshots
// already handed out stay untouched. Caller holds d.mu.
func (d *Dashboard) setCategory(i int, c domain.Category) {
	txs := append([]domain.Transaction(nil), d.snapshot.Transactions...)
	txs[i].Category = c
	d.snapshot.Transactions = txs
}

// Delete removes a transaction after the confirmer agrees. Nothing is sent
// unless confirmation is given. Success triggers a full reload.
func (d *Dashboard) Delete(ctx context.Context, id int64, confirmer port.Confirmer) error {
	ctx, span := tracer.Start(ctx, "Dashboard.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("transaction.id", id))

	action := &domain.ErrConfirmationRequired{Action: fmt.Sprintf("delete transaction %d", id)}
	if confirmer == nil {
		return action
	}

	prompt := fmt.Sprintf("Delete transaction %d?", id)
	d.mu.Lock()
	if i := d.snapshot.FindTransaction(id); i >= 0 {
		t := d.snapshot.Transactions[i]
		prompt = fmt.Sprintf("Delete the %s transaction from '%s' on %s?", t.Amount.StringFixed(2), t.MerchantName, t.Date)
	}
	d.mu.Unlock()

	ok, err := confirmer.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Errorf("confirming delete: %w", err)
	}
	if !ok {
		return action
	}

	if err := d.backend.DeleteTransaction(ctx, id); err != nil {
		d.logger.Error("delete failed", zap.Int64("transaction_id", id), zap.Error(err))
		d.notices.Notify(domain.NoticeError, "Failed to delete transaction. "+detailOr(err, "Please try again."))
		return fmt.Errorf("deleting transaction: %w", err)
	}

	d.notices.Notify(domain.NoticeSuccess, "Transaction deleted.")
	d.reloadAfterWrite(ctx)
	return nil
}

// AddTransaction validates and creates a manual transaction, then reloads.
func (d *Dashboard) AddTransaction(ctx context.Context, in domain.NewTransaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Dashboard.AddTransaction")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx, err := d.backend.CreateTransaction(ctx, in)
	if err != nil {
		d.logger.Error("create transaction failed", zap.Error(err))
		d.notices.Notify(domain.NoticeError, "Failed to add transaction. "+detailOr(err, "Please try again."))
		return nil, fmt.Errorf("adding transaction: %w", err)
	}

	d.notices.Notify(domain.NoticeSuccess, fmt.Sprintf("Transaction for '%s' added.", strings.TrimSpace(in.MerchantName)))
	d.reloadAfterWrite(ctx)
	return tx, nil
}

// Upload sends a CSV export, reports imported and skipped counts, and reloads.
func (d *Dashboard) Upload(ctx context.Context, filename string, r io.Reader) (*domain.UploadResult, error) {
	ctx, span := tracer.Start(ctx, "Dashboard.Upload")
	defer span.End()
	span.SetAttributes(attribute.String("upload.filename", filename))

	if err := ValidateUpload(filename, r); err != nil {
		d.notices.Notify(domain.NoticeError, detailOr(err, err.Error()))
		return nil, err
	}

	res, err := d.backend.UploadCSV(ctx, filepath.Base(filename), r)
	if err != nil {
		d.logger.Error("upload failed", zap.String("filename", filename), zap.Error(err))
		d.notices.Notify(domain.NoticeError, "Upload failed. "+detailOr(err, "Please try again."))
		return nil, fmt.Errorf("uploading %s: %w", filename, err)
	}

	level := domain.NoticeSuccess
	if res.SkippedCount() > 0 {
		level = domain.NoticeWarning
	}
	d.notices.Notify(level, res.Summary())
	d.logger.Info("upload processed",
		zap.String("filename", filename),
		zap.Int("imported", res.ImportedCount),
		zap.Int("skipped", res.SkippedCount()),
	)

	d.reloadAfterWrite(ctx)
	return res, nil
}

// ValidateUpload checks there is a CSV file to send.
func ValidateUpload(filename string, r io.Reader) error {
	if r == nil || strings.TrimSpace(filename) == "" {
		return &domain.ErrValidation{Field: "file", Message: "No file selected!"}
	}
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return &domain.ErrValidation{Field: "file", Message: "Invalid file type. Please upload a CSV."}
	}
	return nil
}

// SetBudget writes the monthly budget. Only the budget field of the current
// snapshot changes; there is no reload.
func (d *Dashboard) SetBudget(ctx context.Context, amount decimal.Decimal) error {
	ctx, span := tracer.Start(ctx, "Dashboard.SetBudget")
	defer span.End()

	if err := domain.ValidateBudget(amount); err != nil {
		return err
	}

	res, err := d.backend.SetBudget(ctx, amount)
	if err != nil {
		d.logger.Error("set budget failed", zap.Error(err))
		d.notices.Notify(domain.NoticeError, "Failed to set budget. Please try again.")
		return fmt.Errorf("setting budget: %w", err)
	}

	d.mu.Lock()
	// A load started before the write would bring back the old budget.
	d.supersede()
	d.snapshot.MonthlyBudget = res.Amount
	d.view = viewmodel.Derive(d.snapshot)
	d.mu.Unlock()

	// Cached months still carry the old budget.
	d.cache.Purge()
	d.notices.Notify(domain.NoticeSuccess, fmt.Sprintf("Monthly budget set to £%s.", res.Amount.StringFixed(2)))
	return nil
}

// TableActionKind is what a row action in the transactions table asks for.
type TableActionKind string

const (
	ActionEditCategory TableActionKind = "edit_category"
	ActionDelete       TableActionKind = "delete"
)

// TableAction is a typed event raised by the transactions table.
type TableAction struct {
	Kind          TableActionKind `json:"kind"`
	TransactionID int64           `json:"transactionId"`
	Category      domain.Category `json:"category,omitempty"`
}

// Dispatch routes a table action to the matching operation.
func (d *Dashboard) Dispatch(ctx context.Context, a TableAction, confirmer port.Confirmer) error {
	switch a.Kind {
	case ActionEditCategory:
		return d.UpdateCategory(ctx, a.TransactionID, a.Category)
	case ActionDelete:
		return d.Delete(ctx, a.TransactionID, confirmer)
	}
	return &domain.ErrValidation{Field: "kind", Message: fmt.Sprintf("unknown table action %q", a.Kind)}
}

// detailOr returns the backend's validation message if there is one.
func detailOr(err error, fallback string) string {
	var ve *domain.ErrValidation
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	return fallback
}
