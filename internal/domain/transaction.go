package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ============================================================
// Transactions
// ============================================================

// Transaction is a single server-owned spending record.
// Amount is signed; the backend stores expenses as positive values.
type Transaction struct {
	ID            int64           `json:"id"`
	Date          Date            `json:"date"`
	MerchantName  string          `json:"merchant_name"`
	Amount        decimal.Decimal `json:"amount"`
	Category      Category        `json:"category"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

// NewTransaction is the input of a manually added transaction.
type NewTransaction struct {
	MerchantName string          `json:"merchant_name"`
	Amount       decimal.Decimal `json:"amount"`
	Date         Date            `json:"date"`
	Category     Category        `json:"category"`
}

// Validate enforces the same rules as the add-transaction form.
func (n NewTransaction) Validate() error {
	if strings.TrimSpace(n.MerchantName) == "" {
		return &ErrValidation{Field: "merchant_name", Message: "merchant name is required"}
	}
	if !n.Amount.IsPositive() {
		return &ErrValidation{Field: "amount", Message: "amount must be positive"}
	}
	if n.Date.IsZero() {
		return &ErrValidation{Field: "date", Message: "please select a date"}
	}
	if _, err := ParseCategory(string(n.Category)); err != nil {
		return err
	}
	return nil
}

// CreateTransactionRequest is the POST /transactions/ payload sent to the backend.
type CreateTransactionRequest struct {
	MerchantName string      `json:"merchant_name"`
	Amount       json.Number `json:"amount"`
	Date         string      `json:"date"`
	Category     Category    `json:"category"`
}

// ToRequest converts validated input into the backend wire shape.
func (n NewTransaction) ToRequest() CreateTransactionRequest {
	return CreateTransactionRequest{
		MerchantName: strings.TrimSpace(n.MerchantName),
		Amount:       json.Number(n.Amount.String()),
		Date:         n.Date.String(),
		Category:     n.Category,
	}
}

// UpdateCategoryRequest is the PATCH /transactions/{id}/ payload.
type UpdateCategoryRequest struct {
	Category Category `json:"category"`
}
