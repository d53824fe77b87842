package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// BudgetRequest is the POST /budget/ payload.
type BudgetRequest struct {
	Amount json.Number `json:"amount"`
}

// BudgetResponse is the POST /budget/ reply.
type BudgetResponse struct {
	ID     int64           `json:"id,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// ValidateBudget rejects anything that is not strictly positive.
func ValidateBudget(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ErrValidation{Field: "amount", Message: "please enter a valid, positive number for your budget"}
	}
	return nil
}

// ParseAmount parses free-form user input into a strictly positive amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "£")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ErrValidation{Field: "amount", Message: "please enter a valid, positive number"}
	}
	if !d.IsPositive() {
		return decimal.Zero, &ErrValidation{Field: "amount", Message: "amount must be positive"}
	}
	return d, nil
}
