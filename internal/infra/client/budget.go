package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// SetBudget writes the monthly budget.
func (c *BackendClient) SetBudget(ctx context.Context, amount decimal.Decimal) (*domain.BudgetResponse, error) {
	body, err := json.Marshal(domain.BudgetRequest{Amount: json.Number(amount.String())})
	if err != nil {
		return nil, fmt.Errorf("encoding budget: %w", err)
	}

	var res domain.BudgetResponse
	if err := c.do(ctx, request{
		op:          "SetBudget",
		method:      http.MethodPost,
		path:        "/budget/",
		body:        body,
		contentType: "application/json",
		resource:    "budget",
	}, &res); err != nil {
		return nil, err
	}
	c.bumpGeneration()
	if res.Amount.IsZero() {
		res.Amount = amount
	}
	return &res, nil
}
