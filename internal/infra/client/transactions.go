package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
)

// CreateTransaction posts a manually entered transaction.
func (c *BackendClient) CreateTransaction(ctx context.Context, in domain.NewTransaction) (*domain.Transaction, error) {
	body, err := json.Marshal(in.ToRequest())
	if err != nil {
		return nil, fmt.Errorf("encoding transaction: %w", err)
	}

	var tx domain.Transaction
	if err := c.do(ctx, request{
		op:          "CreateTransaction",
		method:      http.MethodPost,
		path:        "/transactions/",
		body:        body,
		contentType: "application/json",
		resource:    "transactions",
	}, &tx); err != nil {
		return nil, err
	}
	c.bumpGeneration()
	tx.Category = domain.NormalizeCategory(string(tx.Category))
	return &tx, nil
}

// UpdateCategory changes the category of one transaction.
func (c *BackendClient) UpdateCategory(ctx context.Context, id int64, category domain.Category) (*domain.Transaction, error) {
	body, err := json.Marshal(domain.UpdateCategoryRequest{Category: category})
	if err != nil {
		return nil, fmt.Errorf("encoding category update: %w", err)
	}

	idStr := strconv.FormatInt(id, 10)
	var tx domain.Transaction
	if err := c.do(ctx, request{
		op:          "UpdateCategory",
		method:      http.MethodPatch,
		path:        "/transactions/" + idStr + "/",
		body:        body,
		contentType: "application/json",
		resource:    "transaction",
		resourceID:  idStr,
	}, &tx); err != nil {
		return nil, err
	}
	c.bumpGeneration()
	tx.Category = domain.NormalizeCategory(string(tx.Category))
	return &tx, nil
}

// DeleteTransaction removes one transaction. The backend answers 204.
func (c *BackendClient) DeleteTransaction(ctx context.Context, id int64) error {
	idStr := strconv.FormatInt(id, 10)
	if err := c.do(ctx, request{
		op:         "DeleteTransaction",
		method:     http.MethodDelete,
		path:       "/transactions/" + idStr + "/",
		resource:   "transaction",
		resourceID: idStr,
	}, nil); err != nil {
		return err
	}
	c.bumpGeneration()
	return nil
}
