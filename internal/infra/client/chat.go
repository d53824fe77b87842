package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
)

// Ask sends a question to the chat assistant and returns its markdown answer.
func (c *BackendClient) Ask(ctx context.Context, question string) (*domain.ChatResponse, error) {
	body, err := json.Marshal(domain.ChatRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	var res domain.ChatResponse
	if err := c.do(ctx, request{
		op:          "Ask",
		method:      http.MethodPost,
		path:        "/chat/",
		body:        body,
		contentType: "application/json",
		resource:    "chat",
	}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
