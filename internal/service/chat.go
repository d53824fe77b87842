package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
	"github.com/boddenberg/budgetwise-bfa-go/internal/port"

	"go.uber.org/zap"
)

// Chat keeps the assistant transcript and forwards questions to the backend.
type Chat struct {
	asker   port.ChatAsker
	notices port.Notifier
	metrics *observability.Metrics
	logger  *zap.Logger

	mu       sync.RWMutex
	messages []domain.ChatMessage
}

// NewChat starts a transcript with the greeting.
func NewChat(asker port.ChatAsker, notices port.Notifier, metrics *observability.Metrics, logger *zap.Logger) *Chat {
	return &Chat{
		asker:   asker,
		notices: notices,
		metrics: metrics,
		logger:  logger,
		messages: []domain.ChatMessage{{
			Role:      domain.ChatRoleAI,
			Content:   domain.ChatGreeting,
			CreatedAt: time.Now().UTC(),
		}},
	}
}

// Ask appends the question, calls the assistant and appends its answer.
// On failure the question stays in the transcript.
func (c *Chat) Ask(ctx context.Context, question string) (domain.ChatMessage, error) {
	ctx, span := tracer.Start(ctx, "Chat.Ask")
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return domain.ChatMessage{}, &domain.ErrValidation{Field: "question", Message: "question must not be empty"}
	}
	c.append(domain.ChatRoleUser, question)

	start := time.Now()
	resp, err := c.asker.Ask(ctx, question)
	c.metrics.RecordRequestDuration("chat", time.Since(start))
	if err != nil {
		c.logger.Error("chat request failed", zap.Error(err))
		c.notices.Notify(domain.NoticeError, "The assistant is unavailable right now. Please try again.")
		return domain.ChatMessage{}, fmt.Errorf("asking assistant: %w", err)
	}

	return c.append(domain.ChatRoleAI, resp.Response), nil
}

// Messages returns the transcript, oldest first.
func (c *Chat) Messages() []domain.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.ChatMessage{}, c.messages...)
}

func (c *Chat) append(role domain.ChatRole, content string) domain.ChatMessage {
	m := domain.ChatMessage{Role: role, Content: content, CreatedAt: time.Now().UTC()}
	c.mu.Lock()
	c.messages = append(c.messages, m)
	c.mu.Unlock()
	return m
}
