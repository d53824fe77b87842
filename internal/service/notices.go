package service

import (
	"sync"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultNoticeCapacity bounds the notice feed.
const DefaultNoticeCapacity = 50

// NoticeFeed is a bounded, in-memory list of user-visible notices.
type NoticeFeed struct {
	mu       sync.Mutex
	items    []domain.Notice
	capacity int
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewNoticeFeed keeps the most recent capacity notices.
func NewNoticeFeed(capacity int, metrics *observability.Metrics, logger *zap.Logger) *NoticeFeed {
	if capacity < 1 {
		capacity = DefaultNoticeCapacity
	}
	return &NoticeFeed{capacity: capacity, metrics: metrics, logger: logger}
}

// Notify records and logs a notice.
func (f *NoticeFeed) Notify(level domain.NoticeLevel, message string) domain.Notice {
	n := domain.Notice{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	f.mu.Lock()
	f.items = append(f.items, n)
	if over := len(f.items) - f.capacity; over > 0 {
		f.items = append([]domain.Notice(nil), f.items[over:]...)
	}
	f.mu.Unlock()

	f.metrics.IncrNotice(level)
	fields := []zap.Field{zap.String("notice_id", n.ID), zap.String("level", string(level))}
	switch level {
	case domain.NoticeError:
		f.logger.Error(message, fields...)
	case domain.NoticeWarning:
		f.logger.Warn(message, fields...)
	default:
		f.logger.Info(message, fields...)
	}
	return n
}

// List returns the notices oldest first.
func (f *NoticeFeed) List() []domain.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Notice{}, f.items...)
}

// Drain returns every notice and empties the feed.
func (f *NoticeFeed) Drain() []domain.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.items
	f.items = nil
	if out == nil {
		out = []domain.Notice{}
	}
	return out
}
