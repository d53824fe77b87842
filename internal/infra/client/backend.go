// Package client talks to the BudgetWise backend REST API.
// Every call goes through the bulkhead, the circuit breaker and retry with
// backoff, and is traced with OpenTelemetry.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/resilience"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

var tracer = otel.Tracer("client")

const serviceName = "budgetwise-backend"

// maxErrorBody bounds how much of an error response is read for the detail message.
const maxErrorBody = 64 << 10

// BackendClient is the single HTTP client for the BudgetWise backend.
// It holds the base URL and the default headers applied to every call.
type BackendClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics

	// dashboard GETs for the same month are coalesced; generation bumps on
	// every write so a read issued after a write never joins an older flight.
	group      singleflight.Group
	generation atomic.Uint64
}

// Option customizes a BackendClient.
type Option func(*BackendClient)

// WithAPIKey sets the X-API-Key default header.
func WithAPIKey(key string) Option {
	return func(c *BackendClient) { c.apiKey = key }
}

// WithMetrics records request durations and external errors.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *BackendClient) { c.metrics = m }
}

// NewBackendClient creates a new BackendClient.
func NewBackendClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, opts ...Option) *BackendClient {
	c := &BackendClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StatusError is a non-2xx backend response that is not mapped to a domain error.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Detail)
}

// IsClientError reports whether err was caused by the caller rather than the backend.
// The circuit breaker counts these as successes.
func IsClientError(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var ve *domain.ErrValidation
	if errors.As(err, &ve) {
		return true
	}
	var nf *domain.ErrNotFound
	if errors.As(err, &nf) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code < 500
	}
	return false
}

// request describes one backend call.
type request struct {
	op          string // span and metric name
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	resource    string // for ErrNotFound
	resourceID  string
}

func (r request) idempotent() bool {
	switch r.method {
	case http.MethodGet, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// do runs r through bulkhead, breaker, retry and tracing and decodes a 2xx body into out.
func (c *BackendClient) do(ctx context.Context, r request, out any) error {
	ctx, span := tracer.Start(ctx, "BackendClient."+r.op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", r.method),
		attribute.String("backend.path", r.path),
	)

	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordRequestDuration("backend."+r.op, time.Since(start))
		}
	}()

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return c.mapError(r.op, err)
	}
	defer c.bulkhead.Release()

	cfg := c.cfg
	if !r.idempotent() {
		cfg = cfg.NoRetry()
	}
	requestID := uuid.NewString()

	_, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, cfg, func() error {
			return c.attempt(ctx, r, requestID, out)
		})
		return nil, innerErr
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return c.mapError(r.op, err)
	}
	return nil
}

func (c *BackendClient) attempt(ctx context.Context, r request, requestID string, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return resilience.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return resilience.Permanent(ctx.Err())
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resilience.Permanent(fmt.Errorf("decoding %s response: %w", r.op, err))
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := parseDetail(raw)

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return resilience.Permanent(&domain.ErrValidation{Message: detail})
	case resp.StatusCode == http.StatusNotFound:
		return resilience.Permanent(&domain.ErrNotFound{Resource: r.resource, ID: r.resourceID})
	case resp.StatusCode < 500:
		return resilience.Permanent(&StatusError{Code: resp.StatusCode, Detail: detail})
	default:
		return &StatusError{Code: resp.StatusCode, Detail: detail}
	}
}

// mapError turns a transport-level failure into the domain error vocabulary.
func (c *BackendClient) mapError(op string, err error) error {
	var ve *domain.ErrValidation
	var nf *domain.ErrNotFound
	switch {
	case errors.As(err, &ve), errors.As(err, &nf):
		return err
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: op}
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: serviceName}
	}
	if c.metrics != nil {
		c.metrics.IncrExternalError(serviceName)
	}
	return &domain.ErrExternalService{Service: serviceName, Err: err}
}

// parseDetail extracts the FastAPI {"detail": ...} message.
// detail is either a string or a list of {loc, msg, type} objects.
func parseDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return strings.TrimSpace(string(raw))
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if len(it.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
			} else {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(body.Detail)
}

func (c *BackendClient) bumpGeneration() {
	c.generation.Add(1)
}

// Ping checks that the backend answers at all. Used by /healthz.
func (c *BackendClient) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/dashboard-data/", nil)
	if err != nil {
		return 0, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Since(start), err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 500 {
		return time.Since(start), &StatusError{Code: resp.StatusCode}
	}
	return time.Since(start), nil
}
