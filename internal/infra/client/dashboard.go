package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// GetDashboard fetches and normalizes the snapshot for month.
// A zero month asks the backend for the most recent month with data.
// Concurrent calls for the same month share one request.
func (c *BackendClient) GetDashboard(ctx context.Context, month domain.Month) (domain.DashboardSnapshot, error) {
	ctx, span := tracer.Start(ctx, "BackendClient.GetDashboard")
	defer span.End()

	label := "latest"
	if !month.IsZero() {
		label = month.String()
	}
	span.SetAttributes(attribute.String("dashboard.month", label))
	key := fmt.Sprintf("%d:%s", c.generation.Load(), label)

	// The shared flight must outlive any single caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		var query url.Values
		if !month.IsZero() {
			query = url.Values{"month": {month.String()}}
		}

		var payload domain.DashboardPayload
		err := c.do(flightCtx, request{
			op:         "GetDashboard",
			method:     "GET",
			path:       "/dashboard-data/",
			query:      query,
			resource:   "dashboard",
			resourceID: label,
		}, &payload)
		if err != nil {
			return nil, err
		}
		return domain.NormalizeSnapshot(payload, month), nil
	})

	select {
	case <-ctx.Done():
		return domain.DashboardSnapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.DashboardSnapshot{}, res.Err
		}
		span.SetAttributes(attribute.Bool("dashboard.shared", res.Shared))
		return res.Val.(domain.DashboardSnapshot).Clone(), nil
	}
}
