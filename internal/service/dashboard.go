package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/observability"
	"github.com/boddenberg/budgetwise-bfa-go/internal/port"
	"github.com/boddenberg/budgetwise-bfa-go/internal/viewmodel"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/dashboard")

// ErrSuperseded is returned by a load whose response arrived after a newer
// load had started. Its result is discarded.
var ErrSuperseded = errors.New("dashboard load superseded by a newer request")

// Phase is where the dashboard is in its load cycle.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseLoading       Phase = "loading"
	PhaseReady         Phase = "ready"
	PhaseError         Phase = "error"
)

// Direction is a month navigation step.
type Direction string

const (
	DirectionPrevious Direction = "previous"
	DirectionNext     Direction = "next"
)

// ParseDirection accepts previous/prev and next.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "previous", "prev":
		return DirectionPrevious, nil
	case "next":
		return DirectionNext, nil
	}
	return "", &domain.ErrValidation{Field: "direction", Message: "must be 'previous' or 'next'"}
}

// State is an immutable copy of the dashboard for presentation.
type State struct {
	Phase         Phase                    `json:"phase"`
	SelectedMonth domain.Month             `json:"selectedMonth"`
	LoadingMonth  domain.Month             `json:"loadingMonth"`
	Snapshot      domain.DashboardSnapshot `json:"snapshot"`
	View          viewmodel.View           `json:"view"`
	LastError     string                   `json:"lastError,omitempty"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

// Dashboard owns the current snapshot, the selected month and the derived
// view, and keeps them in sync with the backend. Safe for concurrent use;
// network calls are made outside the lock.
type Dashboard struct {
	backend port.Backend
	cache   port.Cache[domain.DashboardSnapshot]
	notices port.Notifier
	metrics *observability.Metrics
	logger  *zap.Logger

	mu        sync.Mutex
	phase     Phase
	settled   Phase // phase to fall back to when a load is abandoned
	selected  domain.Month
	loading   domain.Month
	snapshot  domain.DashboardSnapshot
	view      viewmodel.View
	lastErr   error
	updatedAt time.Time
	seq       uint64
	cancel    context.CancelFunc

	onMonthChange func(domain.Month)
}

// NewDashboard creates the orchestrator with all dependencies injected.
func NewDashboard(
	backend port.Backend,
	cache port.Cache[domain.DashboardSnapshot],
	notices port.Notifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Dashboard {
	empty := domain.EmptySnapshot(domain.Month{})
	return &Dashboard{
		backend:  backend,
		cache:    cache,
		notices:  notices,
		metrics:  metrics,
		logger:   logger,
		phase:    PhaseUninitialized,
		snapshot: empty,
		view:     viewmodel.Derive(empty),
	}
}

// OnMonthChange registers fn to run whenever the selected month changes.
// fn runs with the dashboard locked and must not call back into it.
func (d *Dashboard) OnMonthChange(fn func(domain.Month)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onMonthChange = fn
}

// State returns a copy of the current dashboard state.
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := State{
		Phase:         d.phase,
		SelectedMonth: d.selected,
		LoadingMonth:  d.loading,
		Snapshot:      d.snapshot.Clone(),
		View:          d.view,
		UpdatedAt:     d.updatedAt,
	}
	st.View.Categories = append([]viewmodel.CategoryShare{}, d.view.Categories...)
	if d.lastErr != nil {
		st.LastError = d.lastErr.Error()
	}
	return st
}

// Loaded reports whether a snapshot has ever been applied or attempted.
func (d *Dashboard) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase != PhaseUninitialized
}

// Load fetches the snapshot for month, or the most recent month with data
// when month is zero. Explicit months may be served from the cache.
func (d *Dashboard) Load(ctx context.Context, month domain.Month) error {
	return d.load(ctx, month, true)
}

// Refresh reloads the selected month from the backend, bypassing the cache.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	month := d.selected
	d.mu.Unlock()
	return d.load(ctx, month, false)
}

// Navigate moves one month in dir and loads it. It does nothing, and makes no
// request, when the current snapshot reports no data in that direction.
func (d *Dashboard) Navigate(ctx context.Context, dir Direction) (bool, error) {
	d.mu.Lock()
	var enabled bool
	var target domain.Month
	switch dir {
	case DirectionPrevious:
		enabled = d.snapshot.HasPreviousMonthData
		target = d.selected.AddMonths(-1)
	case DirectionNext:
		enabled = d.snapshot.HasNextMonthData
		target = d.selected.AddMonths(1)
	default:
		d.mu.Unlock()
		return false, &domain.ErrValidation{Field: "direction", Message: fmt.Sprintf("unknown direction %q", dir)}
	}
	enabled = enabled && !d.selected.IsZero()
	d.mu.Unlock()

	if !enabled {
		d.logger.Debug("navigation disabled", zap.String("direction", string(dir)))
		return false, nil
	}
	return true, d.load(ctx, target, true)
}

func (d *Dashboard) load(ctx context.Context, month domain.Month, useCache bool) error {
	ctx, span := tracer.Start(ctx, "Dashboard.Load")
	defer span.End()
	span.SetAttributes(
		attribute.String("dashboard.month", month.String()),
		attribute.Bool("dashboard.use_cache", useCache),
	)

	start := time.Now()
	defer func() {
		d.metrics.RecordRequestDuration("dashboard.load", time.Since(start))
	}()

	d.mu.Lock()
	d.seq++
	seq := d.seq
	if d.cancel != nil {
		d.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if d.phase != PhaseLoading {
		d.settled = d.phase
	}
	d.phase = PhaseLoading
	d.loading = month
	d.mu.Unlock()
	defer cancel()

	var (
		snap domain.DashboardSnapshot
		err  error
		hit  bool
	)
	if useCache && !month.IsZero() {
		if cached, ok := d.cache.Get(month.String()); ok {
			snap, hit = cached.Clone(), true
			d.metrics.IncrCacheHit("snapshot")
		} else {
			d.metrics.IncrCacheMiss("snapshot")
		}
	}
	if !hit {
		snap, err = d.backend.GetDashboard(loadCtx, month)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if seq != d.seq {
		d.metrics.IncrLoad(observability.LoadSuperseded)
		d.logger.Debug("discarding superseded dashboard load",
			zap.String("month", month.String()),
			zap.Uint64("seq", seq),
		)
		return ErrSuperseded
	}
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		// The caller went away; nothing was learned about the backend.
		d.abandon()
		d.metrics.IncrLoad(observability.LoadSuperseded)
		d.logger.Debug("dashboard load cancelled by caller", zap.String("month", month.String()))
		return err
	}
	d.cancel = nil
	d.loading = domain.Month{}
	d.updatedAt = time.Now().UTC()

	if err != nil {
		d.metrics.IncrLoad(observability.LoadError)
		d.phase = PhaseError
		d.lastErr = err
		d.snapshot.HasPreviousMonthData = false
		d.snapshot.HasNextMonthData = false
		d.view = viewmodel.Derive(d.snapshot)
		d.logger.Error("failed to load dashboard",
			zap.String("month", month.String()),
			zap.Error(err),
		)
		span.RecordError(err)
		return fmt.Errorf("loading dashboard: %w", err)
	}

	d.metrics.IncrLoad(observability.LoadSuccess)
	d.apply(snap)
	if !hit && !snap.SelectedMonth.IsZero() {
		d.cache.Set(snap.SelectedMonth.String(), snap.Clone())
	}
	return nil
}

// apply installs snap as the current snapshot. Caller holds d.mu.
func (d *Dashboard) apply(snap domain.DashboardSnapshot) {
	d.snapshot = snap
	d.view = viewmodel.Derive(snap)
	d.phase = PhaseReady
	d.lastErr = nil

	if !snap.SelectedMonth.IsZero() && snap.SelectedMonth != d.selected {
		d.selected = snap.SelectedMonth
		if d.onMonthChange != nil {
			d.onMonthChange(d.selected)
		}
	}
}

// abandon stops tracking the in-flight load, if any, without touching the
// snapshot. Caller holds d.mu.
func (d *Dashboard) abandon() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.phase == PhaseLoading {
		d.phase = d.settled
	}
	d.loading = domain.Month{}
}

// supersede makes any in-flight load stale so its result is discarded.
// Caller holds d.mu.
func (d *Dashboard) supersede() {
	d.seq++
	d.abandon()
}

// reloadAfterWrite refreshes the selected month after a successful write.
// A failed reload is surfaced as a notice; the write itself already succeeded.
func (d *Dashboard) reloadAfterWrite(ctx context.Context) {
	d.cache.Purge()
	err := d.Refresh(ctx)
	if err != nil && !errors.Is(err, ErrSuperseded) && !errors.Is(err, context.Canceled) {
		d.notices.Notify(domain.NoticeError, "Saved, but the dashboard could not be refreshed. Please try again.")
	}
}
