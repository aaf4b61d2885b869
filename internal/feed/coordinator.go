package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/qntmpulse/pulse/internal/constants"
	pulseerrors "github.com/qntmpulse/pulse/internal/errors"
)

// ReloadFunc reloads one entity family from the authoritative store.
// It is awaited before any recomputation is scheduled.
type ReloadFunc func(ctx context.Context, table string) error

// RecomputeFunc recomputes derived state (metrics, nudges) from the
// freshly reloaded snapshot.
type RecomputeFunc func(ctx context.Context)

// Coordinator maintains the three workspace subscriptions and drives the
// reload-then-recompute pipeline. A burst of events within the debounce
// window results in exactly one recomputation, over state that reflects
// every event in the burst.
type Coordinator struct {
	source    Source
	reload    ReloadFunc
	recompute RecomputeFunc
	logger    zerolog.Logger
	delay     time.Duration

	mu      sync.Mutex
	subs    []Subscription
	status  map[string]constants.ConnectionStatus
	dirty   map[string]bool
	started bool
	closed  bool

	notify chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDebounceDelay overrides the recompute coalescing delay.
// Default is constants.DefaultDebounceDelay.
func WithDebounceDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		c.delay = d
	}
}

// NewCoordinator creates a coordinator. Start must be called to open the
// subscriptions.
func NewCoordinator(source Source, reload ReloadFunc, recompute RecomputeFunc, logger zerolog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		source:    source,
		reload:    reload,
		recompute: recompute,
		logger:    logger,
		delay:     constants.DefaultDebounceDelay,
		status:    make(map[string]constants.ConnectionStatus),
		dirty:     make(map[string]bool),
		notify:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start opens the three entity-family subscriptions for the workspace and
// launches the coalescing loop. Decisions and tasks are filtered
// server-side by workspace id; votes reference decisions rather than
// workspaces, so the vote subscription is unfiltered.
func (c *Coordinator) Start(ctx context.Context, workspaceID string) error {
	if workspaceID == "" {
		return pulseerrors.ErrWorkspaceRequired
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return pulseerrors.ErrCoordinatorClosed
	}
	if c.started {
		c.mu.Unlock()
		return pulseerrors.ErrCoordinatorStarted
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.started = true
	c.mu.Unlock()

	plans := []struct {
		table  string
		filter Filter
	}{
		{table: constants.TableDecisions, filter: Filter{Column: "workspace_id", Value: workspaceID}},
		{table: constants.TableTasks, filter: Filter{Column: "workspace_id", Value: workspaceID}},
		{table: constants.TableVotes},
	}

	for _, plan := range plans {
		table := plan.table
		c.setStatus(table, constants.ConnectionConnecting)

		sub, err := c.source.Subscribe(runCtx, table, plan.filter,
			func(ev Event) { c.signal(table, ev) },
			func(status constants.ConnectionStatus) { c.setStatus(table, status) },
		)
		if err != nil {
			c.setStatus(table, constants.ConnectionError)
			c.logger.Error().Err(err).Str("table", table).Msg("subscription failed")
			// Channel failures surface only as connection status; the
			// remaining subscriptions still open and the session keeps
			// serving stale-but-present data.
			continue
		}

		c.mu.Lock()
		if c.closed {
			// Close won the race mid-start; this subscription is already
			// outside the set Close drained.
			c.mu.Unlock()
			sub.Unsubscribe()
			continue
		}
		c.subs = append(c.subs, sub)
		c.mu.Unlock()
		c.setStatus(table, constants.ConnectionConnected)
	}

	go c.run(runCtx)
	return nil
}

// Status folds the per-subscription connection statuses into a single
// worst-case value for display. With no subscriptions it reports
// disconnected.
func (c *Coordinator) Status() constants.ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.status) == 0 {
		return constants.ConnectionDisconnected
	}
	folded := constants.ConnectionConnected
	for _, s := range c.status {
		folded = folded.Worst(s)
	}
	return folded
}

// Close tears down all subscriptions and invalidates any pending debounce
// timer. Cancellation is immediate and total: no reload or recompute
// callback fires after Close returns. Close is idempotent.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	cancel := c.cancel
	for table := range c.status {
		c.status[table] = constants.ConnectionDisconnected
	}
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	if cancel != nil {
		cancel()
		<-c.done
	}
}

// signal marks a family dirty and wakes the coalescing loop. Called from
// feed handlers; must never block the feed.
func (c *Coordinator) signal(table string, ev Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.dirty[table] = true
	c.mu.Unlock()

	c.logger.Debug().
		Str("table", table).
		Str("kind", string(ev.Kind)).
		Msg("change event received")

	select {
	case c.notify <- struct{}{}:
	default:
		// A wakeup is already pending; the dirty flag carries the signal.
	}
}

// takeDirty returns and clears the set of dirty families.
func (c *Coordinator) takeDirty() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.dirty) == 0 {
		return nil
	}
	tables := make([]string, 0, len(c.dirty))
	for table := range c.dirty {
		tables = append(tables, table)
	}
	c.dirty = make(map[string]bool)
	return tables
}

// run is the single coalescing loop: it reloads dirty families as signals
// arrive and resets the debounce timer each time, so the recompute fires
// exactly once per burst, after every reload in the burst has completed.
func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)

	timer := time.NewTimer(c.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case <-c.notify:
			for _, table := range c.takeDirty() {
				if err := c.reloadTable(ctx, table); err != nil {
					if ctx.Err() != nil {
						return
					}
					c.logger.Warn().Err(err).Str("table", table).Msg("reload failed")
				}
			}
			// Restart the window rather than stacking recomputes.
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(c.delay)
			pending = true

		case <-timer.C:
			pending = false
			c.recompute(ctx)
		}
	}
}

// reloadTable runs one awaited family reload.
func (c *Coordinator) reloadTable(ctx context.Context, table string) error {
	if err := c.reload(ctx, table); err != nil {
		return fmt.Errorf("reload %s: %w", table, err)
	}
	return nil
}

// setStatus records a per-subscription connection status.
func (c *Coordinator) setStatus(table string, status constants.ConnectionStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.status[table] = status
}
