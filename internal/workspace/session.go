// Package workspace provides the per-workspace session: the single owner
// of the synchronized in-memory snapshot and the recompute pipeline that
// hangs off it.
//
// The session wires the feed coordinator, the nudge engine, the metrics
// provider, and the priority merge bridge together. All other components
// read immutable snapshot copies; mutations flow outward through the
// authoritative store and round-trip back through the change feed.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain,
//     internal/errors, internal/feed, internal/nudge, internal/priority, std lib
//   - MUST NOT import: internal/cli
package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/qntmpulse/pulse/internal/clock"
	"github.com/qntmpulse/pulse/internal/constants"
	"github.com/qntmpulse/pulse/internal/domain"
	pulseerrors "github.com/qntmpulse/pulse/internal/errors"
	"github.com/qntmpulse/pulse/internal/feed"
	"github.com/qntmpulse/pulse/internal/nudge"
	"github.com/qntmpulse/pulse/internal/priority"
)

// StoreClient loads full entity collections from the authoritative store.
// Called on session start and on every reload signal; the coordinator
// never applies feed deltas directly.
type StoreClient interface {
	// WorkspaceDecisions loads all decisions for the workspace.
	WorkspaceDecisions(ctx context.Context, workspaceID string) ([]domain.Decision, error)

	// WorkspaceTasks loads all tasks for the workspace.
	WorkspaceTasks(ctx context.Context, workspaceID string) ([]domain.Task, error)

	// DecisionVotes loads all votes. Votes reference decisions rather than
	// workspaces, so the load is global and the join happens locally.
	DecisionVotes(ctx context.Context) ([]domain.Vote, error)
}

// MetricsProvider computes decision velocity from the current decisions.
// It may fail or be slow; the session bounds it and keeps the last good
// value on failure.
type MetricsProvider interface {
	CalculateDecisionVelocity(ctx context.Context, decisions []domain.Decision) (domain.VelocityMetrics, error)
}

// Prioritizer is the external AI task-ranking collaborator. Its output is
// the sole input of the priority merge bridge.
type Prioritizer interface {
	IntelligentPrioritization(ctx context.Context, tasks []domain.Task) ([]domain.PriorityUpdate, error)
}

// Session owns one workspace's snapshot and derived state.
type Session struct {
	workspaceID string
	store       StoreClient
	metrics     MetricsProvider
	prioritizer Prioritizer
	nudges      *nudge.Engine
	coord       *feed.Coordinator
	logger      zerolog.Logger
	clk         clock.Clock

	loadTimeout     time.Duration
	providerTimeout time.Duration
	debounce        time.Duration

	mu        sync.RWMutex
	snap      domain.Snapshot
	loadErrs  map[string]error
	closed    bool
	closeOnce sync.Once
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithMetricsProvider sets the velocity metrics collaborator.
func WithMetricsProvider(p MetricsProvider) SessionOption {
	return func(s *Session) {
		s.metrics = p
	}
}

// WithPrioritizer sets the AI task-ranking collaborator.
func WithPrioritizer(p Prioritizer) SessionOption {
	return func(s *Session) {
		s.prioritizer = p
	}
}

// WithClock overrides the time source, for tests.
func WithClock(c clock.Clock) SessionOption {
	return func(s *Session) {
		s.clk = c
	}
}

// WithLoadTimeout bounds each full-collection load.
// Default is constants.DefaultLoadTimeout.
func WithLoadTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		s.loadTimeout = d
	}
}

// WithProviderTimeout bounds metrics and prioritizer calls.
// Default is constants.DefaultProviderTimeout.
func WithProviderTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		s.providerTimeout = d
	}
}

// WithDebounceDelay overrides the coordinator's coalescing delay.
func WithDebounceDelay(d time.Duration) SessionOption {
	return func(s *Session) {
		s.debounce = d
	}
}

// NewSession creates a session for one workspace. The nudge engine is
// required; metrics and prioritization are optional collaborators.
func NewSession(workspaceID string, store StoreClient, source feed.Source, nudges *nudge.Engine, logger zerolog.Logger, opts ...SessionOption) (*Session, error) {
	if workspaceID == "" {
		return nil, pulseerrors.ErrWorkspaceRequired
	}
	s := &Session{
		workspaceID:     workspaceID,
		store:           store,
		nudges:          nudges,
		logger:          logger.With().Str("workspace", workspaceID).Logger(),
		clk:             clock.RealClock{},
		loadTimeout:     constants.DefaultLoadTimeout,
		providerTimeout: constants.DefaultProviderTimeout,
		debounce:        constants.DefaultDebounceDelay,
		snap:            domain.Snapshot{WorkspaceID: workspaceID},
		loadErrs:        make(map[string]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.coord = feed.NewCoordinator(source, s.reload, s.recompute, s.logger,
		feed.WithDebounceDelay(s.debounce))
	return s, nil
}

// Start performs the initial concurrent load of all three families,
// recomputes derived state once, then opens the change-feed
// subscriptions. Load failures substitute an empty collection and are
// recorded for retry; they are never fatal.
func (s *Session) Start(ctx context.Context) error {
	g, loadCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.reload(loadCtx, constants.TableDecisions) })
	g.Go(func() error { return s.reload(loadCtx, constants.TableTasks) })
	g.Go(func() error { return s.reload(loadCtx, constants.TableVotes) })
	if err := g.Wait(); err != nil {
		// Individual failures were already absorbed into empty collections;
		// only a canceled context reaches here.
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	s.recompute(ctx)
	return s.coord.Start(ctx, s.workspaceID)
}

// Snapshot returns a deep copy of the current snapshot.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Nudges returns the currently visible nudge list.
func (s *Session) Nudges() []domain.Nudge {
	return s.nudges.Active()
}

// Engine exposes the nudge engine for dismissal and action dispatch.
func (s *Session) Engine() *nudge.Engine {
	return s.nudges
}

// Status reports the folded change-feed connection status.
func (s *Session) Status() constants.ConnectionStatus {
	return s.coord.Status()
}

// LoadError returns the last load failure for a family, nil when the last
// load succeeded. A non-nil value is the retry affordance.
func (s *Session) LoadError(table string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErrs[table]
}

// Retry re-runs a failed family load and recomputes on success.
func (s *Session) Retry(ctx context.Context, table string) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return pulseerrors.ErrSessionClosed
	}
	if err := s.reload(ctx, table); err != nil {
		return err
	}
	if err := s.LoadError(table); err != nil {
		return err
	}
	s.recompute(ctx)
	return nil
}

// Tasks returns the snapshot's tasks ordered by the given sort key.
func (s *Session) Tasks(key constants.SortKey) []domain.Task {
	s.mu.RLock()
	tasks := make([]domain.Task, len(s.snap.Tasks))
	for i, t := range s.snap.Tasks {
		tasks[i] = t.Clone()
	}
	s.mu.RUnlock()
	return priority.Sort(tasks, key)
}

// RefreshPriorities asks the prioritizer for a fresh ranking and folds it
// into the snapshot's task metadata via the merge bridge. The authoritative
// store is untouched: AI scores are a local display overlay.
func (s *Session) RefreshPriorities(ctx context.Context) error {
	if s.prioritizer == nil {
		return nil
	}
	s.mu.RLock()
	tasks := make([]domain.Task, len(s.snap.Tasks))
	for i, t := range s.snap.Tasks {
		tasks[i] = t.Clone()
	}
	s.mu.RUnlock()

	callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()
	updates, err := s.prioritizer.IntelligentPrioritization(callCtx, tasks)
	if err != nil {
		return fmt.Errorf("intelligent prioritization: %w", err)
	}

	merged := priority.Merge(tasks, updates)
	s.mu.Lock()
	s.snap.Tasks = merged
	s.mu.Unlock()
	return nil
}

// Close tears down the coordinator. No reload or recompute fires after
// Close returns. Close is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.coord.Close()
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	})
}

// reload refreshes one entity family from the store. A failing load
// substitutes an empty collection and records the error for the retry
// affordance; stale-but-present data for the other families stays
// available.
func (s *Session) reload(ctx context.Context, table string) error {
	loadCtx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	var loadErr error
	switch table {
	case constants.TableDecisions:
		decisions, err := s.store.WorkspaceDecisions(loadCtx, s.workspaceID)
		if err != nil {
			decisions, loadErr = nil, err
		}
		s.mu.Lock()
		s.snap.Decisions = decisions
		s.mu.Unlock()
	case constants.TableTasks:
		tasks, err := s.store.WorkspaceTasks(loadCtx, s.workspaceID)
		if err != nil {
			tasks, loadErr = nil, err
		}
		s.mu.Lock()
		s.snap.Tasks = tasks
		s.mu.Unlock()
	case constants.TableVotes:
		votes, err := s.store.DecisionVotes(loadCtx)
		if err != nil {
			votes, loadErr = nil, err
		}
		s.mu.Lock()
		s.snap.Votes = votes
		s.mu.Unlock()
	default:
		return nil
	}

	s.mu.Lock()
	if loadErr != nil {
		s.loadErrs[table] = loadErr
	} else {
		delete(s.loadErrs, table)
		s.snap.LoadedAt = s.clk.Now().UTC()
	}
	s.mu.Unlock()

	if loadErr != nil {
		s.logger.Warn().Err(loadErr).Str("table", table).Msg("collection load failed; substituting empty")
	}
	return nil
}

// recompute refreshes derived state from the current snapshot: votes are
// joined into their decisions, velocity metrics are recomputed (keeping
// the last good value on failure), and the nudge list is regenerated.
func (s *Session) recompute(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	s.joinVotesLocked()
	snap := s.snap.Clone()
	s.mu.Unlock()

	if s.metrics != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		metrics, err := s.metrics.CalculateDecisionVelocity(callCtx, snap.Decisions)
		cancel()
		if err != nil {
			// Derived-computation failures are suppressed: keep the last
			// good metrics rather than disrupting the session.
			s.logger.Warn().Err(err).Msg("velocity metrics failed")
		} else {
			s.mu.Lock()
			s.snap.Metrics = metrics
			s.mu.Unlock()
			snap.Metrics = metrics
		}
	}

	s.nudges.Regenerate(ctx, snap)
	s.logger.Debug().
		Int("decisions", len(snap.Decisions)).
		Int("tasks", len(snap.Tasks)).
		Int("votes", len(snap.Votes)).
		Msg("derived state recomputed")
}

// joinVotesLocked attaches the globally loaded votes to their decisions.
// The votes family is authoritative over the embedded vote lists once it
// has loaded. Caller holds mu.
func (s *Session) joinVotesLocked() {
	if s.snap.Votes == nil {
		return
	}
	byDecision := make(map[string][]domain.Vote)
	for _, v := range s.snap.Votes {
		byDecision[v.DecisionID] = append(byDecision[v.DecisionID], v)
	}
	for i, d := range s.snap.Decisions {
		s.snap.Decisions[i].Votes = byDecision[d.ID]
	}
}
